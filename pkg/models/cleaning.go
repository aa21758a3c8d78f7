package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CleaningSettings holds the expected duration in minutes per cleaning type.
type CleaningSettings struct {
	Concurrent int `json:"concurrent" bson:"concurrent" validate:"min=1"`
	Terminal   int `json:"terminal" bson:"terminal" validate:"min=1"`
}

func DefaultCleaningSettings() CleaningSettings {
	return CleaningSettings{Concurrent: 30, Terminal: 45}
}

// Expected returns the SLA in minutes for the given type.
func (s CleaningSettings) Expected(t CleaningType) int {
	if t == CleaningTerminal {
		return s.Terminal
	}
	return s.Concurrent
}

type CleaningRecord struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	LocationID       string             `json:"locationId" bson:"locationId"`
	LocationName     string             `json:"locationName" bson:"locationName"`
	LocationType     string             `json:"locationType,omitempty" bson:"locationType,omitempty"`
	CleaningType     CleaningType       `json:"cleaningType" bson:"cleaningType"`
	UserID           string             `json:"userId" bson:"userId"`
	UserName         string             `json:"userName" bson:"userName"`
	StartTime        time.Time          `json:"startTime" bson:"startTime"`
	FinishTime       time.Time          `json:"finishTime" bson:"finishTime"`
	ExpectedDuration int                `json:"expectedDuration" bson:"expectedDuration"`
	ActualDuration   int                `json:"actualDuration" bson:"actualDuration"`
	Status           string             `json:"status" bson:"status"`
	Delayed          bool               `json:"delayed" bson:"delayed"`
	Date             time.Time          `json:"date" bson:"date"`
}

// CleaningOccurrence records a cleaning that exceeded its SLA.
type CleaningOccurrence struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	LocationName   string             `json:"locationName" bson:"locationName"`
	CleaningType   CleaningType       `json:"cleaningType" bson:"cleaningType"`
	UserName       string             `json:"userName" bson:"userName"`
	DelayInMinutes int                `json:"delayInMinutes" bson:"delayInMinutes"`
	OccurredAt     time.Time          `json:"occurredAt" bson:"occurredAt"`
}
