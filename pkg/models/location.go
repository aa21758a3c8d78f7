package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationStatus is the housekeeping state of a bed or area.
type LocationStatus string

const (
	StatusAvailable  LocationStatus = "available"
	StatusInCleaning LocationStatus = "in_cleaning"
	StatusOccupied   LocationStatus = "occupied"
)

func (s LocationStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusInCleaning, StatusOccupied:
		return true
	}
	return false
}

// CleaningType selects which SLA applies to a cleaning task.
type CleaningType string

const (
	CleaningConcurrent CleaningType = "concurrent"
	CleaningTerminal   CleaningType = "terminal"
)

func (t CleaningType) Valid() bool {
	return t == CleaningConcurrent || t == CleaningTerminal
}

const LocationTypeBed = "leito"

// CurrentCleaning is set while a location is being cleaned.
type CurrentCleaning struct {
	Type      CleaningType `json:"type" bson:"type"`
	UserID    string       `json:"userId" bson:"userId"`
	UserName  string       `json:"userName" bson:"userName"`
	StartTime time.Time    `json:"startTime" bson:"startTime"`
}

// Location is the persistent record of a bed. CurrentCleaning is non-nil
// exactly when Status is StatusInCleaning.
type Location struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name               string             `json:"name" bson:"name"`
	Number             string             `json:"number" bson:"number"`
	Status             LocationStatus     `json:"status" bson:"status"`
	ExternalCode       string             `json:"externalCode,omitempty" bson:"externalCode,omitempty"`
	LocationType       string             `json:"locationType,omitempty" bson:"locationType,omitempty"`
	Setor              string             `json:"setor,omitempty" bson:"-"`
	CurrentCleaning    *CurrentCleaning   `json:"currentCleaning" bson:"currentCleaning"`
	LastExternalUpdate *time.Time         `json:"lastExternalUpdate,omitempty" bson:"lastExternalUpdate,omitempty"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// DisplayName is the "name - number" label used on records and occurrences.
func (l *Location) DisplayName() string {
	return l.Name + " - " + l.Number
}

// CandidateLocation is the typed output of transforming one external row.
type CandidateLocation struct {
	Name               string         `json:"name"`
	Number             string         `json:"number"`
	Status             LocationStatus `json:"status"`
	ExternalCode       string         `json:"externalCode"`
	ExternalStatus     string         `json:"externalStatus"`
	LastExternalUpdate time.Time      `json:"lastExternalUpdate"`
}
