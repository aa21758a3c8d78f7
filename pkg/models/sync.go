package models

import "time"

// SyncTrigger tells whether a run came from the schedule or an operator.
type SyncTrigger string

const (
	TriggerManual    SyncTrigger = "manual"
	TriggerScheduled SyncTrigger = "scheduled"
)

// SyncStats is the aggregate outcome of one run.
type SyncStats struct {
	Total   int `json:"total" bson:"total"`
	Updated int `json:"updated" bson:"updated"`
	Created int `json:"created" bson:"created"`
	Skipped int `json:"skipped" bson:"skipped"`
	Errors  int `json:"errors" bson:"errors"`
}

// SyncSource identifies the external database a run read from.
type SyncSource struct {
	Host     string `json:"host" bson:"host"`
	Database string `json:"database" bson:"database"`
}

// SyncHistoryEntry is appended once per run.
type SyncHistoryEntry struct {
	SyncID    string      `json:"syncId" bson:"syncId"`
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`
	Type      SyncTrigger `json:"type" bson:"type"`
	Success   bool        `json:"success" bson:"success"`
	Stats     *SyncStats  `json:"stats,omitempty" bson:"stats,omitempty"`
	Duration  int64       `json:"duration" bson:"duration"`
	Error     string      `json:"error,omitempty" bson:"error,omitempty"`
	Source    *SyncSource `json:"source,omitempty" bson:"source,omitempty"`
}

// SyncStatistics summarizes recent history.
type SyncStatistics struct {
	SuccessRate     float64    `json:"successRate"`
	TotalSyncs      int        `json:"totalSyncs"`
	SuccessfulSyncs int        `json:"successfulSyncs"`
	FailedSyncs     int        `json:"failedSyncs"`
	AvgDurationMs   float64    `json:"avgDurationMs"`
	LastSync        *time.Time `json:"lastSync"`
}

// SyncResult is what every caller of a run receives; raw errors never escape.
type SyncResult struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Stats   SyncStats `json:"stats"`
	SyncID  string    `json:"syncId,omitempty"`
}
