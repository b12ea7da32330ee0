package entity

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// Batch run states. A run walks forward through these; failures of single
// companies or articles do not move it off the happy path, they are only
// counted in the result stats.
const (
	RunStatusStarted       = "started"
	RunStatusFetching      = "fetching"
	RunStatusMatching      = "matching"
	RunStatusDeduplicating = "deduplicating"
	RunStatusScoring       = "scoring"
	RunStatusPersisted     = "persisted"
	RunStatusAggregating   = "aggregating"
	RunStatusCompleted     = "completed"
	RunStatusFailed        = "failed"
)

// BatchRun records one ingestion batch run and its outcome.
type BatchRun struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	TargetDate   time.Time      `gorm:"type:date;not null" json:"target_date"`
	Status       string         `gorm:"type:varchar(20);not null" json:"status"`
	StartedAt    time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt  sql.NullTime   `json:"completed_at"`
	Result       datatypes.JSON `json:"result"`
	ErrorMessage sql.NullString `json:"error_message"`
}

// TableName specifies the table name for the BatchRun model.
func (BatchRun) TableName() string {
	return "batch_runs"
}
