package models

import "time"

// ETL job statuses
const (
	JobStatusRunning = "running"
	JobStatusSuccess = "success"
	JobStatusFailed  = "failed"
)

// Source tags (dialects)
const (
	SourceCSV       = "csv"
	SourceAPI       = "api"
	SourceCSVQuirky = "csv_quirky"
)

// RawData is one ingested record before normalization. The unique index on
// Payload makes re-ingestion of the same upstream content a no-op.
type RawData struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Source     string    `json:"source" gorm:"index"`
	Payload    string    `json:"payload" gorm:"uniqueIndex:idx_raw_payload"`
	IngestedAt time.Time `json:"ingested_at" gorm:"autoCreateTime"`
	Processed  bool      `json:"processed" gorm:"default:false;index"`
}

func (RawData) TableName() string {
	return "raw_data"
}

// UnifiedUser is the canonical user entity. Email is the identity key: at most
// one row per email, enforced by the unique index.
type UnifiedUser struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OriginalID string    `json:"original_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email" gorm:"uniqueIndex:idx_users_email"`
	Role       string    `json:"role" gorm:"index"`
	SignupDate time.Time `json:"signup_date"`
	Source     string    `json:"source" gorm:"index"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (UnifiedUser) TableName() string {
	return "unified_users"
}

// ETLJob is the audit record of one pipeline run.
type ETLJob struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time"`
	Status           string     `json:"status" gorm:"index"`
	RecordsProcessed int        `json:"records_processed"`
	ErrorMessage     *string    `json:"error_message"`
}

func (ETLJob) TableName() string {
	return "etl_jobs"
}

// Checkpoint stores the incremental cursor for one source. The cursor value is
// opaque to the store; ordering semantics belong to the source.
type Checkpoint struct {
	SourceName string    `json:"source_name" gorm:"primaryKey"`
	LastValue  string    `json:"last_value"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Checkpoint) TableName() string {
	return "checkpoints"
}
