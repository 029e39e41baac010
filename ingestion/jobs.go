package ingestion

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/models"
)

// StartJob opens the audit record for one pipeline run.
func StartJob(db *gorm.DB) (*models.ETLJob, error) {
	job := &models.ETLJob{
		StartTime: time.Now().UTC(),
		Status:    models.JobStatusRunning,
	}
	if err := db.Create(job).Error; err != nil {
		return nil, fmt.Errorf("creating ETL job record: %w", err)
	}
	return job, nil
}

// FinishSuccess closes the job as successful with the normalized-record count.
func FinishSuccess(db *gorm.DB, job *models.ETLJob, recordsProcessed int) error {
	now := time.Now().UTC()
	job.EndTime = &now
	job.Status = models.JobStatusSuccess
	job.RecordsProcessed = recordsProcessed
	if err := db.Save(job).Error; err != nil {
		return fmt.Errorf("finalizing ETL job %d: %w", job.ID, err)
	}
	return nil
}

// FinishFailure closes the job as failed, recording the error message.
func FinishFailure(db *gorm.DB, job *models.ETLJob, message string) error {
	now := time.Now().UTC()
	job.EndTime = &now
	job.Status = models.JobStatusFailed
	job.ErrorMessage = &message
	if err := db.Save(job).Error; err != nil {
		return fmt.Errorf("finalizing ETL job %d: %w", job.ID, err)
	}
	return nil
}
