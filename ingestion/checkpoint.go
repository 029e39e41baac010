package ingestion

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/models"
)

// GetCheckpoint returns the stored cursor for a source, or nil if the source
// has never completed an incremental fetch.
func GetCheckpoint(db *gorm.DB, sourceName string) (*models.Checkpoint, error) {
	var ckpt models.Checkpoint
	err := db.First(&ckpt, "source_name = ?", sourceName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint for %s: %w", sourceName, err)
	}
	return &ckpt, nil
}

// AdvanceCheckpoint upserts the cursor for a source. The store imposes no
// ordering check; cursor semantics are the source's to define.
func AdvanceCheckpoint(db *gorm.DB, sourceName, value string) error {
	ckpt := models.Checkpoint{
		SourceName: sourceName,
		LastValue:  value,
		UpdatedAt:  time.Now().UTC(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_value", "updated_at"}),
	}).Create(&ckpt).Error
	if err != nil {
		return fmt.Errorf("advancing checkpoint for %s: %w", sourceName, err)
	}
	return nil
}
