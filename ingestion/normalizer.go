package ingestion

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/models"
)

// NormalizePending maps every unprocessed raw record onto the canonical user
// schema and upserts it by email. A record that fails to map is logged and
// left unprocessed for a later pass; it never aborts the batch. The whole pass
// commits in one transaction, so a record is marked processed only once its
// user row is durable. Returns the number of records normalized in this call.
func NormalizePending(db *gorm.DB, logger *logrus.Logger) (int, error) {
	var pending []models.RawData
	if err := db.Where("processed = ?", false).Order("id").Find(&pending).Error; err != nil {
		return 0, fmt.Errorf("loading unprocessed raw data: %w", err)
	}

	count := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range pending {
			raw := &pending[i]

			user, err := mapRaw(raw)
			if err != nil {
				logger.Warnf("skipping raw record %d: %v", raw.ID, err)
				continue
			}

			// Upsert by email. On conflict only name and role are refreshed;
			// original_id, signup_date and source keep the values from the
			// first sighting.
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "email"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "role"}),
			}).Create(&user)
			if res.Error != nil {
				return fmt.Errorf("upserting user for raw record %d: %w", raw.ID, res.Error)
			}
			if err := tx.Model(raw).Update("processed", true).Error; err != nil {
				return fmt.Errorf("marking raw record %d processed: %w", raw.ID, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func mapRaw(raw *models.RawData) (models.UnifiedUser, error) {
	mapper, ok := mappers[raw.Source]
	if !ok {
		return models.UnifiedUser{}, fmt.Errorf("no mapper registered for source %q", raw.Source)
	}

	var record RawRecord
	if err := json.Unmarshal([]byte(raw.Payload), &record); err != nil {
		return models.UnifiedUser{}, fmt.Errorf("decoding payload: %w", err)
	}

	return mapper(record)
}
