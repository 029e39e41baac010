package ingestion

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/models"
)

// IngestRaw stages a fetched batch, deduplicated by serialized payload
// content. Records whose payload is already present are skipped, so
// re-fetching an unchanged upstream dataset stores nothing. The whole batch
// commits in one transaction. Returns the number of newly stored rows.
func IngestRaw(db *gorm.DB, records []RawRecord, source string) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	stored := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			payload, err := record.Serialize()
			if err != nil {
				return fmt.Errorf("serializing record for source %s: %w", source, err)
			}
			raw := models.RawData{Source: source, Payload: payload}
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "payload"}},
				DoNothing: true,
			}).Create(&raw)
			if res.Error != nil {
				return fmt.Errorf("storing raw record for source %s: %w", source, res.Error)
			}
			stored += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return stored, nil
}

// CountPendingRaw returns how many staged records have not yet been
// normalized, including permanently malformed ones.
func CountPendingRaw(db *gorm.DB) (int64, error) {
	var pending int64
	err := db.Model(&models.RawData{}).Where("processed = ?", false).Count(&pending).Error
	return pending, err
}
