package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/database"
	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/models"
)

// GetStats summarizes the pipeline's audit trail: totals, run durations, last
// success/failure, and how many staged records are still waiting to be
// normalized (which is where malformed records show up).
func GetStats(c *gin.Context) {
	db := database.GetDB()

	var totalProcessed int64
	db.Model(&models.ETLJob{}).Select("COALESCE(SUM(records_processed), 0)").Scan(&totalProcessed)

	var avgDuration float64
	db.Model(&models.ETLJob{}).
		Where("end_time IS NOT NULL").
		Select("COALESCE(AVG((julianday(end_time) - julianday(start_time)) * 86400.0), 0)").
		Scan(&avgDuration)

	var totalRuns int64
	db.Model(&models.ETLJob{}).Where("end_time IS NOT NULL").Count(&totalRuns)

	var lastSuccess, lastFailure models.ETLJob
	var lastSuccessAt, lastFailureAt interface{}
	if err := db.Where("status = ?", models.JobStatusSuccess).Order("end_time DESC").First(&lastSuccess).Error; err == nil {
		lastSuccessAt = lastSuccess.EndTime
	}
	if err := db.Where("status = ?", models.JobStatusFailed).Order("end_time DESC").First(&lastFailure).Error; err == nil {
		lastFailureAt = lastFailure.EndTime
	}

	var totalUsers int64
	db.Model(&models.UnifiedUser{}).Count(&totalUsers)

	var pendingRaw int64
	db.Model(&models.RawData{}).Where("processed = ?", false).Count(&pendingRaw)

	c.JSON(http.StatusOK, gin.H{
		"total_records_processed":  totalProcessed,
		"average_duration_seconds": avgDuration,
		"last_success":             lastSuccessAt,
		"last_failure":             lastFailureAt,
		"total_runs":               totalRuns,
		"total_unified_users":      totalUsers,
		"pending_raw_records":      pendingRaw,
	})
}
