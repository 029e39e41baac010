package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/database"
	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/models"
)

// HealthCheck reports database connectivity and the outcome of the most
// recent ETL run.
func HealthCheck(c *gin.Context) {
	db := database.GetDB()

	dbStatus := "unhealthy"
	if err := db.Exec("SELECT 1").Error; err == nil {
		dbStatus = "connected"
	}

	etl := gin.H{
		"last_run_status": "never_run",
		"last_run_time":   nil,
	}
	var lastJob models.ETLJob
	err := db.Order("start_time DESC").First(&lastJob).Error
	if err == nil {
		etl["last_run_status"] = lastJob.Status
		etl["last_run_time"] = lastJob.StartTime
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		dbStatus = "unhealthy"
	}

	c.JSON(http.StatusOK, gin.H{
		"database": dbStatus,
		"etl":      etl,
	})
}
