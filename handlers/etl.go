package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/database"
	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/ingestion"
	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/models"
)

// TriggerETL returns a handler that runs the pipeline once, synchronously.
// Overlapping triggers are rejected with 409 by the pipeline's own guard.
func TriggerETL(pipeline *ingestion.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := pipeline.RunOnce()
		if errors.Is(err, ingestion.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// ListJobs serves the run audit trail, newest first.
func ListJobs(c *gin.Context) {
	db := database.GetDB()

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 {
		limit = 20
	}

	var jobs []models.ETLJob
	err := db.Order("start_time DESC").Limit(limit).Find(&jobs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, jobs)
}
