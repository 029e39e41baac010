package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/database"
	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/models"
)

// GetData serves the unified user table with pagination and filtering.
func GetData(c *gin.Context) {
	start := time.Now()
	db := database.GetDB()

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	role := c.Query("role")
	source := c.Query("source")

	if limit < 1 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := db.Model(&models.UnifiedUser{})

	if role != "" {
		query = query.Where("role = ?", role)
	}
	if source != "" {
		query = query.Where("source = ?", source)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var users []models.UnifiedUser
	err := query.Order("id").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	latency := float64(time.Since(start).Microseconds()) / 1000.0

	c.JSON(http.StatusOK, gin.H{
		"metadata": gin.H{
			"request_id":     strconv.FormatInt(start.UnixNano(), 10),
			"api_latency_ms": latency,
			"total_records":  total,
			"limit":          limit,
			"offset":         offset,
		},
		"data": users,
	})
}
