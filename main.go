package main

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/config"
	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/database"
	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/handlers"
	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/ingestion"
	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/models"
)

func main() {
	logger := logrus.New()

	cfg, err := config.GetConfig()
	if err != nil {
		logger.Fatalf("configuration loading error: %v", err)
	}

	if err := database.InitDB(cfg.DatabasePath); err != nil {
		logger.Fatalf("database initialization error: %v", err)
	}

	// Source priority order is fixed: standard CSV, partner API, quirky CSV.
	pipeline := ingestion.NewPipeline(database.GetDB(), logger,
		ingestion.NewCSVSource(models.SourceCSV, cfg.CSVSourcePath, logger),
		ingestion.NewAPISource(models.SourceAPI, cfg.APIURL, cfg.APIKey, logger),
		ingestion.NewCSVSource(models.SourceCSVQuirky, cfg.CSVQuirkySourcePath, logger),
	)

	// First ETL pass runs off the request path so startup is not blocked.
	if cfg.ETLOnStart {
		go func() {
			logger.Info("starting initial ETL run")
			if _, err := pipeline.RunOnce(); err != nil && !errors.Is(err, ingestion.ErrRunInProgress) {
				logger.Errorf("initial ETL run error: %v", err)
			}
		}()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Welcome to Kasparro API."})
	})
	r.GET("/health", handlers.HealthCheck)

	api := r.Group("/api")
	{
		api.GET("/data", handlers.GetData)
		api.GET("/stats", handlers.GetStats)
		api.GET("/jobs", handlers.ListJobs)
		api.POST("/etl/trigger", handlers.TriggerETL(pipeline))
	}

	logger.Infof("starting Kasparro backend on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}
