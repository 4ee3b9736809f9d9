package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"voicenotes/internal/ai"
	"voicenotes/internal/api"
	"voicenotes/internal/config"
	"voicenotes/internal/db"
	"voicenotes/internal/logger"
	"voicenotes/internal/pipeline"
	"voicenotes/internal/repository"
	"voicenotes/internal/stt"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist).
	// Must happen before logger.New, which reads ENVIRONMENT and LOG_LEVEL.
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database if MONGODB_URI is provided
	var repo repository.RecordRepository
	if cfg.MongoURI != "" {
		log.Info("connecting to MongoDB")
		mongoDB, err := db.Connect(context.Background(), cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.WithError(err).Warn("failed to initialize database, continuing without persistence")
		} else {
			repo = repository.NewMongoRepository(mongoDB)
			defer func() {
				if err := db.Disconnect(context.Background(), mongoDB); err != nil {
					log.WithError(err).Warn("failed to disconnect from MongoDB")
				}
			}()
			log.Info("database and repository initialized")
		}
	} else {
		log.Info("MONGODB_URI not set, running without persistence")
	}

	provider := stt.NewWhisperProvider(stt.WhisperConfig{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.WhisperModel,
		Timeout: cfg.TranscribeTimeout,
	})

	var analyzer ai.Analyzer
	if cfg.EmotionEnabled {
		analyzer = ai.NewOpenAIAnalyzer(ai.Config{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.ChatModel,
			Timeout: cfg.AnalysisTimeout,
		}, log.Entry)
	} else {
		log.Info("emotion analysis disabled, records will carry fallback values")
	}

	pipe := pipeline.New(provider, analyzer, repo, log.Entry)

	handler := &api.Handler{
		Pipeline:       pipe,
		Repo:           repo,
		Log:            log,
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	r := gin.Default()
	r.Use(corsMiddleware())
	handler.RegisterRoutes(r)

	log.WithField("port", cfg.Port).Info("voicenotes backend running")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// corsMiddleware adds CORS headers for the browser front end
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
