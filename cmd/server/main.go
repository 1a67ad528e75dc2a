package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LFKoning/reddit-reader/internal/config"
	"github.com/LFKoning/reddit-reader/internal/logger"
	"github.com/LFKoning/reddit-reader/internal/reader"
	"github.com/LFKoning/reddit-reader/internal/reddit"
	"github.com/LFKoning/reddit-reader/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize storage
	if err := storage.Prepare(cfg.Storage.Path, cfg.Storage.Purge); err != nil {
		zlog.Fatalw("preparing storage failed", "path", cfg.Storage.Path, "error", err)
	}

	fields, err := config.LoadFields(cfg.Storage.FieldsPath)
	if err != nil {
		zlog.Fatalw("loading field config failed", "error", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.Path, fields)
	if err != nil {
		zlog.Fatalw("initializing database failed", "error", err)
	}
	defer store.Close()

	var mirror *storage.JSONStorage
	if cfg.Storage.EnableJSON {
		mirror = storage.NewJSONStorage(cfg.Storage.Path)
	}
	writer := storage.NewDualWriter(store, mirror)

	// Connect the Reddit client
	client := reddit.NewClient(zlog, cfg.Reader.RequestDelay)
	defer client.Close()

	ctx := context.Background()
	creds := reddit.Credentials{
		Username:  cfg.Reddit.Username,
		Password:  cfg.Reddit.Password,
		AppID:     cfg.Reddit.AppID,
		AppSecret: cfg.Reddit.AppSecret,
	}
	if err := client.Connect(ctx, creds); err != nil {
		zlog.Fatalw("connecting to reddit failed", "error", err)
	}

	rdr := reader.New(client, writer, fields, zlog)

	// Start scheduled downloads when subreddits are configured
	if len(cfg.Reader.Subreddits) > 0 && cfg.Reader.PollInterval != "" {
		interval, err := time.ParseDuration(cfg.Reader.PollInterval)
		if err != nil {
			zlog.Fatalw("invalid poll interval", "value", cfg.Reader.PollInterval, "error", err)
		}
		go startPolling(ctx, rdr, cfg.Reader, interval, zlog)
	}

	// Initialize Gin server
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.IndentedJSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now(),
		})
	})

	// Trigger a synchronous download
	router.POST("/download", func(c *gin.Context) {
		var req downloadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.IndentedJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		limit, moreComments := req.applyDefaults(cfg.Reader)

		stats, err := rdr.Download(c.Request.Context(), req.Subreddit, limit, moreComments)
		if err != nil {
			c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.IndentedJSON(http.StatusOK, gin.H{
			"message": "Download completed",
			"stats":   stats,
		})
	})

	// Get all stored submissions
	router.GET("/submissions", func(c *gin.Context) {
		rows, err := store.Submissions()
		if err != nil {
			c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.IndentedJSON(http.StatusOK, gin.H{
			"count":       len(rows),
			"submissions": rows,
		})
	})

	// Get stored comments for one submission
	router.GET("/comments", func(c *gin.Context) {
		submissionID := c.Query("submission_id")
		if submissionID == "" {
			c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "submission_id is required"})
			return
		}
		rows, err := store.Comments(submissionID)
		if err != nil {
			c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.IndentedJSON(http.StatusOK, gin.H{
			"count":    len(rows),
			"comments": rows,
		})
	})

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	zlog.Infow("starting server", "addr", addr, "subreddits", cfg.Reader.Subreddits)

	if err := router.Run(addr); err != nil {
		zlog.Fatalw("server failed", "error", err)
	}
}

// downloadRequest is the POST /download body. MoreComments is a pointer so
// an omitted value falls back to configuration while an explicit 0 still
// disables expansion.
type downloadRequest struct {
	Subreddit    string `json:"subreddit" binding:"required"`
	Limit        int    `json:"limit"`
	MoreComments *int   `json:"more_comments"`
}

// applyDefaults fills unset request values from the reader configuration
func (r *downloadRequest) applyDefaults(cfg config.ReaderConfig) (limit, moreComments int) {
	limit = r.Limit
	if limit <= 0 {
		limit = cfg.Limit
	}

	moreComments = cfg.MoreComments
	if r.MoreComments != nil {
		moreComments = *r.MoreComments
	}
	return limit, moreComments
}

// startPolling downloads the configured subreddits at regular intervals
func startPolling(ctx context.Context, rdr *reader.Reader, cfg config.ReaderConfig, interval time.Duration, zlog *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run once immediately
	runDownloads(ctx, rdr, cfg, zlog)

	// Then run on interval
	for range ticker.C {
		runDownloads(ctx, rdr, cfg, zlog)
	}
}

// runDownloads executes one sequential pass over the configured subreddits
func runDownloads(ctx context.Context, rdr *reader.Reader, cfg config.ReaderConfig, zlog *zap.SugaredLogger) {
	for _, subreddit := range cfg.Subreddits {
		if _, err := rdr.Download(ctx, subreddit, cfg.Limit, cfg.MoreComments); err != nil {
			zlog.Warnw("scheduled download failed", "subreddit", subreddit, "error", err)
		}
	}
}
