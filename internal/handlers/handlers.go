package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"relume/api/internal/apperr"
	"relume/api/internal/cache"
	"relume/api/internal/config"
	"relume/api/internal/narrate"
	"relume/api/internal/repository"
	"relume/api/internal/service"
	"relume/api/internal/storage"
	"relume/api/internal/vision"
)

type HandlerSet struct {
	log             zerolog.Logger
	cfg             *config.AppConfig
	uploadService   *service.UploadService
	timelineService *service.TimelineService
	narrator        *narrate.Client
	db              *pgxpool.Pool
	redis           *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, redisClient *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	visionClient := vision.NewClient(cfg.Vision.Endpoint, cfg.Vision.APIKey, cfg.Vision.Timeout)
	narrator := narrate.NewClient(cfg.Narration.Endpoint, cfg.Narration.APIKey, cfg.Narration.Timeout)
	timelineRepo := repository.NewTimelineRepository(db)
	timelineCache := cache.NewTimelineCache(redisClient, cfg.Cache.TimelineTTL)

	return HandlerSet{
		log:             log,
		cfg:             cfg,
		uploadService:   service.NewUploadService(store, visionClient, cfg.Upload, log),
		timelineService: service.NewTimelineService(timelineRepo, timelineCache, log),
		narrator:        narrator,
		db:              db,
		redis:           redisClient,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	router.POST("/upload", h.Upload)
	router.POST("/process", h.Process)
	router.GET("/timeline", h.Timeline)
	router.POST("/narrate", h.Narrate)
}

// respondError maps the error taxonomy onto HTTP statuses: validation → 400,
// unconfigured dependency → 503, failing dependency → 502, everything else
// (storage writes included) → 500.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
		return
	}
	if de, ok := apperr.AsDependency(err); ok {
		status := http.StatusBadGateway
		if errors.Is(de, apperr.ErrDependencyUnavailable) {
			status = http.StatusServiceUnavailable
		}
		h.log.Error().Err(de).Str("service", de.Service).Msg("dependency failure")
		c.JSON(status, gin.H{"error": de.Error()})
		return
	}

	h.log.Error().Err(err).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
}
