package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"relume/api/internal/apperr"
	"relume/api/internal/cache"
	"relume/api/internal/ids"
	"relume/api/internal/models"
	"relume/api/internal/vision"
)

// DefaultCaption is the display fallback when an entry carries no usable
// caption, neither written nor recoverable from its raw vision document.
const DefaultCaption = "Sem descrição"

// TimelineStore is the slice of the repository the service consumes.
type TimelineStore interface {
	Append(ctx context.Context, entry models.TimelineEntry) error
	ListByUser(ctx context.Context, userID string) ([]models.TimelineEntry, error)
}

type ProcessInput struct {
	UserID    string         `json:"user_id"`
	BlobURL   string         `json:"blob_url"`
	Hash      string         `json:"hash"`
	LogicalID string         `json:"logical_id"`
	Version   string         `json:"version"`
	Vision    map[string]any `json:"vision"`
}

type ProcessResult struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BlobURL   string    `json:"blob_url"`
	Caption   string    `json:"caption"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// EntryView is the normalized read shape: identifiers as strings, the
// timestamp in a fixed textual encoding, caption and tags always present.
type EntryView struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	BlobURL     string   `json:"blob_url"`
	ContentHash string   `json:"content_hash,omitempty"`
	LogicalID   string   `json:"logical_id,omitempty"`
	Version     string   `json:"version,omitempty"`
	Caption     string   `json:"caption"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"created_at"`
}

type TimelineService struct {
	repo  TimelineStore
	cache *cache.TimelineCache
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

func NewTimelineService(repo TimelineStore, timelineCache *cache.TimelineCache, log zerolog.Logger) *TimelineService {
	return &TimelineService{
		repo:  repo,
		cache: timelineCache,
		log:   log,
		now:   time.Now,
		newID: ids.New,
	}
}

// Process normalizes the resubmitted upload payload and appends exactly one
// timeline entry. There is no dedup guard: calling it twice with the same
// payload stores two rows.
func (s *TimelineService) Process(ctx context.Context, input ProcessInput) (ProcessResult, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return ProcessResult{}, apperr.Validation("user_id", "required")
	}
	if strings.TrimSpace(input.BlobURL) == "" {
		return ProcessResult{}, apperr.Validation("blob_url", "required")
	}

	caption, tags := vision.ExtractCaptionAndTags(input.Vision)
	if caption == "" {
		caption = DefaultCaption
	}

	var rawVision json.RawMessage
	if input.Vision != nil {
		if encoded, err := json.Marshal(input.Vision); err == nil {
			rawVision = encoded
		}
	}

	entry := models.TimelineEntry{
		ID:          s.newID(),
		UserID:      input.UserID,
		BlobURL:     input.BlobURL,
		ContentHash: input.Hash,
		LogicalID:   input.LogicalID,
		Version:     input.Version,
		Caption:     caption,
		Tags:        tags,
		RawVision:   rawVision,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		return ProcessResult{}, err
	}

	if err := s.cache.Invalidate(ctx, input.UserID); err != nil {
		s.log.Warn().Err(err).Str("user_id", input.UserID).Msg("timeline cache invalidation failed")
	}

	return ProcessResult{
		ID:        entry.ID,
		UserID:    entry.UserID,
		BlobURL:   entry.BlobURL,
		Caption:   entry.Caption,
		Tags:      entry.Tags,
		CreatedAt: entry.CreatedAt,
	}, nil
}

// Timeline returns the user's entries newest first, repairing legacy rows in
// the returned view. The store is never written during a read.
func (s *TimelineService) Timeline(ctx context.Context, userID string) ([]EntryView, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("user_id", "required")
	}

	var cached []EntryView
	if hit, err := s.cache.Get(ctx, userID, &cached); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("timeline cache read failed")
	} else if hit {
		return cached, nil
	}

	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]EntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, renderEntry(entry))
	}

	if err := s.cache.Set(ctx, userID, views); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("timeline cache write failed")
	}
	return views, nil
}

func renderEntry(entry models.TimelineEntry) EntryView {
	caption, tags := RepairDisplayFields(entry.Caption, entry.Tags, entry.RawVision)
	return EntryView{
		ID:          entry.ID,
		UserID:      entry.UserID,
		BlobURL:     entry.BlobURL,
		ContentHash: entry.ContentHash,
		LogicalID:   entry.LogicalID,
		Version:     entry.Version,
		Caption:     caption,
		Tags:        tags,
		CreatedAt:   entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// RepairDisplayFields reconciles rows written under earlier schemas purely
// from the stored document. An empty caption falls back to the legacy
// main_caption key of the raw vision document, then to DefaultCaption; empty
// tags are reconstructed from the raw tag objects with the normalizer's
// dedup rule. The function is idempotent: repairing an already repaired pair
// changes nothing.
func RepairDisplayFields(caption string, tags []string, rawVision json.RawMessage) (string, []string) {
	var raw map[string]any
	if len(rawVision) > 0 {
		_ = json.Unmarshal(rawVision, &raw)
	}

	if caption == "" {
		if legacy, ok := raw["main_caption"].(string); ok && legacy != "" {
			caption = legacy
		} else {
			caption = DefaultCaption
		}
	}

	if len(tags) == 0 {
		_, tags = vision.ExtractCaptionAndTags(raw)
	}
	return caption, tags
}
