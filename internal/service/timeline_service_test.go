package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relume/api/internal/apperr"
	"relume/api/internal/models"
)

type timelineStoreFake struct {
	appended  []models.TimelineEntry
	appendErr error
	entries   []models.TimelineEntry
	listErr   error
}

func (f *timelineStoreFake) Append(_ context.Context, entry models.TimelineEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, entry)
	return nil
}

func (f *timelineStoreFake) ListByUser(context.Context, string) ([]models.TimelineEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

func newTimelineService(repo *timelineStoreFake) *TimelineService {
	svc := NewTimelineService(repo, nil, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, 5, 17, 9, 30, 45, 0, time.UTC) }
	svc.newID = func() string { return "entry-1" }
	return svc
}

func TestProcessNormalizesVisionPayload(t *testing.T) {
	repo := &timelineStoreFake{}
	svc := newTimelineService(repo)

	result, err := svc.Process(context.Background(), ProcessInput{
		UserID:  "u1",
		BlobURL: "https://store.local/media/foto/v1/foto.jpg",
		Vision: map[string]any{
			"description": map[string]any{"captions": []any{map[string]any{"text": "a birthday party"}}},
			"tags":        []any{map[string]any{"name": "cat"}, map[string]any{"name": "cat"}, "dog"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "entry-1", result.ID)
	assert.Equal(t, "a birthday party", result.Caption)
	assert.Equal(t, []string{"cat", "dog"}, result.Tags)
	assert.Equal(t, time.Date(2024, 5, 17, 9, 30, 45, 0, time.UTC), result.CreatedAt)

	require.Len(t, repo.appended, 1)
	assert.Equal(t, "a birthday party", repo.appended[0].Caption)
	assert.NotEmpty(t, repo.appended[0].RawVision)
}

func TestProcessEmptyVisionFallsBackToPlaceholder(t *testing.T) {
	repo := &timelineStoreFake{}
	svc := newTimelineService(repo)

	result, err := svc.Process(context.Background(), ProcessInput{
		UserID:  "u1",
		BlobURL: "https://store.local/x",
		Vision:  map[string]any{},
	})
	require.NoError(t, err)

	assert.Equal(t, "Sem descrição", result.Caption)
	assert.Empty(t, result.Tags)
	assert.NotNil(t, result.Tags)
}

func TestProcessVisionErrorDocumentIsTolerated(t *testing.T) {
	repo := &timelineStoreFake{}
	svc := newTimelineService(repo)

	result, err := svc.Process(context.Background(), ProcessInput{
		UserID:  "u1",
		BlobURL: "https://store.local/x",
		Vision:  map[string]any{"error": "timeout", "status": 504},
	})
	require.NoError(t, err)

	assert.Equal(t, "Sem descrição", result.Caption)
	assert.Empty(t, result.Tags)
}

func TestProcessValidation(t *testing.T) {
	svc := newTimelineService(&timelineStoreFake{})

	_, err := svc.Process(context.Background(), ProcessInput{BlobURL: "https://x"})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Process(context.Background(), ProcessInput{UserID: "u1", BlobURL: "  "})
	assert.True(t, apperr.IsValidation(err))
}

func TestProcessStoreFailurePropagates(t *testing.T) {
	repo := &timelineStoreFake{appendErr: errors.New("insert failed")}
	svc := newTimelineService(repo)

	_, err := svc.Process(context.Background(), ProcessInput{UserID: "u1", BlobURL: "https://x"})
	assert.Error(t, err)
}

func TestProcessHasNoDedupGuard(t *testing.T) {
	repo := &timelineStoreFake{}
	svc := newTimelineService(repo)
	input := ProcessInput{UserID: "u1", BlobURL: "https://x", Hash: "abc"}

	_, err := svc.Process(context.Background(), input)
	require.NoError(t, err)
	_, err = svc.Process(context.Background(), input)
	require.NoError(t, err)

	assert.Len(t, repo.appended, 2)
}

func TestTimelineEmptyResultIsEmptySlice(t *testing.T) {
	svc := newTimelineService(&timelineStoreFake{})

	views, err := svc.Timeline(context.Background(), "nobody")
	require.NoError(t, err)

	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestTimelineRequiresUserID(t *testing.T) {
	svc := newTimelineService(&timelineStoreFake{})

	_, err := svc.Timeline(context.Background(), " ")
	assert.True(t, apperr.IsValidation(err))
}

func TestTimelineRendersAndRepairsEntries(t *testing.T) {
	legacyRaw := json.RawMessage(`{
		"main_caption": "legacy caption",
		"tags": [{"name": "praia"}, {"name": "praia"}, "sol"]
	}`)
	repo := &timelineStoreFake{entries: []models.TimelineEntry{
		{
			ID:        "new-entry",
			UserID:    "u1",
			BlobURL:   "https://store.local/a",
			Caption:   "written caption",
			Tags:      []string{"cat"},
			CreatedAt: time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:        "legacy-entry",
			UserID:    "u1",
			BlobURL:   "https://store.local/b",
			RawVision: legacyRaw,
			CreatedAt: time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}}
	svc := newTimelineService(repo)

	views, err := svc.Timeline(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "written caption", views[0].Caption)
	assert.Equal(t, []string{"cat"}, views[0].Tags)
	assert.Equal(t, "2024-05-17T10:00:00Z", views[0].CreatedAt)

	assert.Equal(t, "legacy caption", views[1].Caption)
	assert.Equal(t, []string{"praia", "sol"}, views[1].Tags)
	assert.Equal(t, "2023-01-02T03:04:05Z", views[1].CreatedAt)
}

func TestRepairDisplayFieldsPlaceholderWhenNothingRecoverable(t *testing.T) {
	caption, tags := RepairDisplayFields("", nil, nil)

	assert.Equal(t, DefaultCaption, caption)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}

func TestRepairDisplayFieldsIsIdempotent(t *testing.T) {
	raw := json.RawMessage(`{"main_caption": "from legacy", "tags": ["a", "a", "b"]}`)

	caption1, tags1 := RepairDisplayFields("", nil, raw)
	caption2, tags2 := RepairDisplayFields(caption1, tags1, raw)

	assert.Equal(t, caption1, caption2)
	assert.Equal(t, tags1, tags2)
	assert.Equal(t, "from legacy", caption1)
	assert.Equal(t, []string{"a", "b"}, tags1)
}
