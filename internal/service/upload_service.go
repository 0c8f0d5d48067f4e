package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"relume/api/internal/apperr"
	"relume/api/internal/config"
	"relume/api/internal/media/naming"
	"relume/api/internal/media/sniffer"
)

// BlobStore is the slice of the object-store gateway the pipeline consumes.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
	SetMetadata(ctx context.Context, key string, metadata map[string]string) error
}

// Analyzer is the external vision-analysis function: bytes in, document out.
type Analyzer interface {
	Analyze(ctx context.Context, data []byte) (map[string]any, error)
}

type UploadInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// UploadResult is returned to the caller and never persisted as-is; the
// caller resubmits a derived payload through /process to create a timeline
// entry.
type UploadResult struct {
	LogicalID   string
	Version     string
	BlobURL     string
	ContentHash string
	Vision      map[string]any
}

type UploadService struct {
	store    BlobStore
	analyzer Analyzer
	cfg      config.UploadConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewUploadService(store BlobStore, analyzer Analyzer, cfg config.UploadConfig, log zerolog.Logger) *UploadService {
	return &UploadService{
		store:    store,
		analyzer: analyzer,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Upload runs the ingestion pipeline: derive the logical identifier and
// content hash, allocate a version, store the payload, attach descriptive
// metadata (best-effort) and enrich through vision analysis. A storage
// failure aborts; an analysis failure degrades the vision field instead.
func (s *UploadService) Upload(ctx context.Context, input UploadInput) (UploadResult, error) {
	if input.File == nil || input.Header == nil {
		return UploadResult{}, apperr.Validation("file", "missing multipart file")
	}

	data, err := readAll(input.File)
	if err != nil {
		return UploadResult{}, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return UploadResult{}, apperr.Validation("file", "empty payload")
	}

	logicalID := naming.DeriveLogicalID(input.Header.Filename)
	contentHash := naming.HashContent(data)

	version, err := s.allocateVersion(ctx, logicalID)
	if err != nil {
		return UploadResult{}, fmt.Errorf("allocate version: %w", err)
	}

	key := naming.ObjectKey(logicalID, version, input.Header.Filename)
	contentType := sniffer.DetectMIME(head(data))

	locator, err := s.store.Put(ctx, key, data, contentType)
	if err != nil {
		return UploadResult{}, fmt.Errorf("store payload: %w", err)
	}

	metadata := map[string]string{
		"original_filename": input.Header.Filename,
		"logical_id":        logicalID,
		"version":           version,
		"hash":              contentHash,
		"uploaded_at":       s.now().UTC().Format(time.RFC3339),
	}
	if err := s.store.SetMetadata(ctx, key, metadata); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("metadata write failed, continuing")
	}

	visionDoc, err := s.analyzer.Analyze(ctx, data)
	if err != nil {
		s.log.Warn().Err(err).Str("logical_id", logicalID).Msg("vision analysis degraded")
		visionDoc = degradedVisionDocument(err)
	}

	return UploadResult{
		LogicalID:   logicalID,
		Version:     version,
		BlobURL:     locator,
		ContentHash: contentHash,
		Vision:      visionDoc,
	}, nil
}

// allocateVersion implements the configured policy. Timestamp versions are
// race-free to second precision. Counting versions require at most one
// concurrent writer per logical id: the list-then-write below is not atomic.
func (s *UploadService) allocateVersion(ctx context.Context, logicalID string) (string, error) {
	if s.cfg.VersionPolicy == "counting" {
		keys, err := s.store.List(ctx, logicalID+"/")
		if err != nil {
			return "", err
		}
		return strconv.Itoa(len(keys) + 1), nil
	}
	return naming.TimestampVersion(s.now()), nil
}

func degradedVisionDocument(err error) map[string]any {
	if de, ok := apperr.AsDependency(err); ok {
		return de.Document()
	}
	return map[string]any{"error": err.Error()}
}

func readAll(file multipart.File) ([]byte, error) {
	if seeker, ok := file.(io.ReadSeeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind: %w", err)
		}
	}
	data, err := io.ReadAll(file)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return data, nil
}

func head(data []byte) []byte {
	if len(data) > 512 {
		return data[:512]
	}
	return data
}
