// Package upload implements the upload gateway: one image in, one public URL out.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/chaski/registry/internal/ledger"
	"github.com/chaski/registry/internal/model"
	"github.com/chaski/registry/internal/storage"
)

// ErrNoFile is returned when the request carries no imagen file.
var ErrNoFile = errors.New("no file uploaded")

// ErrTooLarge is returned when the file exceeds the size ceiling.
var ErrTooLarge = errors.New("file too large")

var uploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "registry_uploads_total",
		Help: "Upload gateway calls by result.",
	},
	[]string{"result"},
)

// Recorder appends uploads to the ledger.
type Recorder interface {
	Record(ctx context.Context, e ledger.Entry) (*ledger.Entry, error)
}

// File is an upload spooled to local disk.
type File struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// Service stores spooled files in the blob store.
type Service struct {
	store    storage.Storage
	recorder Recorder
	logger   *slog.Logger
}

// NewService creates an upload Service. recorder may be nil.
func NewService(store storage.Storage, recorder Recorder, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		recorder: recorder,
		logger:   logger.With(slog.String("component", "upload_service")),
	}
}

// Upload stores f as a new blob, makes it public and returns its URL.
// A failure to share the blob is logged and ignored; the file may already be
// public. The caller owns f.Path and removes it.
func (s *Service) Upload(ctx context.Context, f File) (*model.UploadResult, error) {
	src, err := os.Open(f.Path)
	if err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("open spooled file: %w", err)
	}
	defer src.Close()

	key, err := s.store.Upload(ctx, f.Name, src, f.Size, f.ContentType)
	if err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	// Nobody will receive the URL of a blob stored after the caller left.
	if err := ctx.Err(); err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		s.discard(key)
		return nil, fmt.Errorf("upload abandoned: %w", err)
	}

	if err := s.store.MakePublic(ctx, key); err != nil {
		s.logger.Debug("make public failed, continuing",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	url := s.store.PublicURL(key)
	s.record(ctx, ledger.Entry{
		BlobKey:      key,
		URL:          url,
		OriginalName: f.Name,
		ContentType:  f.ContentType,
		SizeBytes:    f.Size,
	})

	uploadsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("blob stored",
		slog.String("key", key),
		slog.String("name", f.Name),
		slog.Int64("size", f.Size),
	)
	return &model.UploadResult{URL: url}, nil
}

func (s *Service) discard(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("orphan blob not removed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	s.logger.Info("orphan blob removed", slog.String("key", key))
}

func (s *Service) record(ctx context.Context, e ledger.Entry) {
	if s.recorder == nil {
		return
	}
	if _, err := s.recorder.Record(ctx, e); err != nil {
		s.logger.Warn("ledger write failed", slog.String("key", e.BlobKey), slog.String("error", err.Error()))
	}
}

// Rejected counts a request refused before reaching the blob store.
func Rejected() {
	uploadsTotal.WithLabelValues("rejected").Inc()
}
