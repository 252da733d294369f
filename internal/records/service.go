// Package records implements the record gateway that relays create, list,
// update and delete calls to the record store.
package records

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/chaski/registry/internal/model"
	"github.com/chaski/registry/internal/recordstore"
)

var recordOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "registry_record_operations_total",
		Help: "Record gateway calls to the record store by action and result.",
	},
	[]string{"action", "result"},
)

// Service relays one call per request to the record store. It never retries.
type Service struct {
	store  recordstore.Store
	logger *slog.Logger
}

// NewService creates a records Service. A nil store makes every call fail
// with recordstore.ErrNotConfigured.
func NewService(store recordstore.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger.With(slog.String("component", "records_service"))}
}

// Configured reports whether a record store is attached.
func (s *Service) Configured() bool {
	return s.store != nil
}

// Create stores a new record with fields as given.
func (s *Service) Create(ctx context.Context, table string, fields map[string]any) (*model.Record, error) {
	if s.store == nil {
		return nil, recordstore.ErrNotConfigured
	}
	rec, err := s.store.Create(ctx, table, fields)
	s.observe("create", table, err)
	return rec, err
}

// List returns the store's records for table.
func (s *Service) List(ctx context.Context, table string) ([]model.Record, error) {
	if s.store == nil {
		return nil, recordstore.ErrNotConfigured
	}
	recs, err := s.store.List(ctx, table)
	s.observe("list", table, err)
	return recs, err
}

// Update patches fields of record id.
func (s *Service) Update(ctx context.Context, table, id string, fields map[string]any) (*model.Record, error) {
	if s.store == nil {
		return nil, recordstore.ErrNotConfigured
	}
	rec, err := s.store.Update(ctx, table, id, fields)
	s.observe("update", table, err)
	return rec, err
}

// Delete removes record id.
func (s *Service) Delete(ctx context.Context, table, id string) error {
	if s.store == nil {
		return recordstore.ErrNotConfigured
	}
	err := s.store.Delete(ctx, table, id)
	s.observe("delete", table, err)
	return err
}

func (s *Service) observe(action, table string, err error) {
	if err != nil {
		recordOpsTotal.WithLabelValues(action, "error").Inc()
		s.logger.Error("record store call failed",
			slog.String("action", action),
			slog.String("table", table),
			slog.String("error", err.Error()),
		)
		return
	}
	recordOpsTotal.WithLabelValues(action, "ok").Inc()
}
