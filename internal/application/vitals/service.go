package vitals

import (
	"context"

	"patient-monitor/internal/domain"
)

// StoreSource hands out the reading store once it exists.
type StoreSource interface {
	Store() domain.ReadingReader
}

// Service answers snapshot queries against the ingestion server's store.
type Service struct {
	source StoreSource
}

// New creates a new snapshot service backed by source.
func New(source StoreSource) *Service {
	return &Service{source: source}
}

// Snapshot returns every stored reading, or domain.ErrNotReady while the
// store has not been created yet.
func (s *Service) Snapshot(ctx context.Context) ([]domain.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.source == nil {
		return nil, domain.ErrNotReady
	}

	store := s.source.Store()
	if store == nil {
		return nil, domain.ErrNotReady
	}

	return store.Snapshot(), nil
}

var _ domain.SnapshotService = (*Service)(nil)
