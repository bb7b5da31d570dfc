package vitals_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-monitor/internal/application/vitals"
	"patient-monitor/internal/domain"
	"patient-monitor/internal/infrastructure/repository/memory"
)

type stubSource struct {
	store domain.ReadingReader
}

func (s *stubSource) Store() domain.ReadingReader {
	return s.store
}

func TestSnapshotBeforeStoreExistsIsNotReady(t *testing.T) {
	t.Parallel()

	service := vitals.New(&stubSource{})

	_, err := service.Snapshot(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotReady)
}

func TestSnapshotWithoutSourceIsNotReady(t *testing.T) {
	t.Parallel()

	_, err := vitals.New(nil).Snapshot(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotReady)
}

func TestSnapshotReturnsEmptySliceForEmptyStore(t *testing.T) {
	t.Parallel()

	service := vitals.New(&stubSource{store: memory.New(0)})

	readings, err := service.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, readings)
	assert.Empty(t, readings)
}

func TestSnapshotReturnsStoreContents(t *testing.T) {
	t.Parallel()

	store := memory.New(0)
	store.Upsert(domain.Reading{DeviceID: 2, HeartRate: 80})
	store.Upsert(domain.Reading{DeviceID: 1, HeartRate: 70})
	service := vitals.New(&stubSource{store: store})

	readings, err := service.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 1, readings[0].DeviceID)
	assert.Equal(t, 2, readings[1].DeviceID)
}

func TestSnapshotHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := vitals.New(&stubSource{store: memory.New(0)}).Snapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
