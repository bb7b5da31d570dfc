package memory

import (
	"io"
	"sort"
	"sync"

	"patient-monitor/internal/domain"
)

// DefaultMaxConnections bounds the active connection set when no capacity is given.
const DefaultMaxConnections = 1024

// Store keeps the latest reading per device together with the set of active
// device connections. One mutex guards both.
type Store struct {
	mu             sync.Mutex
	readings       map[int]domain.Reading
	connections    map[string]io.Closer
	maxConnections int
}

// New creates an empty store that accepts up to maxConnections tracked connections.
func New(maxConnections int) *Store {
	if maxConnections <= 0 {
		maxConnections = DefaultMaxConnections
	}
	return &Store{
		readings:       make(map[int]domain.Reading),
		connections:    make(map[string]io.Closer),
		maxConnections: maxConnections,
	}
}

// Upsert replaces any reading held for reading.DeviceID.
func (s *Store) Upsert(reading domain.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readings[reading.DeviceID] = reading
}

// Snapshot returns a copy of every stored reading ordered by device id.
func (s *Store) Snapshot() []domain.Reading {
	s.mu.Lock()
	snapshot := make([]domain.Reading, 0, len(s.readings))
	for _, reading := range s.readings {
		snapshot = append(snapshot, reading)
	}
	s.mu.Unlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].DeviceID < snapshot[j].DeviceID
	})
	return snapshot
}

// Len returns the number of devices seen so far.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.readings)
}

// Track registers an active connection. It fails with domain.ErrTooManyConnections
// once the configured capacity is reached.
func (s *Store) Track(id string, conn io.Closer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.connections) >= s.maxConnections {
		return domain.ErrTooManyConnections
	}
	s.connections[id] = conn
	return nil
}

// Untrack removes a connection from the active set. Unknown ids are ignored.
func (s *Store) Untrack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.connections, id)
}

// ActiveConnections returns the size of the active connection set.
func (s *Store) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.connections)
}

// CloseAll closes every tracked connection. Handlers still untrack themselves
// when their reads fail.
func (s *Store) CloseAll() {
	s.mu.Lock()
	closers := make([]io.Closer, 0, len(s.connections))
	for _, conn := range s.connections {
		closers = append(closers, conn)
	}
	s.mu.Unlock()

	for _, conn := range closers {
		_ = conn.Close()
	}
}

var _ domain.ReadingStore = (*Store)(nil)
