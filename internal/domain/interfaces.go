package domain

import (
	"context"
	"io"
)

// ReadingWriter merges readings into the shared store.
type ReadingWriter interface {
	Upsert(reading Reading)
}

// ReadingReader exposes the current contents of the shared store.
type ReadingReader interface {
	Snapshot() []Reading
}

// ConnectionTracker keeps the set of active device connections.
type ConnectionTracker interface {
	Track(id string, conn io.Closer) error
	Untrack(id string)
}

// ReadingStore aggregates the capabilities the ingestion server needs.
type ReadingStore interface {
	ReadingWriter
	ReadingReader
	ConnectionTracker
}

// SnapshotService describes the behaviour exposed to transport layers.
type SnapshotService interface {
	Snapshot(ctx context.Context) ([]Reading, error)
}

// ReadingGenerator produces synthetic readings for a device id.
type ReadingGenerator interface {
	Next(deviceID int) Reading
}
