package obim

import (
	"sync"
	"sync/atomic"

	"github.com/shayshani/corograph/container"
)

type logEntry[T any] struct {
	index Index
	queue *container.LinkedChunkQueue[T]
}

// masterLog is the shared, append-only record of every priority bucket
// ever created. New-bucket creation takes masterLog's lock; everything
// else (checking whether a replay is needed) only touches the atomic
// version counter.
type masterLog[T any] struct {
	mu      sync.Mutex
	entries []logEntry[T]
	version atomic.Uint64
}

// getOrCreate returns the queue for index, creating and publishing one
// under the lock if this is the first thread to see this index. A
// second lookup under the lock guards against two threads racing to
// create the same bucket.
func (m *masterLog[T]) getOrCreate(index Index) *container.LinkedChunkQueue[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.index == index {
			return e.queue
		}
	}
	q := container.NewLinkedChunkQueue[T]()
	m.entries = append(m.entries, logEntry[T]{index: index, queue: q})
	m.version.Store(uint64(len(m.entries)))
	return q
}

// since returns every entry appended after lastVersion, plus the
// version to remember for the next call. A cheap atomic load lets a
// thread skip the lock entirely when nothing has changed.
func (m *masterLog[T]) since(lastVersion uint64) ([]logEntry[T], uint64) {
	if m.version.Load() == lastVersion {
		return nil, lastVersion
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(len(m.entries)) <= lastVersion {
		return nil, lastVersion
	}
	out := append([]logEntry[T](nil), m.entries[lastVersion:]...)
	return out, uint64(len(m.entries))
}
