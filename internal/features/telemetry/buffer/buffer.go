// Package buffer holds the bounded in-memory queue shared by the log and
// metric pipelines.
//
// Flushing never mutates a buffer in place. Take swaps the live slice for an
// empty one, so producers that append while a send is in flight write into
// the fresh slice. On a failed send, Restore puts the snapshot back in front
// of whatever accumulated meanwhile. The mutex only guards the slice header
// and is never held across I/O.
package buffer

import "sync"

type Buffer[T any] struct {
	mu      sync.Mutex
	items   []T
	maxSize int
}

// New creates a buffer that keeps at most maxSize items. A maxSize <= 0
// disables the bound.
func New[T any](maxSize int) *Buffer[T] {
	return &Buffer[T]{maxSize: maxSize}
}

// Append adds item to the tail, evicting the oldest items when the bound is
// exceeded. Eviction is silent.
func (b *Buffer[T]) Append(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, item)

	if b.maxSize > 0 && len(b.items) > b.maxSize {
		b.items = b.items[len(b.items)-b.maxSize:]
	}
}

// Take returns the current contents and leaves the buffer empty.
func (b *Buffer[T]) Take() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.items
	b.items = nil

	return items
}

// Restore prepends items in front of the current contents. The bound is not
// applied here; the next Append enforces it.
func (b *Buffer[T]) Restore(items []T) {
	if len(items) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	merged := make([]T, 0, len(items)+len(b.items))
	merged = append(merged, items...)
	merged = append(merged, b.items...)

	b.items = merged
}

// Snapshot returns a copy of the current contents, oldest first.
func (b *Buffer[T]) Snapshot() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := make([]T, len(b.items))
	copy(snapshot, b.items)

	return snapshot
}

func (b *Buffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = nil
}

func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.items)
}

func (b *Buffer[T]) MaxSize() int {
	return b.maxSize
}
