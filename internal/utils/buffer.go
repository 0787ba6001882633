package utils

import (
	"sync"
)

// Buffer holds the current batch of items. Its owner replaces the whole
// contents at once; readers always get a copy.
type Buffer[T any] struct {
	buffer     []T
	bufferLock sync.Mutex
}

func NewBuffer[T any]() *Buffer[T] {
	return &Buffer[T]{}
}

// Replace swaps the contents for a copy of items.
func (b *Buffer[T]) Replace(items []T) {
	next := append([]T(nil), items...)

	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()
	b.buffer = next
}

func (b *Buffer[T]) Snapshot() []T {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()

	return append([]T(nil), b.buffer...)
}

func (b *Buffer[T]) Size() int {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()
	return len(b.buffer)
}

// Flush empties the buffer.
func (b *Buffer[T]) Flush() {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()

	b.buffer = nil
}
