package events

import "sync"

// CircularBuffer is a thread-safe fixed capacity buffer that overwrites its
// oldest entry when full
type CircularBuffer[T any] struct {
	buffer   []T
	head     int
	size     int
	capacity int
	mutex    sync.RWMutex
}

// NewCircularBuffer creates a buffer holding at most capacity entries
func NewCircularBuffer[T any](capacity int) *CircularBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &CircularBuffer[T]{
		buffer:   make([]T, capacity),
		capacity: capacity,
	}
}

// Add appends v, dropping the oldest entry if the buffer is full
func (cb *CircularBuffer[T]) Add(v T) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.buffer[cb.head] = v
	cb.head = (cb.head + 1) % cb.capacity
	if cb.size < cb.capacity {
		cb.size++
	}
}

// Get returns the most recent n entries, oldest first
func (cb *CircularBuffer[T]) Get(n int) []T {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()

	if n <= 0 || cb.size == 0 {
		return []T{}
	}
	if n > cb.size {
		n = cb.size
	}

	out := make([]T, n)
	start := cb.head - n
	if start < 0 {
		start += cb.capacity
	}
	for i := range n {
		out[i] = cb.buffer[(start+i)%cb.capacity]
	}
	return out
}

// GetAll returns every entry, oldest first
func (cb *CircularBuffer[T]) GetAll() []T {
	return cb.Get(cb.Size())
}

// GetNewest returns the last added entry
func (cb *CircularBuffer[T]) GetNewest() (T, bool) {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()

	var zero T
	if cb.size == 0 {
		return zero, false
	}
	return cb.buffer[(cb.head-1+cb.capacity)%cb.capacity], true
}

// Size returns the number of entries
func (cb *CircularBuffer[T]) Size() int {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()
	return cb.size
}

// Capacity returns the maximum number of entries
func (cb *CircularBuffer[T]) Capacity() int {
	return cb.capacity
}

// Clear drops every entry
func (cb *CircularBuffer[T]) Clear() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	clear(cb.buffer)
	cb.head = 0
	cb.size = 0
}
