// Package ring provides a fixed-capacity circular buffer for float64
// samples. Once the buffer is full, new samples overwrite the oldest.
package ring

import (
	"errors"
	"sync"
)

var (
	// ErrEmpty is returned when reading from a buffer with no samples.
	ErrEmpty = errors.New("ring: buffer is empty")
	// ErrOutOfRange is returned when an index falls outside the stored range.
	ErrOutOfRange = errors.New("ring: index out of range")
)

// Buffer is a fixed-capacity circular buffer. The backing array is
// allocated once at construction and never grows. Safe for concurrent use;
// each operation holds the lock once, so reads are consistent per call but
// not across calls.
type Buffer struct {
	mu   sync.Mutex
	data []float64
	head int // next write position
	size int
}

// New creates a Buffer with the given capacity. Capacities below 1 are
// raised to 1.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{data: make([]float64, capacity)}
}

// Push appends a sample, overwriting the oldest one once the buffer is
// full.
func (b *Buffer) Push(v float64) {
	b.mu.Lock()
	b.data[b.head] = v
	b.head = (b.head + 1) % len(b.data)
	if b.size < len(b.data) {
		b.size++
	}
	b.mu.Unlock()
}

// At returns the sample at logical index i, where index 0 is the oldest
// stored sample.
func (b *Buffer) At(i int) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i >= b.size {
		return 0, ErrOutOfRange
	}
	n := len(b.data)
	return b.data[(b.head+n-b.size+i)%n], nil
}

// Latest returns the most recently pushed sample.
func (b *Buffer) Latest() (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.size == 0 {
		return 0, ErrEmpty
	}
	n := len(b.data)
	return b.data[(b.head+n-1)%n], nil
}

// Values returns a copy of the stored samples, oldest first. The copy is
// taken under a single lock hold and is safe to retain.
func (b *Buffer) Values() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]float64, b.size)
	if b.size < len(b.data) {
		copy(out, b.data[:b.size])
	} else {
		// Full buffer: the oldest sample sits at head.
		n := copy(out, b.data[b.head:])
		copy(out[n:], b.data[:b.head])
	}
	return out
}

// Len returns the number of stored samples.
func (b *Buffer) Len() int {
	b.mu.Lock()
	n := b.size
	b.mu.Unlock()
	return n
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// IsFull reports whether the buffer holds as many samples as it can.
func (b *Buffer) IsFull() bool {
	b.mu.Lock()
	full := b.size == len(b.data)
	b.mu.Unlock()
	return full
}

// IsEmpty reports whether the buffer holds no samples.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// Clear drops all stored samples. The backing array is not zeroed; stale
// values are unreachable through the API.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.head = 0
	b.size = 0
	b.mu.Unlock()
}
