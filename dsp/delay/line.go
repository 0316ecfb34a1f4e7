// Package delay provides the circular delay line behind the signal graph's
// delay nodes.
package delay

import "fmt"

// Line is a circular-buffer delay line.
type Line struct {
	buffer   []float64
	writePos int
}

// New creates a delay line with the given buffer size in samples.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay line size must be > 0: %d", size)
	}
	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns buffer size in samples.
func (l *Line) Len() int { return len(l.buffer) }

// Write pushes one sample into the line.
func (l *Line) Write(x float64) {
	l.buffer[l.writePos] = x
	l.writePos++
	if l.writePos >= len(l.buffer) {
		l.writePos = 0
	}
}

// WriteBlock pushes src into the line in order.
func (l *Line) WriteBlock(src []float64) {
	for _, x := range src {
		l.Write(x)
	}
}

// Read returns the sample written delay writes ago. Read(1) is the most
// recent sample. delay must be in [1, Len()].
func (l *Line) Read(delay int) float64 {
	size := len(l.buffer)
	readPos := (l.writePos - delay + size) % size
	return l.buffer[readPos]
}

// ReadBlock fills dst with the len(dst) samples starting delay writes ago,
// oldest first, as if read one per write. delay must be in
// [len(dst), Len()].
func (l *Line) ReadBlock(dst []float64, delay int) {
	size := len(l.buffer)
	pos := (l.writePos - delay + size) % size
	for i := range dst {
		dst[i] = l.buffer[pos]
		pos++
		if pos == size {
			pos = 0
		}
	}
}

// Reset clears the line and rewinds the write position.
func (l *Line) Reset() {
	clear(l.buffer)
	l.writePos = 0
}
