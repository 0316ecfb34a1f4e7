package device

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cwbudde/algo-grove/dsp/graph"
)

// PCMReader streams a graph as float32 little-endian mono PCM. Each Read
// renders as many whole samples as fit in p. Reads on a closed graph
// return io.EOF.
type PCMReader struct {
	g   *graph.Context
	buf []float32
}

// NewPCMReader returns a reader over g.
func NewPCMReader(g *graph.Context) *PCMReader {
	return &PCMReader{g: g}
}

// Read implements io.Reader.
func (r *PCMReader) Read(p []byte) (int, error) {
	if r.g.State() == graph.Closed {
		return 0, io.EOF
	}
	n := len(p) / 4
	if n == 0 {
		return 0, nil
	}
	if cap(r.buf) < n {
		r.buf = make([]float32, n)
	}
	buf := r.buf[:n]
	r.g.Render(buf)
	for i, x := range buf {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(x))
	}
	return 4 * n, nil
}
