//go:build portaudio

package device

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-grove/dsp/graph"
)

// portaudioBlocks is the stream buffer in render quanta.
const portaudioBlocks = 4

func init() {
	Register("portaudio", func(log *zap.Logger) Device { return NewPortAudio(log) })
}

// PortAudio plays a graph on the default PortAudio output stream.
type PortAudio struct {
	log    *zap.Logger
	stream *portaudio.Stream
	graph  *graph.Context
}

// NewPortAudio returns a closed PortAudio device.
func NewPortAudio(log *zap.Logger) *PortAudio {
	if log == nil {
		log = zap.NewNop()
	}
	return &PortAudio{log: log}
}

// Open initializes PortAudio, creates the graph and starts a mono output
// stream whose callback renders it.
func (p *PortAudio) Open(sampleRate float64, blockSize int) (graph.Graph, error) {
	if p.graph != nil {
		return nil, ErrAlreadyOpen
	}
	g, err := graph.NewContext(sampleRate, graph.WithBlockSize(blockSize))
	if err != nil {
		return nil, fmt.Errorf("device: %w", err)
	}
	if err := portaudio.Initialize(); err != nil {
		g.Close()
		return nil, fmt.Errorf("device: portaudio: %w", err)
	}

	frames := g.BlockSize() * portaudioBlocks
	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRate, frames, func(out []float32) {
		g.Render(out)
	})
	if err != nil {
		g.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("device: portaudio: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		g.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("device: portaudio: %w", err)
	}

	p.stream = stream
	p.graph = g
	p.log.Info("portaudio playback started",
		zap.Float64("sample_rate", sampleRate),
		zap.Int("frames_per_buffer", frames))
	return g, nil
}

// Close stops the stream, closes the graph and terminates PortAudio.
func (p *PortAudio) Close() error {
	if p.graph == nil {
		return nil
	}
	err := errors.Join(p.stream.Stop(), p.stream.Close(), p.graph.Close(), portaudio.Terminate())
	p.stream = nil
	p.graph = nil
	return err
}
