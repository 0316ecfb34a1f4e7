package device

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-grove/dsp/graph"
)

// otoBufferBlocks is the player buffer in render quanta.
const otoBufferBlocks = 8

// oto allows a single context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoRate int
	otoErr  error
)

func init() {
	Register("oto", func(log *zap.Logger) Device { return NewOto(log) })
}

func otoContext(sampleRate int, buffer time.Duration) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
			BufferSize:   buffer,
		})
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoCtx = ctx
		otoRate = sampleRate
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoRate != sampleRate {
		return nil, fmt.Errorf("device: oto already runs at %d Hz, cannot open %d Hz", otoRate, sampleRate)
	}
	return otoCtx, nil
}

// Oto plays a graph through github.com/ebitengine/oto.
type Oto struct {
	log    *zap.Logger
	player *oto.Player
	graph  *graph.Context
}

// NewOto returns a closed oto device.
func NewOto(log *zap.Logger) *Oto {
	if log == nil {
		log = zap.NewNop()
	}
	return &Oto{log: log}
}

// Open creates the graph and starts an oto player pulling it.
func (o *Oto) Open(sampleRate float64, blockSize int) (graph.Graph, error) {
	if o.graph != nil {
		return nil, ErrAlreadyOpen
	}
	g, err := graph.NewContext(sampleRate, graph.WithBlockSize(blockSize))
	if err != nil {
		return nil, fmt.Errorf("device: %w", err)
	}

	frames := g.BlockSize() * otoBufferBlocks
	buffer := time.Duration(float64(frames) / sampleRate * float64(time.Second))
	ctx, err := otoContext(int(sampleRate), buffer)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("device: oto: %w", err)
	}

	p := ctx.NewPlayer(NewPCMReader(g))
	p.SetBufferSize(frames * 4)
	p.Play()

	o.player = p
	o.graph = g
	o.log.Info("oto playback started",
		zap.Float64("sample_rate", sampleRate),
		zap.Int("buffer_frames", frames))
	return g, nil
}

// Close stops the player and closes the graph. The process-wide oto
// context stays open for a later Open at the same rate.
func (o *Oto) Close() error {
	if o.graph == nil {
		return nil
	}
	err := errors.Join(o.player.Close(), o.graph.Close())
	if perr := o.player.Err(); perr != nil {
		o.log.Warn("oto player reported an error", zap.Error(perr))
	}
	o.player = nil
	o.graph = nil
	return err
}
