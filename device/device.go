package device

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-grove/dsp/graph"
)

// ErrAlreadyOpen is returned by Open on a device that already plays a graph.
var ErrAlreadyOpen = errors.New("device: already open")

// Device plays one graph at a time.
type Device interface {
	// Open creates a graph at sampleRate and starts pulling it.
	Open(sampleRate float64, blockSize int) (graph.Graph, error)
	// Close stops playback and closes the graph.
	Close() error
}

// Factory creates a device.
type Factory func(log *zap.Logger) Device

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under name. It replaces an earlier
// registration of the same name.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = f
}

// New creates the device registered under name.
func New(name string, log *zap.Logger) (Device, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("device: unknown backend %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return f(log.Named("device")), nil
}

// Names returns the registered backend names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Offline opens graphs that nothing plays. The caller drives the clock
// with Advance or reads the audio through a [PCMReader].
type Offline struct {
	ctx *graph.Context
}

// Open creates the graph.
func (o *Offline) Open(sampleRate float64, blockSize int) (graph.Graph, error) {
	if o.ctx != nil {
		return nil, ErrAlreadyOpen
	}
	ctx, err := graph.NewContext(sampleRate, graph.WithBlockSize(blockSize))
	if err != nil {
		return nil, fmt.Errorf("device: %w", err)
	}
	o.ctx = ctx
	return ctx, nil
}

// Context returns the opened graph, or nil before Open.
func (o *Offline) Context() *graph.Context { return o.ctx }

// Close closes the graph.
func (o *Offline) Close() error {
	if o.ctx == nil {
		return nil
	}
	return o.ctx.Close()
}
