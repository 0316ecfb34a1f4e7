package graph

import (
	"math"

	"github.com/cwbudde/algo-grove/dsp/delay"
)

// delayNode feeds a delay line. Its output for a quantum is read before
// its input is written, which is what lets it close feedback loops.
type delayNode struct {
	node
	delayTime *param

	line    *delay.Line
	scratch []float64
}

// DelayTime returns the delay time parameter in seconds.
func (d *delayNode) DelayTime() Param { return d.delayTime }

func (d *delayNode) process(q uint64) {
	c := d.ctx
	lag := int(math.Round(d.delayTime.values(q)[0] * c.sampleRate))
	lag = max(c.blockSize, min(lag, d.line.Len()-c.blockSize))
	d.line.ReadBlock(d.out, lag)
}

// commit writes the summed input of quantum q into the line.
func (d *delayNode) commit(q uint64) {
	d.mixInputs(q, d.scratch)
	d.line.WriteBlock(d.scratch)
}
