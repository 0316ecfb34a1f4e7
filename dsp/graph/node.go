package graph

import "github.com/cwbudde/algo-vecmath"

// renderer is implemented by every native node type.
type renderer interface {
	base() *node
	// process renders quantum q into base().out.
	process(q uint64)
}

// node holds the connection state shared by all native nodes.
type node struct {
	ctx  *Context
	self renderer

	inputs []*node
	outs   []*node
	params []*param

	out     []float64
	quantum uint64
	busy    bool
}

func (n *node) base() *node { return n }

// pull returns the node output for quantum q, rendering it at most once.
// A node re-entered through a cycle without a delay reads silence.
func (n *node) pull(q uint64) []float64 {
	if n.quantum == q {
		return n.out
	}
	if n.busy {
		return n.ctx.silence
	}
	n.busy = true
	n.self.process(q)
	n.busy = false
	n.quantum = q
	return n.out
}

// mixInputs sums all inputs for quantum q into dst.
func (n *node) mixInputs(q uint64, dst []float64) {
	clear(dst)
	for _, in := range n.inputs {
		vecmath.AddBlockInPlace(dst, in.pull(q))
	}
}

// Connect routes the node output into dst.
func (n *node) Connect(dst Node) {
	c := n.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.nativeNode(dst)
	for _, in := range d.inputs {
		if in == n {
			return
		}
	}
	d.inputs = append(d.inputs, n)
	n.outs = append(n.outs, d)
}

// ConnectParam adds the node output to p.
func (n *node) ConnectParam(p Param) {
	c := n.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	np := c.nativeParam(p)
	for _, in := range np.inputs {
		if in == n {
			return
		}
	}
	np.inputs = append(np.inputs, n)
	n.params = append(n.params, np)
}

// Disconnect removes every outgoing connection and releases the node.
// Calling it again is a no-op.
func (n *node) Disconnect() {
	c := n.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range n.outs {
		d.inputs = removeNode(d.inputs, n)
	}
	for _, p := range n.params {
		p.inputs = removeNode(p.inputs, n)
	}
	n.outs = nil
	n.params = nil
	if d, ok := n.self.(*delayNode); ok {
		c.removeDelay(d)
	}
	delete(c.nodes, n)
}

func removeNode(list []*node, n *node) []*node {
	for i, x := range list {
		if x == n {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

type destinationNode struct {
	node
}

func (d *destinationNode) process(q uint64) {
	d.mixInputs(q, d.out)
}

type gainNode struct {
	node
	gain *param
}

func (g *gainNode) Gain() Param { return g.gain }

func (g *gainNode) process(q uint64) {
	g.mixInputs(q, g.out)
	vecmath.MulBlockInPlace(g.out, g.gain.values(q))
}
