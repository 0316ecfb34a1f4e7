// Package graph is a small native signal graph modelled on the Web Audio
// node vocabulary: oscillators, looping buffer sources, biquad filters,
// gains, delays and an analyser, wired with Connect and automated through
// Param events on a sample clock.
//
// Graph is the capability set consumed by higher layers. Context is the
// pure Go implementation: it renders mono audio in fixed quanta, pulling
// from the destination and caching each node's output once per quantum.
// Feedback loops are only legal through a Delay, whose effective delay is
// at least one quantum.
//
// A device backend drives Context.Render from its own goroutine; tests and
// offline renders drive it with Advance.
package graph
