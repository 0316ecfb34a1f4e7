// Package soundscape is a generative ambient audio engine. It keeps a
// signal graph of layered buses in step with two continuous listener
// parameters, anxiety and rest, and with discrete growth stages.
//
// The graph is split into a master bus and one bus per layer:
//
//   - the drone: four detuned sawtooth voices that never stop,
//   - the wind: a single band-passed noise voice, present only while the
//     listener is anxious and moving,
//   - the harmony: chord voices drawn from a per-stage chord table, sounding
//     in deep rest and sent through a feedback-delay reverb,
//
// plus one-shot chimes routed straight to the master bus.
//
// The host calls Update once per tick. Chord changes and chime bursts are
// timed by two schedulers on the graph clock, and every delayed action
// (fade completion, staggered builds, chime cleanup) sits in a queue that
// Poll drains against that clock. Nothing runs on a goroutine of its own.
//
// Playback calls never return errors. If the device cannot be opened the
// engine disables itself and every later call is a no-op.
package soundscape
