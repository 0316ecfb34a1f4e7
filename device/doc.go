// Package device plays a [graph.Context] on an audio device.
//
// A Device opens one context and pulls it from the device's own goroutine
// through [graph.Context.Render]. Its Open method matches the backend
// signature the soundscape engine expects, so a Device can be handed to the
// engine directly.
//
// Backends register themselves by name. The oto backend is always built;
// the portaudio backend needs the portaudio build tag and the PortAudio C
// library.
package device
