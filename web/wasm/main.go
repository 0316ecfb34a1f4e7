//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cwbudde/algo-grove/device"
	"github.com/cwbudde/algo-grove/soundscape"
)

var (
	engine   *soundscape.Engine
	offline  device.Offline
	gestured bool
	funcs    []js.Func
	scratch  []float32
)

func main() {
	api := js.Global().Get("Object").New()

	// gesture must be called from a user input handler before init.
	api.Set("gesture", export(func(args []js.Value) any {
		gestured = true
		if engine != nil {
			engine.NotifyUserGesture()
		}
		return js.Null()
	}))

	api.Set("init", export(func(args []js.Value) any {
		cfg := soundscape.DefaultConfig()
		if len(args) > 0 {
			cfg.SampleRate = args[0].Float()
		}
		if engine == nil {
			e, err := soundscape.New(soundscape.WithConfig(cfg), soundscape.WithBackend(&offline))
			if err != nil {
				return err.Error()
			}
			engine = e
		}
		if gestured {
			engine.NotifyUserGesture()
		}
		engine.Init()
		return engine.Initialized()
	}))

	api.Set("update", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		p := args[0]
		engine.Update(soundscape.Params{
			Anxiety:  p.Get("anxiety").Float(),
			Resting:  p.Get("resting").Truthy(),
			Rest:     p.Get("rest").Float(),
			DeepRest: p.Get("deepRest").Truthy(),
			Stage:    stageArg(p.Get("stage")),
		})
		return js.Null()
	}))

	api.Set("render", export(func(args []js.Value) any {
		g := offline.Context()
		if g == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		n := args[0].Int()
		if cap(scratch) < n {
			scratch = make([]float32, n)
		}
		buf := scratch[:n]
		g.Render(buf)
		arr := js.Global().Get("Float32Array").New(n)
		for i := 0; i < n; i++ {
			arr.SetIndex(i, buf[i])
		}
		return arr
	}))

	api.Set("toggle", export(func(args []js.Value) any {
		if engine == nil {
			return false
		}
		engine.Toggle()
		return engine.Enabled()
	}))

	api.Set("bloom", export(func(args []js.Value) any {
		if engine == nil {
			return js.Null()
		}
		pitch := 523.25
		if len(args) > 0 {
			pitch = args[0].Float()
		}
		engine.PlayBloomBurst(pitch)
		return js.Null()
	}))

	api.Set("milestone", export(func(args []js.Value) any {
		if engine == nil || len(args) < 3 {
			return js.Null()
		}
		engine.Milestone(stageArg(args[0]), args[1].Truthy(), args[2].Float())
		return js.Null()
	}))

	api.Set("setVolume", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		engine.SetMasterVolume(args[0].Float())
		return js.Null()
	}))

	api.Set("spectrum", export(func(args []js.Value) any {
		if engine == nil {
			return js.Global().Get("Float32Array").New(0)
		}
		spec := engine.Spectrum(nil)
		arr := js.Global().Get("Float32Array").New(len(spec))
		for i := range spec {
			arr.SetIndex(i, spec[i])
		}
		return arr
	}))

	api.Set("harmonyStage", export(func(args []js.Value) any {
		if engine == nil {
			return ""
		}
		return string(engine.CurrentHarmonyStage())
	}))

	js.Global().Set("Grove", api)
	select {}
}

func stageArg(v js.Value) soundscape.Stage {
	if v.Type() != js.TypeString {
		return soundscape.Bare
	}
	return soundscape.Stage(v.String())
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
