//go:build js && wasm

package main

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"syscall/js"

	"github.com/cwbudde/algo-vocalcut/internal/config"
	"github.com/cwbudde/algo-vocalcut/internal/webdemo"
	"github.com/cwbudde/algo-vocalcut/metadata"
	"github.com/sirupsen/logrus"
)

var (
	session *webdemo.Session
	lookup  = &jsLookup{}
	log     = logrus.New()
	funcs   []js.Func
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("init", export(func(args []js.Value) any {
		sr := 48000.0
		if len(args) > 0 {
			sr = args[0].Float()
		}
		if session != nil {
			_ = session.Close()
		}
		s, err := webdemo.NewSession(sr, lookup, log)
		if err != nil {
			return err.Error()
		}
		session = s
		return js.Null()
	}))

	api.Set("setLookup", export(func(args []js.Value) any {
		if len(args) < 1 || args[0].Type() != js.TypeFunction {
			lookup.fn = js.Undefined()
			return js.Null()
		}
		lookup.fn = args[0]
		return js.Null()
	}))

	api.Set("attachGenerator", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return js.Null()
		}
		p := args[0]
		err := session.AttachGenerator(webdemo.GeneratorParams{
			Kind:      stringOr(p.Get("kind"), "sine"),
			FreqHz:    floatOr(p.Get("freq"), 440),
			EndHz:     floatOr(p.Get("endFreq"), 8000),
			Amplitude: floatOr(p.Get("amplitude"), 0.5),
			Seconds:   floatOr(p.Get("seconds"), 0),
			Layout:    stringOr(p.Get("layout"), "center"),
			Seed:      int64(floatOr(p.Get("seed"), 1)),
		})
		return errValue(err)
	}))

	api.Set("attachPCM", export(func(args []js.Value) any {
		if session == nil || len(args) < 3 {
			return js.Null()
		}
		return errValue(session.AttachPCM(float32sFromJS(args[0]), args[1].Int(), args[2].Int()))
	}))

	api.Set("attachFile", export(func(args []js.Value) any {
		if session == nil || len(args) < 2 {
			return js.Null()
		}
		return errValue(session.AttachEncoded(bytesFromJS(args[0]), args[1].String()))
	}))

	api.Set("detach", export(func(args []js.Value) any {
		if session == nil {
			return js.Null()
		}
		return errValue(session.Detach())
	}))

	api.Set("setVocalRemovalLevel", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return js.Null()
		}
		session.Engine().SetVocalRemovalLevel(args[0].Float())
		return js.Null()
	}))

	api.Set("toggle", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return js.Null()
		}
		session.Engine().ToggleVocalRemover(args[0].Bool())
		return js.Null()
	}))

	api.Set("setEQ", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return js.Null()
		}
		p := args[0]
		session.Engine().SetEQ(floatOr(p.Get("bass"), 0), floatOr(p.Get("mid"), 0), floatOr(p.Get("treble"), 0))
		return js.Null()
	}))

	api.Set("setVolume", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return js.Null()
		}
		session.Engine().SetVolume(args[0].Float())
		return js.Null()
	}))

	api.Set("setNoiseGate", export(func(args []js.Value) any {
		if session == nil || len(args) < 2 {
			return js.Null()
		}
		session.Engine().SetNoiseGate(args[0].Bool(), args[1].Float())
		return js.Null()
	}))

	api.Set("applyPreset", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return js.Null()
		}
		return errValue(session.ApplyPreset(args[0].String()))
	}))

	api.Set("presets", export(func(args []js.Value) any {
		names := config.PresetNames()
		out := make([]any, len(names))
		for i, n := range names {
			out[i] = n
		}
		return js.ValueOf(out)
	}))

	api.Set("resume", export(func(args []js.Value) any {
		if session == nil {
			return js.Null()
		}
		return errValue(session.Resume())
	}))

	api.Set("render", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		n := args[0].Int()
		buf := make([]float32, n)
		session.Render(buf)
		arr := js.Global().Get("Float32Array").New(n)
		for i := 0; i < n; i++ {
			arr.SetIndex(i, buf[i])
		}
		return arr
	}))

	api.Set("spectrum", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		return float64sToJS(session.SpectrumCurveDB(float64sFromJS(args[0])))
	}))

	api.Set("eqResponse", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		return float64sToJS(session.ResponseCurveDB(float64sFromJS(args[0])))
	}))

	api.Set("snapshot", export(func(args []js.Value) any {
		if session == nil {
			return js.Null()
		}
		return js.ValueOf(session.Snapshot())
	}))

	api.Set("captureFailed", export(func(args []js.Value) any {
		if session == nil || len(args) < 2 {
			return js.Null()
		}
		return session.CaptureFailed("", args[0].String(), args[1].String()).Error()
	}))

	api.Set("identify", export(func(args []js.Value) any {
		if session == nil || len(args) < 2 {
			return js.Null()
		}
		s := session
		audio := bytesFromJS(args[0])
		name := args[1].String()
		return newPromise(func() (any, error) {
			_, err := s.Identify(context.Background(), audio, name)
			if errors.Is(err, metadata.ErrBusy) {
				return nil, err
			}
			return js.ValueOf(s.MetadataStatus()), nil
		})
	}))

	api.Set("metadataStatus", export(func(args []js.Value) any {
		if session == nil {
			return js.Null()
		}
		return js.ValueOf(session.MetadataStatus())
	}))

	js.Global().Set("VocalCut", api)
	select {}
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}

func errValue(err error) any {
	if err != nil {
		return err.Error()
	}
	return js.Null()
}

func floatOr(v js.Value, fallback float64) float64 {
	if v.Type() != js.TypeNumber {
		return fallback
	}
	return v.Float()
}

func stringOr(v js.Value, fallback string) string {
	if v.Type() != js.TypeString {
		return fallback
	}
	return v.String()
}

// bytesFromJS copies a Uint8Array or ArrayBuffer.
func bytesFromJS(v js.Value) []byte {
	if v.InstanceOf(js.Global().Get("ArrayBuffer")) {
		v = js.Global().Get("Uint8Array").New(v)
	}
	out := make([]byte, v.Get("byteLength").Int())
	js.CopyBytesToGo(out, v)
	return out
}

// float32sFromJS copies a Float32Array through its bytes; per-element
// access is too slow for whole songs.
func float32sFromJS(v js.Value) []float32 {
	raw := js.Global().Get("Uint8Array").New(v.Get("buffer"), v.Get("byteOffset"), v.Get("byteLength"))
	b := make([]byte, raw.Get("byteLength").Int())
	js.CopyBytesToGo(b, raw)

	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out
}

func float64sFromJS(v js.Value) []float64 {
	out := make([]float64, v.Length())
	for i := range out {
		out[i] = v.Index(i).Float()
	}
	return out
}

func float64sToJS(vals []float64) js.Value {
	arr := js.Global().Get("Float32Array").New(len(vals))
	for i, v := range vals {
		arr.SetIndex(i, v)
	}
	return arr
}

// newPromise runs fn on a goroutine and settles a JS promise with its result.
func newPromise(fn func() (any, error)) js.Value {
	executor := js.FuncOf(func(_ js.Value, args []js.Value) any {
		resolve, reject := args[0], args[1]
		go func() {
			v, err := fn()
			if err != nil {
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolve.Invoke(v)
		}()
		return nil
	})
	defer executor.Release()
	return js.Global().Get("Promise").New(executor)
}

// jsLookup forwards song identification to a page callback that returns a
// promise of the JSON song document.
type jsLookup struct {
	fn js.Value
}

var _ metadata.Lookup = (*jsLookup)(nil)

func (l *jsLookup) Identify(ctx context.Context, audio []byte, mimeType string) (metadata.Song, error) {
	if l.fn.Type() != js.TypeFunction {
		return metadata.Song{}, metadata.ErrNotConfigured
	}

	arr := js.Global().Get("Uint8Array").New(len(audio))
	js.CopyBytesToJS(arr, audio)

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	onOK := js.FuncOf(func(_ js.Value, args []js.Value) any {
		done <- outcome{text: args[0].String()}
		return nil
	})
	onErr := js.FuncOf(func(_ js.Value, args []js.Value) any {
		done <- outcome{err: errors.New(args[0].Call("toString").String())}
		return nil
	})
	defer onOK.Release()
	defer onErr.Release()

	l.fn.Invoke(arr, mimeType).Call("then", onOK, onErr)

	select {
	case o := <-done:
		if o.err != nil {
			return metadata.Song{}, o.err
		}
		return metadata.DecodeSong([]byte(o.text))
	case <-ctx.Done():
		return metadata.Song{}, ctx.Err()
	}
}
