// Package playback plays an engine through the system audio device with
// github.com/ebitengine/oto/v3.
//
// The device pulls little-endian float32 stereo bytes from a StreamReader,
// which renders them on demand, so the engine runs on oto's audio thread.
package playback
