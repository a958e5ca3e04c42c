package engine

import "errors"

var (
	// ErrBackendInit reports that the output backend could not be started.
	// It is fatal for New.
	ErrBackendInit = errors.New("engine: backend initialization failed")

	// ErrResumeFailed reports that a suspended backend refused to resume.
	// The engine stays usable and Resume may be retried.
	ErrResumeFailed = errors.New("engine: resume failed")

	// ErrSampleRateMismatch is returned by AttachSource when the source
	// sample rate differs from the engine rate.
	ErrSampleRateMismatch = errors.New("engine: source sample rate does not match engine")

	// ErrNoChannels is returned by AttachSource for sources without audio channels.
	ErrNoChannels = errors.New("engine: source has no channels")

	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("engine: closed")
)
