package source

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Cause classifies why a capture device could not be opened.
type Cause int

const (
	// CauseOther covers every failure that is not one of the below.
	CauseOther Cause = iota
	// CausePermissionDenied means the user or the OS refused access.
	CausePermissionDenied
	// CauseNoDevice means no matching input device exists.
	CauseNoDevice
)

func (c Cause) String() string {
	switch c {
	case CausePermissionDenied:
		return "permission denied"
	case CauseNoDevice:
		return "no device"
	default:
		return "capture failed"
	}
}

// CaptureError reports a failed attempt to open an input device.
type CaptureError struct {
	Cause  Cause
	Device string
	Err    error
}

func (e *CaptureError) Error() string {
	dev := e.Device
	if dev == "" {
		dev = "default input"
	}
	if e.Err == nil {
		return fmt.Sprintf("source: capture %s: %s", dev, e.Cause)
	}
	return fmt.Sprintf("source: capture %s: %s: %v", dev, e.Cause, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// ClassifyCaptureError wraps err in a CaptureError whose Cause is derived
// from the underlying error. A nil err yields nil; an err that already is
// a CaptureError is returned as is.
func ClassifyCaptureError(device string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CaptureError
	if errors.As(err, &ce) {
		return err
	}

	cause := CauseOther
	switch {
	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		cause = CausePermissionDenied
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENODEV), errors.Is(err, syscall.ENXIO):
		cause = CauseNoDevice
	}
	return &CaptureError{Cause: cause, Device: device, Err: err}
}

// CauseFromName maps a browser media error name, as reported by
// getUserMedia, to a Cause.
func CauseFromName(name string) Cause {
	switch name {
	case "NotAllowedError", "SecurityError", "PermissionDeniedError":
		return CausePermissionDenied
	case "NotFoundError", "OverconstrainedError", "DevicesNotFoundError":
		return CauseNoDevice
	default:
		return CauseOther
	}
}

// ErrNoAudioTracks reports a capture stream that carries no audio.
var ErrNoAudioTracks = errors.New("source: capture stream has no audio tracks")
