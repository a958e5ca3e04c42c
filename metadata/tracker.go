package metadata

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// Lookup identifies a song from an encoded audio excerpt.
type Lookup interface {
	Identify(ctx context.Context, audio []byte, mimeType string) (Song, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, audio []byte, mimeType string) (Song, error)

// Identify implements Lookup.
func (f LookupFunc) Identify(ctx context.Context, audio []byte, mimeType string) (Song, error) {
	return f(ctx, audio, mimeType)
}

// Status is the state of the most recent identification.
type Status int

const (
	StatusIdle Status = iota
	StatusAnalyzing
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusAnalyzing:
		return "ANALYZING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusError:
		return "ERROR"
	default:
		return "IDLE"
	}
}

// Result is a Tracker snapshot.
type Result struct {
	Status Status
	Song   Song
	Err    error
}

// Tracker runs lookups one at a time and records their outcome.
type Tracker struct {
	lookup Lookup
	log    logrus.FieldLogger

	mu     sync.Mutex
	result Result
}

// NewTracker returns an idle tracker. A nil logger uses the logrus
// standard logger.
func NewTracker(lookup Lookup, log logrus.FieldLogger) *Tracker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Tracker{lookup: lookup, log: log}
}

// Result returns the current status and, once finished, the song or error.
func (t *Tracker) Result() Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Reset returns the tracker to StatusIdle unless a lookup is running.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.result.Status != StatusAnalyzing {
		t.result = Result{}
	}
}

// Identify runs the lookup and blocks until it finishes. It returns ErrBusy
// without touching the status if another lookup is in progress. Errors are
// classified with Classify.
func (t *Tracker) Identify(ctx context.Context, audio []byte, mimeType string) (Song, error) {
	t.mu.Lock()
	if t.result.Status == StatusAnalyzing {
		t.mu.Unlock()
		return Song{}, ErrBusy
	}
	t.result = Result{Status: StatusAnalyzing}
	t.mu.Unlock()

	log := t.log.WithFields(logrus.Fields{"bytes": len(audio), "mime": mimeType})
	log.Debug("identifying song")

	var (
		song Song
		err  error
	)
	if t.lookup == nil {
		err = ErrNotConfigured
	} else {
		song, err = t.lookup.Identify(ctx, audio, mimeType)
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err != nil {
		err = Classify(err)
		t.result = Result{Status: StatusError, Err: err}
		if errors.Is(err, context.Canceled) {
			log.Debug("identification cancelled")
		} else {
			log.WithError(err).Warn("identification failed")
		}
		return Song{}, err
	}

	t.result = Result{Status: StatusSuccess, Song: song}
	log.WithFields(logrus.Fields{"title": song.Title, "artist": song.Artist}).Info("song identified")
	return song, nil
}
