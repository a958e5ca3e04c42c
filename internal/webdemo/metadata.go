package webdemo

import (
	"context"

	"github.com/cwbudde/algo-vocalcut/metadata"
)

// Identify sends audio to the configured lookup. It blocks until the lookup
// finishes; call it off the audio thread.
func (s *Session) Identify(ctx context.Context, audio []byte, name string) (metadata.Song, error) {
	return s.tracker.Identify(ctx, audio, metadata.MIMEType(name))
}

// MetadataStatus reports the identification state for the page.
func (s *Session) MetadataStatus() map[string]any {
	r := s.tracker.Result()
	out := map[string]any{"status": r.Status.String()}
	switch r.Status {
	case metadata.StatusSuccess:
		song := map[string]any{
			"title":  r.Song.Title,
			"artist": r.Song.Artist,
			"lyrics": r.Song.Lyrics,
		}
		if r.Song.Album != "" {
			song["album"] = r.Song.Album
		}
		if r.Song.DetectedLanguage != "" {
			song["detectedLanguage"] = r.Song.DetectedLanguage
		}
		out["song"] = song
	case metadata.StatusError:
		out["error"] = r.Err.Error()
		out["kind"] = metadata.KindOf(r.Err).String()
	}
	return out
}

// ResetMetadata clears a finished identification.
func (s *Session) ResetMetadata() { s.tracker.Reset() }
