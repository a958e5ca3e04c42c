package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// Song is the result of an identification.
type Song struct {
	Title            string `json:"title"`
	Artist           string `json:"artist"`
	Album            string `json:"album,omitempty"`
	Lyrics           string `json:"lyrics"`
	DetectedLanguage string `json:"detectedLanguage,omitempty"`
}

// DecodeSong parses a recognizer's JSON answer. Title, artist and lyrics
// are required; unknown fields are ignored. Failures are LookupErrors of
// kind KindParse.
func DecodeSong(data []byte) (Song, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Song{}, &LookupError{Kind: KindParse, Err: ErrEmptyResponse}
	}

	var s Song
	if err := json.Unmarshal(data, &s); err != nil {
		return Song{}, &LookupError{Kind: KindParse, Err: err}
	}

	var missing []string
	if strings.TrimSpace(s.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(s.Artist) == "" {
		missing = append(missing, "artist")
	}
	if s.Lyrics == "" {
		missing = append(missing, "lyrics")
	}
	if len(missing) > 0 {
		return Song{}, &LookupError{
			Kind: KindParse,
			Err:  fmt.Errorf("missing %s", strings.Join(missing, ", ")),
		}
	}

	return s, nil
}

var mimeTypes = map[string]string{
	".wav":  "audio/wav",
	".wave": "audio/wav",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
}

// MIMEType returns the audio MIME type for a file name, or
// "application/octet-stream" when the extension is unknown.
func MIMEType(name string) string {
	if t, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return "application/octet-stream"
}
