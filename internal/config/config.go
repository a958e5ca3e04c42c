// Package config holds the vocalcut command configuration. Defaults come
// from VOCALCUT_* environment variables and are overridden by flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-vocalcut/dsp/dither"
	"github.com/cwbudde/algo-vocalcut/dsp/resample"
)

// Config holds the runtime configuration of the vocalcut command.
type Config struct {
	// Engine
	SampleRate int
	BlockSize  int

	// Processing
	Preset        string
	Level         float64 // vocal removal, percent
	Bass          float64 // dB
	Mid           float64 // dB
	Treble        float64 // dB
	Volume        float64 // linear
	Gate          bool
	GateThreshold float64 // dBFS

	// Batch rendering
	OutputDir   string
	Suffix      string
	Jobs        int
	Resample    string // fast, balanced or best
	MaxDuration time.Duration
	Dither      string // none, rpdf or tpdf
	Shaping     string // flat, efb, 3fc, 9fc or sharp

	// Live playback
	Play       bool
	BufferSize time.Duration

	// Logging
	LogLevel  string
	LogFormat string // text or json
}

// Load reads the configuration from the environment with sane defaults.
func Load() Config {
	return Config{
		SampleRate: envInt("VOCALCUT_SAMPLE_RATE", 48000),
		BlockSize:  envInt("VOCALCUT_BLOCK_SIZE", 128),

		Preset:        envStr("VOCALCUT_PRESET", ""),
		Level:         envFloat("VOCALCUT_LEVEL", 100),
		Bass:          envFloat("VOCALCUT_BASS", 0),
		Mid:           envFloat("VOCALCUT_MID", 0),
		Treble:        envFloat("VOCALCUT_TREBLE", 0),
		Volume:        envFloat("VOCALCUT_VOLUME", 1),
		Gate:          envBool("VOCALCUT_GATE", false),
		GateThreshold: envFloat("VOCALCUT_GATE_THRESHOLD", -40),

		OutputDir:   envStr("VOCALCUT_OUTPUT_DIR", ""),
		Suffix:      envStr("VOCALCUT_SUFFIX", "_karaoke"),
		Jobs:        envInt("VOCALCUT_JOBS", runtime.NumCPU()),
		Resample:    envStr("VOCALCUT_RESAMPLE", "balanced"),
		MaxDuration: envDuration("VOCALCUT_MAX_DURATION", time.Hour),
		Dither:      envStr("VOCALCUT_DITHER", "none"),
		Shaping:     envStr("VOCALCUT_SHAPING", "flat"),

		Play:       envBool("VOCALCUT_PLAY", false),
		BufferSize: envDuration("VOCALCUT_BUFFER", 100*time.Millisecond),

		LogLevel:  envStr("VOCALCUT_LOG_LEVEL", "info"),
		LogFormat: envStr("VOCALCUT_LOG_FORMAT", "text"),
	}
}

// RegisterFlags binds every field to a flag on fs, using the current
// values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.SampleRate, "rate", c.SampleRate, "processing sample rate in Hz")
	fs.IntVar(&c.BlockSize, "block", c.BlockSize, "processing block size in frames")

	fs.StringVar(&c.Preset, "preset", c.Preset, "named preset ("+strings.Join(PresetNames(), ", ")+")")
	fs.Float64Var(&c.Level, "level", c.Level, "vocal removal level in percent (0-100)")
	fs.Float64Var(&c.Bass, "bass", c.Bass, "bass shelf gain in dB (-6..6)")
	fs.Float64Var(&c.Mid, "mid", c.Mid, "mid peak gain in dB (-6..6)")
	fs.Float64Var(&c.Treble, "treble", c.Treble, "treble shelf gain in dB (-6..6)")
	fs.Float64Var(&c.Volume, "volume", c.Volume, "linear master volume")
	fs.BoolVar(&c.Gate, "gate", c.Gate, "enable the output noise gate")
	fs.Float64Var(&c.GateThreshold, "gate-threshold", c.GateThreshold, "noise gate threshold in dBFS (-80..-20)")

	fs.StringVar(&c.OutputDir, "out", c.OutputDir, "output directory (default: next to each input)")
	fs.StringVar(&c.Suffix, "suffix", c.Suffix, "suffix appended to output file names")
	fs.IntVar(&c.Jobs, "jobs", c.Jobs, "files rendered in parallel")
	fs.StringVar(&c.Resample, "resample", c.Resample, "resampling quality for inputs at other rates (fast, balanced, best)")
	fs.DurationVar(&c.MaxDuration, "max-duration", c.MaxDuration, "longest output rendered per file")
	fs.StringVar(&c.Dither, "dither", c.Dither, "dither applied when writing 16-bit output (none, rpdf, tpdf)")
	fs.StringVar(&c.Shaping, "shaping", c.Shaping, "noise shaping of the quantization error (flat, efb, 3fc, 9fc, sharp)")

	fs.BoolVar(&c.Play, "play", c.Play, "play the first input through the audio device instead of exporting")
	fs.DurationVar(&c.BufferSize, "buffer", c.BufferSize, "audio device buffer length")

	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format (text, json)")
}

// Parse loads the environment, parses args with fs and applies the preset.
// Flags given explicitly win over preset values.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	c := Load()
	c.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if c.Preset != "" {
		if err := c.ApplyPreset(c.Preset, explicit); err != nil {
			return Config{}, err
		}
	}
	return c, c.Validate()
}

// Validate reports settings the command cannot run with. Processing values
// are not checked here: the engine clamps them.
func (c Config) Validate() error {
	var errs []error
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample rate must be > 0, got %d", c.SampleRate))
	}
	if c.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("block size must be > 0, got %d", c.BlockSize))
	}
	if c.Jobs <= 0 {
		errs = append(errs, fmt.Errorf("jobs must be > 0, got %d", c.Jobs))
	}
	if c.MaxDuration <= 0 {
		errs = append(errs, fmt.Errorf("max duration must be > 0, got %s", c.MaxDuration))
	}
	if c.Suffix == "" && c.OutputDir == "" {
		errs = append(errs, errors.New("an empty suffix needs -out, or inputs would be overwritten"))
	}
	if _, ok := resample.ParseQuality(c.Resample); !ok {
		errs = append(errs, fmt.Errorf("unknown resample quality %q", c.Resample))
	}
	if _, err := dither.ParseType(c.Dither); err != nil {
		errs = append(errs, err)
	}
	if _, err := dither.ParseShaping(c.Shaping); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
