// Command vocalcut removes centre-panned vocals from audio files.
//
// Usage:
//
//	vocalcut [flags] file ...
//
// Each input is decoded, converted to the processing rate, run through the
// band-split vocal remover with the configured EQ, gate and volume, and
// written as 16-bit WAV next to the input (or into -out). With -play the
// first input is played through the default audio device instead.
//
// Every flag has a VOCALCUT_* environment default, for example
// VOCALCUT_LEVEL=80 for -level 80.
//
// Examples:
//
//	vocalcut song.mp3
//	vocalcut -preset rock -out karaoke/ *.wav
//	vocalcut -level 60 -bass 2 -dither tpdf -shaping 9fc song.ogg
//	vocalcut -play -preset ballad song.wav
//	vocalcut -presets
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/cwbudde/algo-vocalcut/internal/config"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vocalcut", flag.ContinueOnError)
	fs.SetOutput(stderr)
	listPresets := fs.Bool("presets", false, "list the built-in presets and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: vocalcut [flags] file ...\n\n")
		fmt.Fprintf(stderr, "Removes centre-panned vocals and writes karaoke WAV files.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	cfg, err := config.Parse(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	if *listPresets {
		if err := printPresets(stdout); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	log, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Play {
		if fs.NArg() > 1 {
			log.Warnf("-play uses only the first input, ignoring %d more", fs.NArg()-1)
		}
		if err := play(ctx, cfg, log, fs.Arg(0)); err != nil {
			log.WithError(err).Error("playback failed")
			return 1
		}
		return 0
	}

	reports, err := batch(ctx, cfg, log, fs.Args())
	if perr := printReports(stdout, reports); perr != nil {
		log.WithError(perr).Error("writing report failed")
	}
	if err != nil {
		log.WithError(err).Error("export aborted")
		return 1
	}
	for _, r := range reports {
		if r.Err != nil {
			return 1
		}
	}
	return 0
}

// newLogger builds the command logger from the log level and format.
func newLogger(cfg config.Config, w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}

func printPresets(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Preset\tLevel [%%]\tBass [dB]\tMid [dB]\tTreble [dB]\n")
	fmt.Fprintf(tw, "------\t---------\t---------\t--------\t-----------\n")
	for _, p := range config.Presets() {
		fmt.Fprintf(tw, "%s\t%.0f\t%+.0f\t%+.0f\t%+.0f\n", p.Name, p.Level, p.Bass, p.Mid, p.Treble)
	}
	return tw.Flush()
}
