package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-vocalcut/dsp/dither"
	"github.com/cwbudde/algo-vocalcut/engine"
	"github.com/cwbudde/algo-vocalcut/export"
	"github.com/cwbudde/algo-vocalcut/internal/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// report is the outcome of one input file.
type report struct {
	Input     string
	Output    string
	Duration  time.Duration
	In, Out   summary
	Truncated bool
	Err       error
}

// outputPath names the WAV written for in.
func outputPath(in, dir, suffix string) string {
	base := filepath.Base(in)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if dir == "" {
		dir = filepath.Dir(in)
	}
	return filepath.Join(dir, name+suffix+".wav")
}

// batch exports every input, at most cfg.Jobs at a time. A failing file does
// not stop the others; the returned error is only set when ctx ends the run.
func batch(ctx context.Context, cfg config.Config, log logrus.FieldLogger, inputs []string) ([]report, error) {
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	reports := make([]report, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)

	for i, in := range inputs {
		g.Go(func() error {
			flog := log.WithField("input", in)
			r := exportFile(gctx, cfg, flog, in)
			reports[i] = r

			switch {
			case r.Err == nil:
				flog.WithFields(logrus.Fields{
					"output":   r.Output,
					"duration": r.Duration.Round(time.Millisecond),
				}).Info("exported")
			case errors.Is(r.Err, context.Canceled), errors.Is(r.Err, context.DeadlineExceeded):
				return r.Err
			default:
				flog.WithError(r.Err).Error("export failed")
			}
			return nil
		})
	}

	return reports, g.Wait()
}

// exportFile renders one input through a fresh offline engine.
func exportFile(ctx context.Context, cfg config.Config, log logrus.FieldLogger, in string) report {
	r := report{Input: in, Output: outputPath(in, cfg.OutputDir, cfg.Suffix)}

	if same, err := samePath(in, r.Output); err != nil || same {
		if err == nil {
			err = errors.New("output would overwrite the input")
		}
		r.Err = err
		return r
	}

	src, err := openInput(cfg, in)
	if err != nil {
		r.Err = err
		return r
	}

	rate := float64(cfg.SampleRate)
	inLv, err := newLevels(rate)
	if err != nil {
		_ = src.Close()
		r.Err = err
		return r
	}
	outLv, err := newLevels(rate)
	if err != nil {
		_ = src.Close()
		r.Err = err
		return r
	}

	eng, err := newEngine(cfg, &engine.Offline{}, log)
	if err != nil {
		_ = src.Close()
		r.Err = err
		return r
	}
	defer func() {
		if err := eng.Close(); err != nil {
			log.WithError(err).Warn("closing engine failed")
		}
	}()

	// The engine owns the source from here and closes it.
	if err := eng.AttachSource(&meteredSource{Source: src, lv: inLv}); err != nil {
		_ = src.Close()
		r.Err = err
		return r
	}

	buf, err := export.RenderSource(ctx, eng, cfg.MaxDuration)
	if err != nil {
		r.Err = err
		return r
	}
	if !eng.SourceDone() {
		r.Truncated = true
		log.WithField("max_duration", cfg.MaxDuration).Warn("output truncated")
	}

	outLv.process(buf.L, buf.R)
	r.In, r.Out = inLv.summary(), outLv.summary()
	r.Duration = time.Duration(float64(buf.Len()) / rate * float64(time.Second))

	opts, err := encodeOptions(cfg)
	if err != nil {
		r.Err = err
		return r
	}
	if err := export.WriteFile(r.Output, buf, cfg.SampleRate, opts...); err != nil {
		r.Err = err
		return r
	}
	return r
}

func encodeOptions(cfg config.Config) ([]export.EncodeOption, error) {
	t, err := dither.ParseType(cfg.Dither)
	if err != nil {
		return nil, err
	}
	s, err := dither.ParseShaping(cfg.Shaping)
	if err != nil {
		return nil, err
	}
	if t == dither.None && s == dither.Flat {
		return nil, nil
	}
	return []export.EncodeOption{export.WithDither(t, s, 0)}, nil
}

func samePath(a, b string) (bool, error) {
	aa, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	bb, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return aa == bb, nil
}

func formatDB(v float64) string {
	if math.IsInf(v, -1) || v <= -120 {
		return "-inf"
	}
	return fmt.Sprintf("%.1f", v)
}

// printReports writes one row per input in the order given.
func printReports(w io.Writer, reports []report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Input\tDuration\tIn [LUFS]\tOut [LUFS]\tOut Peak [dBFS]\tClipped\tOutput\n")
	fmt.Fprintf(tw, "-----\t--------\t---------\t----------\t---------------\t-------\t------\n")

	for _, r := range reports {
		if r.Input == "" {
			continue
		}
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\terror: %v\n", r.Input, r.Err)
			continue
		}
		out := r.Output
		if r.Truncated {
			out += " (truncated)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.Input,
			r.Duration.Round(10*time.Millisecond),
			formatDB(r.In.LUFS),
			formatDB(r.Out.LUFS),
			formatDB(r.Out.PeakDB),
			r.Out.Clipped,
			out,
		)
	}
	return tw.Flush()
}
