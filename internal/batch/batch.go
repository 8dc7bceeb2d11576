// Package batch orchestrates silence detection, segment planning and
// lossless cutting across a single file or a directory of recordings.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/wgong95/trim-video/internal/config"
	"github.com/wgong95/trim-video/internal/ffmpeg"
	"github.com/wgong95/trim-video/internal/logging"
	"github.com/wgong95/trim-video/internal/segments"
	"github.com/wgong95/trim-video/internal/silence"
	"github.com/wgong95/trim-video/pkg/util"
)

// Mode selects what to do with the detected silence.
type Mode int

const (
	// ModeTrim truncates the file at the start of its last silence.
	ModeTrim Mode = iota
	// ModeSplit cuts the file into segments at every silence gap.
	ModeSplit
	// ModeCut truncates at an externally supplied timestamp; detection
	// is skipped entirely.
	ModeCut
)

func (m Mode) String() string {
	switch m {
	case ModeTrim:
		return "trim"
	case ModeSplit:
		return "split"
	case ModeCut:
		return "cut"
	}
	return "unknown"
}

// Options configures a batch run.
type Options struct {
	Mode    Mode
	CutAt   float64 // ModeCut only
	Preview bool    // plan only, no cuts, no output directory
}

var (
	// ErrUnsupportedExtension marks a file whose extension is not in the
	// configured set.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	// ErrNotAFile marks a path that exists but is not a regular file.
	ErrNotAFile = errors.New("not a regular file")
)

// Cutter issues the external lossless cut/copy invocation.
type Cutter interface {
	CopyRange(ctx context.Context, input, output string, start, end float64) error
}

// Prober reads media metadata; used for reporting only.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffmpeg.MediaInfo, error)
}

// Runner processes inputs sequentially: detect (with cache), plan, cut,
// one file at a time.
type Runner struct {
	logger   zerolog.Logger
	cfg      *config.Config
	cutter   Cutter
	prober   Prober
	detector *silence.Detector
}

// New creates a runner backed by a real ffmpeg executor.
func New(logger zerolog.Logger, cfg *config.Config) (*Runner, error) {
	exec, err := ffmpeg.New(logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	detector := silence.NewDetector(logger, exec,
		cfg.Detect.NoiseDb, cfg.Detect.MinSilence, !cfg.Cache.Enabled)

	return &Runner{
		logger:   logger.With().Str("component", "batch").Logger(),
		cfg:      cfg,
		cutter:   exec,
		prober:   exec,
		detector: detector,
	}, nil
}

// Run processes a single file or every matching file in a directory. A
// failure in one file is reported and the batch continues; only an invalid
// top-level path aborts the invocation.
func (r *Runner) Run(ctx context.Context, path string, opts Options) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path %q: %w", path, err)
	}

	if info.IsDir() {
		return r.runDirectory(ctx, path, opts)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %q", ErrNotAFile, path)
	}
	if !r.cfg.Matches(path) {
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, path)
	}

	outDir := filepath.Join(filepath.Dir(path), r.cfg.OutputDirName)
	return r.processFile(ctx, r.logger, path, outDir, opts)
}

// runDirectory processes every matching file in dir, lexicographically
// sorted, writing a run-log transcript next to the directory.
func (r *Runner) runDirectory(ctx context.Context, dir string, opts Options) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %q: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		if !r.cfg.Matches(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	if len(files) == 0 {
		r.logger.Warn().Str("dir", dir).Msg("no matching files found")
		return nil
	}

	logger := r.logger
	if !opts.Preview {
		transcript, path, err := r.openTranscript(dir)
		if err != nil {
			r.logger.Warn().Err(err).Msg("could not open run log, logging to console only")
		} else {
			defer transcript.Close()
			logger = logging.NewLogger(logging.ConsoleWriter(), logging.TranscriptWriter(transcript)).
				With().Str("component", "batch").Logger()
			logger.Info().Str("run_log", path).Msg("run log opened")
		}
	}

	logger.Info().
		Str("dir", dir).
		Int("files", len(files)).
		Str("mode", opts.Mode.String()).
		Msg("starting batch")

	outDir := filepath.Join(dir, r.cfg.OutputDirName)
	failed := 0
	for _, file := range files {
		if err := r.processFile(ctx, logger, file, outDir, opts); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			logger.Error().Err(err).Str("file", file).Msg("file failed")
		}
	}

	logger.Info().
		Int("files", len(files)).
		Int("failed", failed).
		Msg("batch complete")

	return nil
}

// openTranscript creates the timestamped run-log file next to the input
// directory.
func (r *Runner) openTranscript(dir string) (*os.File, string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", err
	}

	name := fmt.Sprintf("%s_trim_%s.log", filepath.Base(abs), time.Now().Format("20060102_150405"))
	path := filepath.Join(filepath.Dir(abs), name)

	f, err := os.Create(path)
	if err != nil {
		return nil, "", err
	}
	return f, path, nil
}

// processFile runs detect → plan → cut for one source file.
func (r *Runner) processFile(ctx context.Context, logger zerolog.Logger, source, outDir string, opts Options) error {
	logger.Info().Str("file", filepath.Base(source)).Msg("processing")

	var duration float64
	if r.prober != nil {
		if info, err := r.prober.Probe(ctx, source); err == nil {
			duration = info.Duration
			logger.Debug().
				Str("duration", util.FormatSeconds(duration)).
				Str("video_codec", info.VideoCodec).
				Bool("has_audio", info.HasAudio).
				Msg("probed")
		} else {
			logger.Debug().Err(err).Msg("probe failed")
		}
	}

	spans, err := r.plan(ctx, logger, source, duration, opts)
	if err != nil {
		if errors.Is(err, segments.ErrNoSilence) || errors.Is(err, segments.ErrNothingToKeep) {
			logger.Info().
				Str("file", filepath.Base(source)).
				Str("reason", err.Error()).
				Msg("skipped")
			return nil
		}
		return err
	}

	if opts.Preview {
		for i, span := range spans {
			logger.Info().
				Int("segment", i+1).
				Str("start", util.FormatSeconds(span.Start)).
				Str("end", util.FormatSeconds(span.End)).
				Msg("planned segment (preview)")
		}
		return nil
	}

	if err := util.EnsureDir(outDir); err != nil {
		return fmt.Errorf("create output directory %q: %w", outDir, err)
	}

	failed := 0
	for i, span := range spans {
		name := filepath.Base(source)
		if opts.Mode == ModeSplit {
			name = segments.OutputName(source, i+1, len(spans))
		}
		output := filepath.Join(outDir, name)

		if util.FileExists(output) {
			logger.Info().Str("output", output).Msg("output exists, skipped")
			continue
		}

		if err := r.cutter.CopyRange(ctx, source, output, span.Start, span.End); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			logger.Error().Err(err).Str("output", output).Msg("segment failed")
			continue
		}

		logger.Info().
			Str("start", util.FormatSeconds(span.Start)).
			Str("end", util.FormatSeconds(span.End)).
			Str("output", output).
			Msg("segment written")
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d segments failed", failed, len(spans))
	}
	return nil
}

// plan derives the output spans for a source file under the given mode.
func (r *Runner) plan(ctx context.Context, logger zerolog.Logger, source string, duration float64, opts Options) ([]segments.Span, error) {
	if opts.Mode == ModeCut {
		if duration > 0 && opts.CutAt >= duration {
			logger.Warn().
				Str("cut_at", util.FormatSeconds(opts.CutAt)).
				Str("duration", util.FormatSeconds(duration)).
				Msg("cut point at or beyond end of file")
		}
		return []segments.Span{{Start: 0, End: opts.CutAt}}, nil
	}

	intervals, err := r.detector.Detect(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("silence detection: %w", err)
	}

	logger.Debug().Int("intervals", len(intervals)).Msg("silence intervals")

	if opts.Mode == ModeSplit {
		return segments.Split(intervals)
	}
	return segments.Truncate(intervals)
}
