package silence

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Scanner runs the external silence analysis and returns its raw
// diagnostic transcript.
type Scanner interface {
	SilenceScan(ctx context.Context, input string, noiseDb, minDuration float64) (string, error)
}

// Detector finds silence intervals in a source file, consulting the sidecar
// cache before invoking the scanner.
type Detector struct {
	logger      zerolog.Logger
	scanner     Scanner
	noiseDb     float64
	minDuration float64
	noCache     bool
}

// NewDetector creates a detector with the given detection parameters.
func NewDetector(logger zerolog.Logger, scanner Scanner, noiseDb, minDuration float64, noCache bool) *Detector {
	return &Detector{
		logger:      logger.With().Str("component", "detector").Logger(),
		scanner:     scanner,
		noiseDb:     noiseDb,
		minDuration: minDuration,
		noCache:     noCache,
	}
}

// Detect returns the silence intervals for source, in ascending start
// order. A valid cache entry short-circuits the scan; a fresh result is
// cached best-effort unless it is empty.
func (d *Detector) Detect(ctx context.Context, source string) ([]Interval, error) {
	if !d.noCache {
		if intervals, ok := LoadCache(source, d.noiseDb, d.minDuration); ok {
			d.logger.Debug().
				Str("source", source).
				Int("intervals", len(intervals)).
				Msg("cache hit")
			return intervals, nil
		}
	}

	output, err := d.scanner.SilenceScan(ctx, source, d.noiseDb, d.minDuration)
	if err != nil {
		return nil, err
	}

	intervals := Parse(strings.NewReader(output))

	d.logger.Debug().
		Str("source", source).
		Int("intervals", len(intervals)).
		Msg("silence scan complete")

	if !d.noCache {
		if err := SaveCache(source, d.noiseDb, d.minDuration, intervals); err != nil {
			d.logger.Warn().Err(err).Str("source", source).Msg("could not write cache sidecar")
		}
	}

	return intervals, nil
}
