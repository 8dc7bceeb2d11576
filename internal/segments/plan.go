// Package segments turns detected silence intervals into an ordered plan
// of contiguous output spans.
package segments

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wgong95/trim-video/internal/silence"
)

// ErrNoSilence is returned when a plan is requested for a detection result
// with no intervals. Callers treat it as a soft skip, not a failure.
var ErrNoSilence = errors.New("no silence detected")

// ErrNothingToKeep is returned when no content precedes the first cut
// point, e.g. a file that is silent from the very start. Also a soft skip:
// cutting would copy the dead air the plan exists to remove.
var ErrNothingToKeep = errors.New("no content before first cut point")

// Span is a half-open time range [Start, End) in seconds.
type Span struct {
	Start float64
	End   float64
}

// Truncate plans a single span ending at the start of the last silence
// interval, dropping everything after it.
func Truncate(intervals []silence.Interval) ([]Span, error) {
	if len(intervals) == 0 {
		return nil, ErrNoSilence
	}

	cut := intervals[len(intervals)-1].Start
	if cut <= 0 {
		return nil, ErrNothingToKeep
	}
	return []Span{{Start: 0, End: cut}}, nil
}

// Split plans one span per silence gap. The split point for a closed
// interval is its midpoint; an open-ended trailing interval splits at its
// start. Content after the last split point is discarded.
func Split(intervals []silence.Interval) ([]Span, error) {
	if len(intervals) == 0 {
		return nil, ErrNoSilence
	}

	points := make([]float64, 0, len(intervals))
	for _, iv := range intervals {
		if iv.Closed() {
			points = append(points, (iv.Start+*iv.End)/2)
		} else {
			points = append(points, iv.Start)
		}
	}

	spans := make([]Span, 0, len(points))
	prev := 0.0
	for _, p := range points {
		if p <= prev {
			// A split point at 0 (silence from the very start) would
			// make an empty leading span; drop it.
			continue
		}
		spans = append(spans, Span{Start: prev, End: p})
		prev = p
	}

	if len(spans) == 0 {
		return nil, ErrNothingToKeep
	}
	return spans, nil
}

// OutputName derives the file name for split segment index (1-based) out of
// total: a zero-padded suffix before the extension, width at least two.
func OutputName(path string, index, total int) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)

	width := len(fmt.Sprintf("%d", total))
	if width < 2 {
		width = 2
	}

	return fmt.Sprintf("%s_%0*d%s", base, width, index, ext)
}
