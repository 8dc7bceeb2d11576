// Package silence locates quiet passages in media files by parsing the
// diagnostic output of ffmpeg's silencedetect filter, with a JSON sidecar
// cache keyed by the detection parameters.
package silence

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Interval is a maximal span where audio stays below the silence threshold.
// A nil End means the silence runs to end-of-stream; Duration is then nil
// as well.
type Interval struct {
	Start    float64
	End      *float64
	Duration *float64
}

// Closed reports whether the interval has a known end.
func (iv Interval) Closed() bool {
	return iv.End != nil
}

// Parse scans a silencedetect transcript line-by-line and returns the
// detected intervals in stream order. The scan keeps a single pending start:
// a silence_start marker records it, a silence_end marker with a pending
// start closes the interval, and a pending start left over at end of input
// becomes a final open-ended interval. An end marker with no pending start
// is ignored.
func Parse(r io.Reader) []Interval {
	var intervals []Interval
	var pending *float64

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "silencedetect") {
			continue
		}

		if v, ok := markerValue(line, "silence_start:"); ok {
			start := v
			pending = &start
			continue
		}

		if v, ok := markerValue(line, "silence_end:"); ok && pending != nil {
			end := v
			duration := end - *pending
			if d, ok := markerValue(line, "silence_duration:"); ok {
				duration = d
			}
			intervals = append(intervals, Interval{
				Start:    *pending,
				End:      &end,
				Duration: &duration,
			})
			pending = nil
		}
	}

	if pending != nil {
		intervals = append(intervals, Interval{Start: *pending})
	}

	return intervals
}

// markerValue extracts the float following a marker token on the line.
func markerValue(line, marker string) (float64, bool) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return 0, false
	}
	rest := strings.TrimSpace(line[idx+len(marker):])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
