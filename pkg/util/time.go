package util

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidTimeFormat is returned by ParseSeconds for input that matches
// none of the accepted timestamp grammars.
var ErrInvalidTimeFormat = errors.New("invalid time format")

// FormatSeconds renders a non-negative second count as MM:SS.ss, or
// HH:MM:SS.ss once the value reaches an hour. Rounding to centiseconds
// happens before the clock decomposition, so the seconds field stays
// below 60 (59.999 renders as 01:00.00, not 00:60.00).
func FormatSeconds(sec float64) string {
	cs := int64(math.Round(sec * 100))

	hours := cs / 360000
	cs -= hours * 360000
	minutes := cs / 6000
	cs -= minutes * 6000
	secs := float64(cs) / 100

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%05.2f", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%05.2f", minutes, secs)
}

// ParseSeconds parses a timestamp string into seconds. Accepted forms are
// plain decimal seconds ("45.5"), MM:SS and HH:MM:SS; the seconds field may
// carry a decimal fraction.
func ParseSeconds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")

	var hours, minutes, seconds float64
	var err error

	switch len(parts) {
	case 1:
		seconds, err = strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
		}

	case 2:
		minutes, err = strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
		}
		seconds, err = strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
		}

	case 3:
		hours, err = strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
		}
		minutes, err = strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
		}
		seconds, err = strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
		}

	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	if hours < 0 || minutes < 0 || seconds < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	return hours*3600 + minutes*60 + seconds, nil
}
