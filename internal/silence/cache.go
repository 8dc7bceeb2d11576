package silence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// cacheEntry is the sidecar payload. Silences holds [start, end, duration]
// triples; end and duration are null for an open-ended trailing interval.
type cacheEntry struct {
	Video       string        `json:"video"`
	Threshold   float64       `json:"threshold"`
	MinDuration float64       `json:"min_duration"`
	Timestamp   time.Time     `json:"timestamp"`
	Silences    [][3]*float64 `json:"silences"`
}

// SidecarPath returns the hidden cache file location for a source file:
// same directory, name derived from the source's base name.
func SidecarPath(source string) string {
	dir, base := filepath.Split(source)
	return filepath.Join(dir, "."+base+".silence.json")
}

// LoadCache returns the cached intervals for source, or ok=false on any
// kind of miss: missing sidecar, unreadable or malformed payload, a stored
// path that no longer matches, or detection parameters that differ from the
// caller's. A miss is never an error; detection falls through to a fresh run.
func LoadCache(source string, noiseDb, minDuration float64) ([]Interval, bool) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, false
	}

	data, err := os.ReadFile(SidecarPath(abs))
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if entry.Video != abs || entry.Threshold != noiseDb || entry.MinDuration != minDuration {
		return nil, false
	}

	intervals := make([]Interval, 0, len(entry.Silences))
	prev := -1.0
	for i, triple := range entry.Silences {
		if triple[0] == nil {
			return nil, false
		}
		start := *triple[0]
		if start < 0 || start < prev {
			return nil, false
		}
		if triple[1] == nil {
			// An open-ended interval is only valid as the trailing element.
			if i != len(entry.Silences)-1 {
				return nil, false
			}
		} else if *triple[1] <= start || triple[2] == nil {
			return nil, false
		}
		prev = start

		intervals = append(intervals, Interval{
			Start:    start,
			End:      triple[1],
			Duration: triple[2],
		})
	}

	return intervals, true
}

// SaveCache writes the sidecar for source. Empty results are not persisted.
// Writing is best-effort; the caller treats a failure as a non-event.
func SaveCache(source string, noiseDb, minDuration float64, intervals []Interval) error {
	if len(intervals) == 0 {
		return nil
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		return err
	}

	entry := cacheEntry{
		Video:       abs,
		Threshold:   noiseDb,
		MinDuration: minDuration,
		Timestamp:   time.Now().UTC(),
		Silences:    make([][3]*float64, 0, len(intervals)),
	}

	for _, iv := range intervals {
		start := iv.Start
		entry.Silences = append(entry.Silences, [3]*float64{&start, iv.End, iv.Duration})
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(SidecarPath(abs), data, 0644)
}
