package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"sync"
)

// SilenceScan runs the silencedetect audio filter over the input and
// returns the raw diagnostic transcript from ffmpeg's stderr. noiseDb is
// the silence threshold in dB (negative); minDuration is the shortest quiet
// passage, in seconds, that counts as silence.
func (e *Executor) SilenceScan(ctx context.Context, input string, noiseDb, minDuration float64) (string, error) {
	e.logger.Debug().
		Str("input", input).
		Float64("noise_db", noiseDb).
		Float64("min_duration", minDuration).
		Msg("scanning for silence")

	var buf bytes.Buffer
	var mu sync.Mutex

	opts := RunOptions{
		Args: []string{
			"-i", input,
			"-af", fmt.Sprintf("silencedetect=noise=%gdB:d=%g", noiseDb, minDuration),
			"-vn", "-sn", "-dn",
			"-f", "null",
			"-",
		},
		LogHandler: func(line string) {
			mu.Lock()
			buf.WriteString(line + "\n")
			mu.Unlock()
		},
	}

	err := e.Run(ctx, opts)

	mu.Lock()
	output := buf.String()
	mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("silence scan failed: %w", err)
	}

	if output == "" {
		return "", fmt.Errorf("silence scan produced no output")
	}

	return output, nil
}
