package ffmpeg

import (
	"context"
	"fmt"
)

// CopyRange losslessly copies the streams between start and end (seconds)
// into output, without re-encoding. An end <= 0 means "to end of file".
func (e *Executor) CopyRange(ctx context.Context, input, output string, start, end float64) error {
	if end > 0 && end <= start {
		return fmt.Errorf("invalid range: end must be after start")
	}

	e.logger.Info().
		Str("input", input).
		Str("output", output).
		Float64("start", start).
		Float64("end", end).
		Msg("copying range")

	args := []string{"-i", input}
	if start > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", start))
	}
	if end > 0 {
		args = append(args, "-to", fmt.Sprintf("%.3f", end))
	}
	args = append(args, "-c", "copy", output)

	opts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("range copy")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return fmt.Errorf("range copy failed: %w", err)
	}

	e.logger.Debug().Str("output", output).Msg("range copy complete")
	return nil
}
