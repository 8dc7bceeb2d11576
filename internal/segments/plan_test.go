package segments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wgong95/trim-video/internal/silence"
)

func closed(start, end float64) silence.Interval {
	dur := end - start
	return silence.Interval{Start: start, End: &end, Duration: &dur}
}

func TestTruncateEmpty(t *testing.T) {
	_, err := Truncate(nil)
	assert.ErrorIs(t, err, ErrNoSilence)
}

func TestTruncateCutsAtLastStart(t *testing.T) {
	spans, err := Truncate([]silence.Interval{closed(10, 12)})
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, Span{Start: 0, End: 10}, spans[0])
}

func TestTruncateUsesLastInterval(t *testing.T) {
	spans, err := Truncate([]silence.Interval{
		closed(5, 7),
		closed(30, 33),
		{Start: 50}, // open-ended tail
	})
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, Span{Start: 0, End: 50}, spans[0])
}

func TestTruncateWholeFileSilent(t *testing.T) {
	// Silence from the very start means the cut point is 0; a [0, 0)
	// span must not escape as a copy-everything cut.
	_, err := Truncate([]silence.Interval{{Start: 0}})
	assert.ErrorIs(t, err, ErrNothingToKeep)
}

func TestSplitEmpty(t *testing.T) {
	_, err := Split(nil)
	assert.ErrorIs(t, err, ErrNoSilence)
}

func TestSplitMidpointsAndOpenTail(t *testing.T) {
	spans, err := Split([]silence.Interval{
		closed(5, 7),
		{Start: 20}, // silence through end of stream
	})
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, Span{Start: 0, End: 6}, spans[0])
	assert.Equal(t, Span{Start: 6, End: 20}, spans[1])
}

func TestSplitSpansAreContiguous(t *testing.T) {
	spans, err := Split([]silence.Interval{
		closed(10, 14),
		closed(30, 32),
		closed(58, 60),
	})
	require.NoError(t, err)
	require.Len(t, spans, 3)

	assert.Equal(t, 0.0, spans[0].Start)
	for i := 1; i < len(spans); i++ {
		assert.Equal(t, spans[i-1].End, spans[i].Start)
	}
	assert.Equal(t, 59.0, spans[len(spans)-1].End)
}

func TestSplitSingleInterval(t *testing.T) {
	// One closed interval yields one span ending at the midpoint; the
	// content after the split point is discarded.
	spans, err := Split([]silence.Interval{closed(40, 44)})
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, Span{Start: 0, End: 42}, spans[0])
}

func TestSplitWholeFileSilent(t *testing.T) {
	_, err := Split([]silence.Interval{{Start: 0}})
	assert.ErrorIs(t, err, ErrNothingToKeep)
}

func TestSplitLeadingClosedSilence(t *testing.T) {
	// A closed interval starting at 0 still has a positive midpoint, so
	// it plans normally.
	spans, err := Split([]silence.Interval{closed(0, 30)})
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, Span{Start: 0, End: 15}, spans[0])
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		path  string
		index int
		total int
		want  string
	}{
		{"/v/talk.mkv", 1, 3, "talk_01.mkv"},
		{"/v/talk.mkv", 3, 3, "talk_03.mkv"},
		{"/v/talk.mkv", 7, 120, "talk_007.mkv"},
		{"talk.with.dots.mp4", 2, 9, "talk.with.dots_02.mp4"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputName(tt.path, tt.index, tt.total))
	}
}
