package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wgong95/trim-video/internal/config"
	"github.com/wgong95/trim-video/internal/silence"
)

type fakeCutter struct {
	calls []string // output paths, in invocation order
	fail  map[string]bool
	ends  []float64
}

func (f *fakeCutter) CopyRange(_ context.Context, _, output string, _, end float64) error {
	f.calls = append(f.calls, output)
	f.ends = append(f.ends, end)
	if f.fail[filepath.Base(output)] {
		return errors.New("ffmpeg execution failed: exit status 1")
	}
	return os.WriteFile(output, []byte("segment"), 0644)
}

type fakeScanner struct {
	output string
	calls  int
}

func (f *fakeScanner) SilenceScan(_ context.Context, _ string, _, _ float64) (string, error) {
	f.calls++
	return f.output, nil
}

const trailingSilence = `[silencedetect @ 0x1] silence_start: 10
[silencedetect @ 0x1] silence_end: 12 | silence_duration: 2
`

const twoGaps = `[silencedetect @ 0x1] silence_start: 5
[silencedetect @ 0x1] silence_end: 7 | silence_duration: 2
[silencedetect @ 0x1] silence_start: 20
`

func newTestRunner(t *testing.T, scanner *fakeScanner, cutter *fakeCutter) *Runner {
	t.Helper()
	t.Setenv("HOME", t.TempDir()) // keep a real ~/.trimvideo config out of the lookup
	cfg, err := config.Load("")
	require.NoError(t, err)

	return &Runner{
		logger:   zerolog.Nop(),
		cfg:      cfg,
		cutter:   cutter,
		detector: silence.NewDetector(zerolog.Nop(), scanner, cfg.Detect.NoiseDb, cfg.Detect.MinSilence, true),
	}
}

func writeVideo(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("not a real container"), 0644))
	return path
}

func TestTrimSingleFile(t *testing.T) {
	dir := t.TempDir()
	source := writeVideo(t, dir, "talk.mkv")
	cutter := &fakeCutter{}
	r := newTestRunner(t, &fakeScanner{output: trailingSilence}, cutter)

	err := r.Run(context.Background(), source, Options{Mode: ModeTrim})
	require.NoError(t, err)

	require.Len(t, cutter.calls, 1)
	output := filepath.Join(dir, "trimmed", "talk.mkv")
	assert.Equal(t, output, cutter.calls[0])
	assert.Equal(t, 10.0, cutter.ends[0], "trim cuts at the start of the last silence")
	assert.FileExists(t, output)
}

func TestTrimIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	source := writeVideo(t, dir, "talk.mkv")
	cutter := &fakeCutter{}
	r := newTestRunner(t, &fakeScanner{output: trailingSilence}, cutter)

	require.NoError(t, r.Run(context.Background(), source, Options{Mode: ModeTrim}))
	require.NoError(t, r.Run(context.Background(), source, Options{Mode: ModeTrim}))

	assert.Len(t, cutter.calls, 1, "existing output must be skipped, not overwritten")
}

func TestNoSilenceIsSoftSkip(t *testing.T) {
	dir := t.TempDir()
	source := writeVideo(t, dir, "talk.mkv")
	cutter := &fakeCutter{}
	r := newTestRunner(t, &fakeScanner{output: "no markers\n"}, cutter)

	err := r.Run(context.Background(), source, Options{Mode: ModeTrim})
	require.NoError(t, err)

	assert.Empty(t, cutter.calls)
	assert.NoDirExists(t, filepath.Join(dir, "trimmed"))
}

func TestWholeFileSilentIsSkipped(t *testing.T) {
	// silencedetect reports silence_start: 0 and nothing else for a file
	// that is silent throughout. The cut point is 0, so there is nothing
	// to keep; the cutter must never run, since an end of 0 means
	// copy-to-EOF and would duplicate the file whole.
	dir := t.TempDir()
	source := writeVideo(t, dir, "talk.mkv")
	cutter := &fakeCutter{}
	scanner := &fakeScanner{output: "[silencedetect @ 0x1] silence_start: 0\n"}
	r := newTestRunner(t, scanner, cutter)

	for _, mode := range []Mode{ModeTrim, ModeSplit} {
		err := r.Run(context.Background(), source, Options{Mode: mode})
		require.NoError(t, err, "mode %s", mode)
	}

	assert.Empty(t, cutter.calls)
	assert.NoDirExists(t, filepath.Join(dir, "trimmed"))
}

func TestPreviewPlansWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	source := writeVideo(t, dir, "talk.mkv")
	cutter := &fakeCutter{}
	scanner := &fakeScanner{output: trailingSilence}
	r := newTestRunner(t, scanner, cutter)

	err := r.Run(context.Background(), source, Options{Mode: ModeTrim, Preview: true})
	require.NoError(t, err)

	assert.Equal(t, 1, scanner.calls, "preview still detects")
	assert.Empty(t, cutter.calls)
	assert.NoDirExists(t, filepath.Join(dir, "trimmed"))
}

func TestCutModeSkipsDetection(t *testing.T) {
	dir := t.TempDir()
	source := writeVideo(t, dir, "talk.mkv")
	cutter := &fakeCutter{}
	scanner := &fakeScanner{output: trailingSilence}
	r := newTestRunner(t, scanner, cutter)

	err := r.Run(context.Background(), source, Options{Mode: ModeCut, CutAt: 90})
	require.NoError(t, err)

	assert.Zero(t, scanner.calls)
	require.Len(t, cutter.calls, 1)
	assert.Equal(t, 90.0, cutter.ends[0])
}

func TestSplitOutputsAreSuffixed(t *testing.T) {
	dir := t.TempDir()
	source := writeVideo(t, dir, "talk.mkv")
	cutter := &fakeCutter{}
	r := newTestRunner(t, &fakeScanner{output: twoGaps}, cutter)

	err := r.Run(context.Background(), source, Options{Mode: ModeSplit})
	require.NoError(t, err)

	require.Len(t, cutter.calls, 2)
	assert.FileExists(t, filepath.Join(dir, "trimmed", "talk_01.mkv"))
	assert.FileExists(t, filepath.Join(dir, "trimmed", "talk_02.mkv"))
	assert.Equal(t, []float64{6, 20}, cutter.ends)
}

func TestDirectoryBatchContinuesPastFailures(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "recordings")
	require.NoError(t, os.Mkdir(dir, 0755))
	writeVideo(t, dir, "a.mkv")
	writeVideo(t, dir, "b.mkv")
	writeVideo(t, dir, "c.mkv")
	writeVideo(t, dir, "notes.txt") // not a matching extension

	cutter := &fakeCutter{fail: map[string]bool{"b.mkv": true}}
	r := newTestRunner(t, &fakeScanner{output: trailingSilence}, cutter)

	err := r.Run(context.Background(), dir, Options{Mode: ModeTrim})
	require.NoError(t, err, "one failed file must not abort the batch")

	require.Len(t, cutter.calls, 3)
	assert.Equal(t, filepath.Join(dir, "trimmed", "a.mkv"), cutter.calls[0])
	assert.Equal(t, filepath.Join(dir, "trimmed", "b.mkv"), cutter.calls[1])
	assert.Equal(t, filepath.Join(dir, "trimmed", "c.mkv"), cutter.calls[2])

	assert.FileExists(t, filepath.Join(dir, "trimmed", "a.mkv"))
	assert.NoFileExists(t, filepath.Join(dir, "trimmed", "b.mkv"))
	assert.FileExists(t, filepath.Join(dir, "trimmed", "c.mkv"))

	logs, err := filepath.Glob(filepath.Join(parent, "recordings_trim_*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 1, "run log transcript is written next to the input directory")
}

func TestDirectoryWithNoMatchesIsNoop(t *testing.T) {
	dir := t.TempDir()
	writeVideo(t, dir, "readme.txt")

	cutter := &fakeCutter{}
	r := newTestRunner(t, &fakeScanner{output: trailingSilence}, cutter)

	err := r.Run(context.Background(), dir, Options{Mode: ModeTrim})
	require.NoError(t, err)
	assert.Empty(t, cutter.calls)
}

func TestRunRejectsBadPaths(t *testing.T) {
	dir := t.TempDir()

	err := newTestRunner(t, &fakeScanner{}, &fakeCutter{}).
		Run(context.Background(), filepath.Join(dir, "missing"), Options{Mode: ModeTrim})
	require.Error(t, err)

	bad := writeVideo(t, dir, "slides.pdf")
	err = newTestRunner(t, &fakeScanner{}, &fakeCutter{}).
		Run(context.Background(), bad, Options{Mode: ModeTrim})
	assert.ErrorIs(t, err, ErrUnsupportedExtension)
}

func TestPartialSegmentFailureStillWritesSiblings(t *testing.T) {
	dir := t.TempDir()
	source := writeVideo(t, dir, "talk.mkv")
	cutter := &fakeCutter{fail: map[string]bool{"talk_01.mkv": true}}
	r := newTestRunner(t, &fakeScanner{output: twoGaps}, cutter)

	err := r.Run(context.Background(), source, Options{Mode: ModeSplit})
	require.Error(t, err, "a failed segment is reported")

	assert.Len(t, cutter.calls, 2, "sibling segments still attempt creation")
	assert.FileExists(t, filepath.Join(dir, "trimmed", "talk_02.mkv"))
}
