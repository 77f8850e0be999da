package engine

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/cutline/internal/config"
	"github.com/ivlev/cutline/internal/logging"
	"github.com/ivlev/cutline/internal/project"
	"github.com/ivlev/cutline/internal/source"
	"github.com/ivlev/cutline/internal/timeline"
)

func writeStill(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func newExporter(t *testing.T, media string) *Exporter {
	cfg := config.Default()
	cfg.Width, cfg.Height = 64, 36
	cfg.FPS = 4
	cfg.Workers = 2
	cfg.FontSize = 12
	return &Exporter{
		Config:  cfg,
		Library: &source.Library{Root: media, FPS: float64(cfg.FPS), PageDuration: cfg.PageDuration},
		Log:     logging.Nop(),
		Name:    "export test",
	}
}

func testSnapshot() timeline.Snapshot {
	return timeline.Snapshot{Tracks: []timeline.TrackSnapshot{
		{ID: "v", Kind: timeline.KindVideo, Clips: []timeline.Clip{
			{ID: "still", Kind: timeline.KindVideo, SourceRef: "red.png", Start: 0, Duration: 0.5},
		}},
	}}
}

func TestExportWritesFramesAndTimeline(t *testing.T) {
	media := t.TempDir()
	writeStill(t, filepath.Join(media, "red.png"), color.RGBA{255, 0, 0, 255})
	out := filepath.Join(t.TempDir(), "frames")

	e := newExporter(t, media)
	var last int
	e.Progress = func(done, total int) { last = done }

	report, err := e.Export(context.Background(), testSnapshot(), out, Range{To: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, report.Frames)
	assert.Equal(t, 2, report.Workers)
	assert.Equal(t, 4, last)

	for i := 0; i < 4; i++ {
		_, err := os.Stat(filepath.Join(out, FrameName(i)))
		require.NoError(t, err, FrameName(i))
	}

	// frame 1 is at 0.25s inside the still, frame 3 at 0.75s is past it
	img := readPNG(t, filepath.Join(out, FrameName(1)))
	r, _, _, _ := img.At(32, 18).RGBA()
	assert.EqualValues(t, 0xffff, r)
	img = readPNG(t, filepath.Join(out, FrameName(3)))
	r, _, _, _ = img.At(32, 18).RGBA()
	assert.EqualValues(t, 0, r)

	doc, err := project.Read(filepath.Join(out, TimelineFile))
	require.NoError(t, err)
	assert.Equal(t, "export test", doc.Name)
	assert.Equal(t, 40.0, doc.TotalDuration)
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestExportMissingMediaStillRenders(t *testing.T) {
	out := t.TempDir()
	e := newExporter(t, t.TempDir())

	report, err := e.Export(context.Background(), testSnapshot(), out, Range{From: 0, To: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Frames)
}

func TestExportHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newExporter(t, t.TempDir())
	_, err := e.Export(ctx, testSnapshot(), t.TempDir(), Range{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportRejectsEmptyRange(t *testing.T) {
	e := newExporter(t, t.TempDir())
	_, err := e.Export(context.Background(), testSnapshot(), t.TempDir(), Range{From: 50, To: 45})
	assert.Error(t, err)
}

func TestFrameCount(t *testing.T) {
	assert.Equal(t, 1200, FrameCount(0, 40, 30))
	assert.Equal(t, 15, FrameCount(0, 0.5, 30))
	assert.Equal(t, 1, FrameCount(0, 0.01, 30))
	assert.Equal(t, 0, FrameCount(5, 5, 30))
	assert.Equal(t, "frame_000042.png", FrameName(42))
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "benchmark.log")
	r := &Report{Frames: 60, Workers: 3, Duration: 2, Elapsed: 2 * time.Second, Dir: "/tmp/out"}
	r.Canvases.Allocated, r.Canvases.Reused = 6, 0

	require.NoError(t, WriteReport(&buf, r, "v1", logPath))
	assert.Contains(t, buf.String(), "Effective FPS: 30.00")
	assert.Contains(t, buf.String(), "Canvases: 6 allocated, 0 reused")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "Frames: 60"))
}
