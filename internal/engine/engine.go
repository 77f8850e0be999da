package engine

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/cutline/internal/config"
	"github.com/ivlev/cutline/internal/effects"
	"github.com/ivlev/cutline/internal/project"
	"github.com/ivlev/cutline/internal/renderer"
	"github.com/ivlev/cutline/internal/source"
	"github.com/ivlev/cutline/internal/system"
	"github.com/ivlev/cutline/internal/timeline"
)

// TimelineFile пишется рядом с кадрами для внешнего энкодера.
const TimelineFile = "timeline.yaml"

// Exporter рендерит снимок таймлайна в нумерованную PNG-последовательность.
type Exporter struct {
	Config  *config.Config
	Library *source.Library
	Filter  *effects.Filter
	Log     zerolog.Logger

	// Name записывается в экспортированный таймлайн.
	Name string
	// Progress (если задан) вызывается после каждого записанного кадра.
	Progress func(done, total int)
}

// Range ограничивает экспорт интервалом [From, To). Нулевой To означает весь таймлайн.
type Range struct {
	From, To float64
}

type Report struct {
	Frames   int
	Workers  int
	Duration float64
	Elapsed  time.Duration
	Dir      string
	// Canvases — статистика пула холстов за время экспорта.
	Canvases system.PoolStats
}

func (r Report) EffectiveFPS() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Elapsed.Seconds()
}

// FrameName возвращает имя файла кадра i.
func FrameName(i int) string {
	return fmt.Sprintf("frame_%06d.png", i)
}

// FrameCount — сколько кадров покрывают [from, to) при заданном fps.
func FrameCount(from, to float64, fps int) int {
	if to <= from || fps <= 0 {
		return 0
	}
	return int(math.Ceil((to - from) * float64(fps)))
}

func (e *Exporter) Export(ctx context.Context, snap timeline.Snapshot, outDir string, rng Range) (*Report, error) {
	start := time.Now()
	poolBefore := system.Stats()
	cfg := e.Config

	if rng.To <= 0 || rng.To > snap.TotalDuration() {
		rng.To = snap.TotalDuration()
	}
	if rng.From < 0 {
		rng.From = 0
	}
	frames := FrameCount(rng.From, rng.To, cfg.FPS)
	if frames == 0 {
		return nil, fmt.Errorf("empty export range [%.2f, %.2f)", rng.From, rng.To)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	// холст + scratch на воркера
	workers := system.Workers(cfg.Workers, 2*cfg.FrameBytes())
	if workers > frames {
		workers = frames
	}

	e.Log.Info().
		Int("frames", frames).
		Int("workers", workers).
		Str("size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)).
		Int("fps", cfg.FPS).
		Msg("export started")

	// Непрерывные куски: декодеры каждого воркера идут только вперёд.
	chunk := (frames + workers - 1) / workers
	progress := make(chan struct{}, workers)
	done := make(chan struct{})
	go func() {
		defer close(done)
		n := 0
		for range progress {
			n++
			if e.Progress != nil {
				e.Progress(n, frames)
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		first := w * chunk
		last := min(first+chunk, frames)
		if first >= last {
			break
		}
		g.Go(func() error {
			return e.renderChunk(gctx, snap, outDir, rng.From, first, last, progress)
		})
	}
	err := g.Wait()
	close(progress)
	<-done
	if err != nil {
		return nil, err
	}

	doc := project.FromSnapshot(e.Name, snap)
	if err := project.Write(filepath.Join(outDir, TimelineFile), doc); err != nil {
		return nil, fmt.Errorf("write timeline: %w", err)
	}

	report := &Report{
		Frames:   frames,
		Workers:  workers,
		Duration: rng.To - rng.From,
		Elapsed:  time.Since(start),
		Dir:      outDir,
	}
	poolAfter := system.Stats()
	report.Canvases = system.PoolStats{
		Allocated: poolAfter.Allocated - poolBefore.Allocated,
		Reused:    poolAfter.Reused - poolBefore.Reused,
	}
	e.Log.Info().Int("frames", frames).Dur("elapsed", report.Elapsed).Msg("export finished")
	return report, nil
}

func (e *Exporter) renderChunk(ctx context.Context, snap timeline.Snapshot, outDir string, from float64, first, last int, progress chan<- struct{}) error {
	comp, err := e.newCompositor()
	if err != nil {
		return err
	}
	defer comp.Close()

	fps := float64(e.Config.FPS)
	enc := &png.Encoder{CompressionLevel: png.BestSpeed}

	for i := first; i < last; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame := comp.Composite(from+float64(i)/fps, snap, false)
		path := filepath.Join(outDir, FrameName(i))
		if err := writePNG(enc, path, frame); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		progress <- struct{}{}
	}
	return nil
}

func (e *Exporter) newCompositor() (*renderer.Compositor, error) {
	cfg := e.Config
	lib := e.Library
	return renderer.New(renderer.Options{
		Width:          cfg.Width,
		Height:         cfg.Height,
		NewDecoder:     func() renderer.VideoDecoder { return lib.NewDecoder() },
		NewAudio:       func() renderer.AudioElement { return lib.NewAudio() },
		Filter:         e.Filter,
		DuckUnderVideo: cfg.DuckUnderVideo,
		DuckVolume:     cfg.DuckVolume,
		ExactSeek:      true,
		FontSize:       cfg.FontSize,
		BurnIn:         cfg.BurnIn,
		Logger:         e.Log,
	})
}

func writePNG(enc *png.Encoder, path string, frame *renderer.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := enc.Encode(f, frame.Image); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteReport печатает блок производительности и дописывает строку в
// logPath, если он задан.
func WriteReport(w io.Writer, r *Report, build, logPath string) error {
	fmt.Fprintf(w,
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Frames: %d (%.2fs of timeline)\n"+
			"Workers: %d\n"+
			"Total Time: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Canvases: %d allocated, %d reused\n"+
			"----------------------------\n",
		build, r.Frames, r.Duration, r.Workers, r.Elapsed.Seconds(), r.EffectiveFPS(),
		r.Canvases.Allocated, r.Canvases.Reused,
	)
	if logPath == "" {
		return nil
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "[%s] Build: %s | Dir: %s | Frames: %d | Workers: %d | Total: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		build,
		filepath.Base(r.Dir),
		r.Frames,
		r.Workers,
		r.Elapsed.Seconds(),
		r.EffectiveFPS(),
	)
	return err
}
