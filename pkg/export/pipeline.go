package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/menta2k/image-framer/pkg/types"
)

// DefaultDelay is the pause between batch items. Hosts that receive the
// files tend to throttle or drop rapid back-to-back saves.
const DefaultDelay = 500 * time.Millisecond

// ErrBatchInProgress is returned when Run is called while another batch is
// still running on the same Pipeline.
var ErrBatchInProgress = errors.New("batch export already in progress")

// Observer receives batch progress. Callbacks run on the batch goroutine.
type Observer interface {
	OnStart(total int)
	OnItemDone(idx, total int, res ItemResult)
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	// Delay between items; zero means DefaultDelay, negative disables it.
	Delay    time.Duration
	Observer Observer
	Logger   *slog.Logger
}

// Pipeline exports items strictly one after another: render, encode, save,
// wait, next. Only one batch runs at a time.
type Pipeline struct {
	exporter *Exporter
	delay    time.Duration
	observer Observer
	logger   *slog.Logger

	running sync.Mutex
}

// NewPipeline creates a Pipeline around exporter
func NewPipeline(exporter *Exporter, cfg PipelineConfig) *Pipeline {
	if cfg.Delay == 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = exporter.logger
	}
	return &Pipeline{
		exporter: exporter,
		delay:    cfg.Delay,
		observer: cfg.Observer,
		logger:   cfg.Logger,
	}
}

// Run exports items in order with cfg. A failed item is recorded and the
// batch moves on. Cancellation is honored between items only; items not
// started are reported as canceled and Run returns ctx.Err() with the
// partial report. An invalid cfg fails the whole batch before any item is
// rendered.
func (p *Pipeline) Run(ctx context.Context, cfg types.FrameConfig, items []Item) (*Report, error) {
	if !p.running.TryLock() {
		return nil, ErrBatchInProgress
	}
	defer p.running.Unlock()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to start batch: %w", err)
	}

	total := len(items)
	report := &Report{StartedAt: time.Now(), Total: total, Items: make([]ItemResult, 0, total)}
	if p.observer != nil {
		p.observer.OnStart(total)
	}
	p.logger.Info("Batch export started", "items", total, "delay", p.delay)

	var runErr error
	for i, item := range items {
		if runErr == nil {
			runErr = ctx.Err()
		}
		if runErr != nil {
			p.finish(report, ItemResult{
				Index:  i,
				Name:   item.Name,
				Output: p.exporter.OutputName(item.Name),
				Status: StatusCanceled,
				Error:  runErr.Error(),
				Err:    runErr,
			}, total)
			continue
		}

		// A started item always finishes its save; cancellation is seen
		// before the next one.
		res, err := p.exporter.Export(context.WithoutCancel(ctx), cfg, item)
		res.Index = i
		if err != nil {
			p.logger.Warn("Batch item failed", "index", i, "name", item.Name, "error", err)
		}
		p.finish(report, res, total)

		if i < total-1 {
			runErr = p.wait(ctx)
		}
	}

	report.FinishedAt = time.Now()
	p.logger.Info("Batch export finished",
		"ok", report.OK, "failed", report.Failed, "canceled", report.Canceled,
		"duration", report.Duration())
	return report, runErr
}

// Running reports whether a batch is in progress
func (p *Pipeline) Running() bool {
	if p.running.TryLock() {
		p.running.Unlock()
		return false
	}
	return true
}

func (p *Pipeline) finish(report *Report, res ItemResult, total int) {
	report.add(res)
	if p.observer != nil {
		p.observer.OnItemDone(res.Index, total, res)
	}
}

func (p *Pipeline) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
