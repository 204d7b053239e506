// Package export turns compositions into saved files: one at a time with
// Exporter, or as a rate-limited sequential batch with Pipeline.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/menta2k/image-framer/internal/utils"
	"github.com/menta2k/image-framer/pkg/render"
	"github.com/menta2k/image-framer/pkg/types"
)

// Renderer produces a composition for one source. *render.Renderer
// satisfies it.
type Renderer interface {
	Render(cfg types.FrameConfig, src *types.SourceImage) (*render.Composition, error)
}

// Item is one batch entry. Name is the source name used for the output file.
type Item struct {
	Name   string
	Source *types.SourceImage
}

// Options configure an Exporter.
type Options struct {
	Format Format
	Suffix string // defaults to "-framed"
	Logger *slog.Logger
}

// Exporter renders, encodes and saves single items. Each call renders onto
// its own surface, so Export may run concurrently with a batch.
type Exporter struct {
	renderer Renderer
	saver    Saver
	format   Format
	suffix   string
	logger   *slog.Logger
}

// NewExporter creates an Exporter
func NewExporter(renderer Renderer, saver Saver, opts Options) *Exporter {
	if opts.Format == "" {
		opts.Format = FormatPNG
	}
	if opts.Suffix == "" {
		opts.Suffix = utils.DefaultSuffix
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Exporter{
		renderer: renderer,
		saver:    saver,
		format:   opts.Format,
		suffix:   opts.Suffix,
		logger:   opts.Logger,
	}
}

// OutputName returns the file name an item named name is saved under
func (e *Exporter) OutputName(name string) string {
	return utils.OutputName(name, e.suffix, e.format.Ext())
}

// Export renders item with cfg, encodes the page and hands it to the saver.
// The returned ItemResult is filled in on failure too.
func (e *Exporter) Export(ctx context.Context, cfg types.FrameConfig, item Item) (ItemResult, error) {
	start := time.Now()
	res := ItemResult{Name: item.Name, Output: e.OutputName(item.Name)}

	err := e.export(ctx, cfg, item, &res)
	res.Duration = time.Since(start)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		res.Error = err.Error()
		return res, err
	}
	res.Status = StatusOK
	return res, nil
}

func (e *Exporter) export(ctx context.Context, cfg types.FrameConfig, item Item, res *ItemResult) error {
	comp, err := e.renderer.Render(cfg, item.Source)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", item.Name, err)
	}

	data, err := EncodeBytes(comp.Image, e.format)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", item.Name, err)
	}
	res.Bytes = int64(len(data))

	if err := e.saver.Save(ctx, res.Output, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", res.Output, err)
	}
	e.logger.Debug("Exported", "name", item.Name, "output", res.Output, "size", utils.FormatFileSize(res.Bytes))
	return nil
}
