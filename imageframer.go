// Package imageframer composes photos into printable framed pages.
//
// A page is an A4 sheet at 300 DPI. The photo is fitted inside it without
// cropping, a thin border is drawn at a fixed margin, and an optional caption
// sits centered on the bottom border line, breaking it.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		imageframer "github.com/menta2k/image-framer"
//		"github.com/menta2k/image-framer/pkg/types"
//	)
//
//	func main() {
//		framer := imageframer.New()
//		ctx := context.Background()
//
//		src, err := framer.LoadImage(ctx, "beach.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		cfg := types.DefaultFrameConfig().WithCaption("Summer 2024")
//		if err := framer.FrameFile(ctx, cfg, src, "beach-framed.png"); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of these components:
//
//  1. Units (pkg/units): physical units to device pixels, page geometry
//  2. Fit (pkg/fit): contain-fit of the photo on the page
//  3. Caption (pkg/caption): font lookup and caption measurement
//  4. Border (pkg/border): border outline with the caption gap
//  5. Render (pkg/render): draws one composition
//  6. Export (pkg/export): encoding, saving and rate-limited batch export
//
// Caption suggestions from vision models live in pkg/captioning, with
// clients in pkg/ollama, pkg/llamacpp and pkg/gemini.
package imageframer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/menta2k/image-framer/internal/utils"
	"github.com/menta2k/image-framer/pkg/caption"
	"github.com/menta2k/image-framer/pkg/export"
	"github.com/menta2k/image-framer/pkg/processing"
	"github.com/menta2k/image-framer/pkg/render"
	"github.com/menta2k/image-framer/pkg/source"
	"github.com/menta2k/image-framer/pkg/types"
	"github.com/menta2k/image-framer/pkg/units"
)

// Version of the image framer library
const Version = "1.0.0"

// Config holds Framer settings
type Config struct {
	Page         units.Page         // zero means A4
	Fonts        *caption.FontCache // nil means system fonts plus embedded fallback
	MinImageSize int
	Logger       *slog.Logger
}

// Framer provides a high-level interface for loading, framing and exporting photos
type Framer struct {
	renderer  *render.Renderer
	loader    *source.Loader
	processor *processing.Processor
	logger    *slog.Logger
}

// New creates a new Framer with default configuration
func New() *Framer {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a new Framer with custom configuration
func NewWithConfig(config Config) *Framer {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Framer{
		renderer: render.NewWithConfig(render.Config{
			Page:      config.Page,
			FontCache: config.Fonts,
			Logger:    config.Logger,
		}),
		loader:    source.NewWithConfig(source.Config{MinImageSize: config.MinImageSize, Logger: config.Logger}),
		processor: processing.NewProcessor(),
		logger:    config.Logger,
	}
}

// Page returns the output page geometry
func (f *Framer) Page() units.Page {
	return f.renderer.Page()
}

// Renderer returns the underlying renderer
func (f *Framer) Renderer() *render.Renderer {
	return f.renderer
}

// LoadImage loads a photo from a file path or URL
func (f *Framer) LoadImage(ctx context.Context, location string) (*types.SourceImage, error) {
	return f.loader.Load(ctx, location)
}

// LoadImages loads files, directories and URLs in order, skipping unreadable ones
func (f *Framer) LoadImages(ctx context.Context, inputs []string) ([]*types.SourceImage, error) {
	return f.loader.LoadAll(ctx, inputs)
}

// Render composes one page. src may be nil for a border-only page.
func (f *Framer) Render(cfg types.FrameConfig, src *types.SourceImage) (*render.Composition, error) {
	return f.renderer.Render(cfg, src)
}

// FrameFile renders src and writes it to outputPath. The format follows the
// file extension: .webp writes lossless WebP, anything else PNG.
func (f *Framer) FrameFile(ctx context.Context, cfg types.FrameConfig, src *types.SourceImage, outputPath string) error {
	format := export.FormatPNG
	if filepath.Ext(outputPath) == ".webp" {
		format = export.FormatWebP
	}

	comp, err := f.Render(cfg, src)
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}

	var buf bytes.Buffer
	if err := export.Encode(&buf, comp.Image, format); err != nil {
		return err
	}

	dir, name := filepath.Split(outputPath)
	if dir == "" {
		dir = "."
	}
	if err := export.NewDirSaver(dir).Save(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to save %s: %w", outputPath, err)
	}
	return nil
}

// NewExporter creates an Exporter that renders with this Framer
func (f *Framer) NewExporter(saver export.Saver, opts export.Options) *export.Exporter {
	if opts.Logger == nil {
		opts.Logger = f.logger
	}
	return export.NewExporter(f.renderer, saver, opts)
}

// NewPipeline creates a batch Pipeline that renders with this Framer
func (f *Framer) NewPipeline(saver export.Saver, opts export.Options, cfg export.PipelineConfig) *export.Pipeline {
	return export.NewPipeline(f.NewExporter(saver, opts), cfg)
}

// Items pairs each source with its name for a batch export
func Items(sources []*types.SourceImage) []export.Item {
	items := make([]export.Item, 0, len(sources))
	for _, src := range sources {
		items = append(items, export.Item{Name: src.Name, Source: src})
	}
	return items
}

// DebugOverlay draws the construction guides of comp over its image
func (f *Framer) DebugOverlay(comp *render.Composition) image.Image {
	g := processing.Guides{
		Border: comp.Border.Rect,
		Start:  comp.Border.Start,
		End:    comp.Border.End,
	}
	if comp.HasFit {
		fit := comp.Fit
		g.Fit = &fit
	}
	return f.processor.CreateDebugOverlay(comp.Image, g)
}

// SaveDebugOverlay writes the debug overlay of comp as PNG
func (f *Framer) SaveDebugOverlay(comp *render.Composition, path string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return f.processor.SaveImage(f.DebugOverlay(comp), path, "png", 0, true)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
