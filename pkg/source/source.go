// Package source turns files, directories and URLs into named SourceImages
// in a stable order. Load order is export order.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/menta2k/image-framer/internal/utils"
	"github.com/menta2k/image-framer/pkg/processing"
	"github.com/menta2k/image-framer/pkg/types"
)

// Config holds configuration for the Loader
type Config struct {
	MinImageSize int // smaller images are rejected; 0 accepts anything non-empty
	Logger       *slog.Logger
}

// Loader loads source photos
type Loader struct {
	config    Config
	processor *processing.Processor
}

// New creates a Loader with default configuration
func New() *Loader {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a Loader with custom configuration
func NewWithConfig(config Config) *Loader {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Loader{config: config, processor: processing.NewProcessor()}
}

// Load loads one file path or http(s) URL.
func (l *Loader) Load(ctx context.Context, location string) (*types.SourceImage, error) {
	img, err := l.processor.LoadImageSmart(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", location, err)
	}
	src := types.NewSourceImage(NameFor(location), img)
	if err := l.validate(src); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", location, err)
	}
	return src, nil
}

// LoadAll discovers and loads every input. Unreadable images are logged and
// skipped; the rest keep discovery order. Names are made unique so no two
// outputs collide.
func (l *Loader) LoadAll(ctx context.Context, inputs []string) ([]*types.SourceImage, error) {
	locations, err := Discover(inputs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(locations))
	sources := make([]*types.SourceImage, 0, len(locations))
	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return sources, err
		}
		src, err := l.Load(ctx, loc)
		if err != nil {
			l.config.Logger.Warn("Skipping unreadable image", "source", loc, "error", err)
			continue
		}
		src.Name = uniqueName(seen, src.Name)
		l.config.Logger.Debug("Loaded image", "source", loc, "name", src.Name, "width", src.Width, "height", src.Height)
		sources = append(sources, src)
	}
	return sources, nil
}

func (l *Loader) validate(src *types.SourceImage) error {
	if src.Width <= 0 || src.Height <= 0 {
		return fmt.Errorf("image has no pixels")
	}
	if m := l.config.MinImageSize; m > 0 && (src.Width < m || src.Height < m) {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)", src.Width, src.Height, m)
	}
	return nil
}

// Discover expands inputs into image locations. Files and URLs are kept in
// argument order; directories are walked recursively in lexical order.
// Duplicates are dropped.
func Discover(inputs []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(loc string) {
		if !seen[loc] {
			seen[loc] = true
			out = append(out, loc)
		}
	}

	for _, in := range inputs {
		switch {
		case isURL(in):
			add(in)
		case utils.DirExists(in):
			files, err := utils.ListImageFiles(in)
			if err != nil {
				return nil, fmt.Errorf("failed to list %s: %w", in, err)
			}
			for _, f := range files {
				add(f)
			}
		case utils.FileExists(in):
			add(in)
		default:
			return nil, fmt.Errorf("input not found: %s", in)
		}
	}
	return out, nil
}

// NameFor derives the source name from a path or URL: the base name
// without extension.
func NameFor(location string) string {
	if isURL(location) {
		if u, err := url.Parse(location); err == nil {
			if base := path.Base(u.Path); base != "/" && base != "." {
				return utils.BaseName(base)
			}
			return u.Hostname()
		}
	}
	return utils.BaseName(location)
}

func uniqueName(seen map[string]int, name string) string {
	seen[name]++
	if n := seen[name]; n > 1 {
		candidate := fmt.Sprintf("%s-%d", name, n)
		for seen[candidate] > 0 {
			n++
			candidate = fmt.Sprintf("%s-%d", name, n)
		}
		seen[candidate]++
		return candidate
	}
	return name
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
