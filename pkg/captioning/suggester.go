// Package captioning asks a vision model for a short photo caption.
package captioning

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/menta2k/image-framer/pkg/client"
	"github.com/menta2k/image-framer/pkg/processing"
)

// DefaultPrompt asks for a caption that fits under a printed photo
const DefaultPrompt = `Write one short caption for this photo, suitable for printing beneath it in a frame.

RULES
- At most 8 words.
- Plain text only: no quotes, no hashtags, no emoji, no markdown.
- Describe the scene or mood; do not guess real identities.
- Reply with the caption and nothing else.`

// MaxCaptionRunes bounds the cleaned caption length
const MaxCaptionRunes = 80

// ErrEmptyCaption is returned when the model answers with nothing usable.
var ErrEmptyCaption = errors.New("model returned an empty caption")

// Options configure a Suggester.
type Options struct {
	Model   string
	Prompt  string
	Format  string // image format sent to the model: jpg or png
	MaxDim  int    // longest side sent to the model
	Quality int
	Logger  *slog.Logger
}

// Suggester produces caption suggestions with a vision client
type Suggester struct {
	client    client.VisionClient
	processor *processing.Processor
	opts      Options
}

// NewSuggester creates a new suggester with a vision client
func NewSuggester(c client.VisionClient, opts Options) *Suggester {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	if opts.Format == "" {
		opts.Format = "jpg"
	}
	if opts.MaxDim <= 0 {
		opts.MaxDim = 768
	}
	if opts.Quality <= 0 {
		opts.Quality = 85
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Suggester{client: c, processor: processing.NewProcessor(), opts: opts}
}

// Suggest returns a cleaned caption for img.
func (s *Suggester) Suggest(ctx context.Context, img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("no image to caption")
	}
	imgB64, err := s.processor.PrepareImageForModel(img, s.opts.Format, s.opts.MaxDim, s.opts.Quality)
	if err != nil {
		return "", fmt.Errorf("failed to prepare image: %w", err)
	}

	raw, err := s.client.SimpleQuery(ctx, s.opts.Model, s.opts.Prompt, imgB64)
	if err != nil {
		return "", fmt.Errorf("failed to query model: %w", err)
	}

	caption := CleanCaption(raw)
	if caption == "" {
		return "", ErrEmptyCaption
	}
	return caption, nil
}

// SuggestOrKeep returns a suggestion for img, or current when the model fails
// or returns nothing. Failures are logged and never returned.
func (s *Suggester) SuggestOrKeep(ctx context.Context, img image.Image, current string) string {
	caption, err := s.Suggest(ctx, img)
	if err != nil {
		s.opts.Logger.Warn("Caption suggestion failed, keeping current caption", "model", s.opts.Model, "error", err)
		return current
	}
	s.opts.Logger.Debug("Caption suggested", "caption", caption)
	return caption
}

var (
	labelPrefix = regexp.MustCompile(`(?i)^(suggested\s+)?(caption|title)\s*[:\-]\s*`)
	listPrefix  = regexp.MustCompile(`^(\d+[.)]|[-*•])\s+`)
)

// CleanCaption normalizes a model reply: code fences, label prefixes, list
// markers and surrounding quotes are removed, only the first non-empty line
// is kept and the result is truncated to MaxCaptionRunes.
func CleanCaption(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		} else {
			raw = strings.TrimPrefix(raw, "```")
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}

	line := ""
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}

	line = listPrefix.ReplaceAllString(line, "")
	line = strings.TrimLeft(line, "*_`")
	line = labelPrefix.ReplaceAllString(line, "")
	line = strings.Trim(line, "*_` ")
	line = trimQuotes(line)
	line = strings.Join(strings.Fields(line), " ")

	if utf8.RuneCountInString(line) > MaxCaptionRunes {
		runes := []rune(line)
		line = strings.TrimSpace(string(runes[:MaxCaptionRunes]))
	}
	return line
}

func trimQuotes(s string) string {
	pairs := [][2]string{{`"`, `"`}, {`'`, `'`}, {"“", "”"}, {"‘", "’"}, {"«", "»"}}
	for {
		trimmed := false
		for _, p := range pairs {
			if len(s) >= len(p[0])+len(p[1]) && strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
				s = strings.TrimSpace(s[len(p[0]) : len(s)-len(p[1])])
				trimmed = true
			}
		}
		if !trimmed {
			return s
		}
	}
}
