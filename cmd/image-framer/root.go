package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	imageframer "github.com/menta2k/image-framer"
	"github.com/menta2k/image-framer/internal/config"
	"github.com/menta2k/image-framer/pkg/caption"
	"github.com/menta2k/image-framer/pkg/captioning"
	"github.com/menta2k/image-framer/pkg/client"
	"github.com/menta2k/image-framer/pkg/gemini"
	"github.com/menta2k/image-framer/pkg/llamacpp"
	"github.com/menta2k/image-framer/pkg/ollama"
)

// app carries what every subcommand needs once flags are parsed
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "image-framer",
		Short: "Frame photos on printable A4 pages with a captioned border",
		Long: `image-framer places photos on a 300 DPI A4 page, draws a thin border at a
fixed margin and writes an optional caption that breaks the bottom border line.

Captions can be suggested by a vision model served by Ollama, llama.cpp or Gemini.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", config.GetConfigPath(), "config file (YAML)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newFrameCmd(a),
		newBatchCmd(a),
		newSuggestCmd(a),
		newConfigCmd(a),
	)

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	a.cfg = cfg
	a.logger.Debug("Configuration loaded", "path", a.configPath)
	return nil
}

// fontCache builds the font cache the config asks for
func (a *app) fontCache() *caption.FontCache {
	if a.cfg.Fonts.SystemScan {
		return caption.NewFontCache(a.cfg.Fonts.Dirs...)
	}
	return caption.NewEmbeddedFontCache(a.cfg.Fonts.Dirs...)
}

func (a *app) framer() *imageframer.Framer {
	return imageframer.NewWithConfig(imageframer.Config{
		Fonts:  a.fontCache(),
		Logger: a.logger,
	})
}

// visionClient creates the client for the configured caption backend
func (a *app) visionClient() (client.VisionClient, error) {
	c := a.cfg.Caption
	switch c.Backend {
	case "ollama":
		cl, err := ollama.NewClient(c.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return cl, nil
	case "llamacpp":
		cl, err := llamacpp.NewClient(c.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create llama.cpp client: %w", err)
		}
		return cl, nil
	case "gemini":
		cl, err := gemini.NewClient(os.Getenv("GEMINI_API_KEY"))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return cl, nil
	default:
		return nil, fmt.Errorf("unknown caption backend: %s (use ollama, llamacpp or gemini)", c.Backend)
	}
}

func (a *app) suggester() (*captioning.Suggester, error) {
	vc, err := a.visionClient()
	if err != nil {
		return nil, err
	}
	c := a.cfg.Caption
	return captioning.NewSuggester(vc, captioning.Options{
		Model:   c.Model,
		Prompt:  c.Prompt,
		Format:  c.SendFormat,
		MaxDim:  c.SendSize,
		Quality: c.Quality,
		Logger:  a.logger,
	}), nil
}

// captionContext bounds one caption request by the configured timeout
func (a *app) captionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Caption.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Caption.Timeout)
	}
	return context.WithCancel(ctx)
}
