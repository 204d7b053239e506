package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menta2k/image-framer/internal/utils"
	"github.com/menta2k/image-framer/pkg/export"
)

func newFrameCmd(a *app) *cobra.Command {
	var (
		style   styleFlags
		output  string
		suggest bool
		debug   string
	)

	cmd := &cobra.Command{
		Use:   "frame <image|url>",
		Short: "Frame a single photo",
		Example: `  # Frame a photo with a caption
  image-framer frame beach.jpg --caption "Summer 2024"

  # Ask the configured vision model for a caption
  image-framer frame beach.jpg --suggest -o prints/beach.webp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			frameCfg := style.apply(cmd, a.cfg.Frame)
			if err := frameCfg.Validate(); err != nil {
				return err
			}

			framer := a.framer()
			src, err := framer.LoadImage(ctx, args[0])
			if err != nil {
				return err
			}

			if suggest {
				s, err := a.suggester()
				if err != nil {
					return err
				}
				qctx, cancel := a.captionContext(ctx)
				frameCfg = frameCfg.WithCaption(s.SuggestOrKeep(qctx, src.Image, frameCfg.CaptionText))
				cancel()
			}

			if output == "" {
				format, err := export.ParseFormat(a.cfg.Output.Format)
				if err != nil {
					return err
				}
				output = filepath.Join(a.cfg.Output.Dir, utils.OutputName(src.Name, a.cfg.Output.Suffix, format.Ext()))
			}

			if err := framer.FrameFile(ctx, frameCfg, src, output); err != nil {
				return err
			}
			a.logger.Info("Framed", "source", args[0], "output", output, "caption", frameCfg.CaptionText)

			if debug != "" {
				comp, err := framer.Render(frameCfg, src)
				if err != nil {
					return err
				}
				if err := framer.SaveDebugOverlay(comp, debug); err != nil {
					return fmt.Errorf("failed to save debug overlay: %w", err)
				}
				a.logger.Info("Wrote debug overlay", "path", debug)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}

	addStyleFlags(cmd, &style)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.png or .webp); defaults to <dir>/<name>-framed.<format>")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "ask the vision model for a caption")
	cmd.Flags().StringVar(&debug, "debug", "", "also write a PNG with fit, border and gap guides to this path")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"png", "webp"}, cobra.ShellCompDirectiveFilterFileExt
	})

	return cmd
}

// normalizeFormat lowercases a format flag value
func normalizeFormat(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "."))
}
