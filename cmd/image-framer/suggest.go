package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSuggestCmd(a *app) *cobra.Command {
	var model, backend, url string

	cmd := &cobra.Command{
		Use:   "suggest <image|url>",
		Short: "Print a caption suggested by the vision model",
		Example: `  image-framer suggest beach.jpg
  image-framer suggest beach.jpg --backend llamacpp --url http://localhost:8080
  GEMINI_API_KEY=... image-framer suggest beach.jpg --backend gemini --model gemini-1.5-flash`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("backend") {
				a.cfg.Caption.Backend = backend
			}
			if cmd.Flags().Changed("url") {
				a.cfg.Caption.URL = url
			}
			if cmd.Flags().Changed("model") {
				a.cfg.Caption.Model = model
			}

			src, err := a.framer().LoadImage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s, err := a.suggester()
			if err != nil {
				return err
			}

			ctx, cancel := a.captionContext(cmd.Context())
			defer cancel()
			caption, err := s.Suggest(ctx, src.Image)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), caption)
			return err
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "ollama, llamacpp or gemini (default from config)")
	cmd.Flags().StringVar(&url, "url", "", "server URL (default from config)")
	cmd.Flags().StringVar(&model, "model", "", "model name (default from config)")

	return cmd
}
