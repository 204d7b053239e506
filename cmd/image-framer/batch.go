package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	imageframer "github.com/menta2k/image-framer"
	"github.com/menta2k/image-framer/internal/utils"
	"github.com/menta2k/image-framer/pkg/export"
)

// progressObserver prints one line per finished item
type progressObserver struct {
	w io.Writer
}

func (p *progressObserver) OnStart(total int) {
	fmt.Fprintf(p.w, "Framing %d image(s)\n", total)
}

func (p *progressObserver) OnItemDone(idx, total int, res export.ItemResult) {
	switch res.Status {
	case export.StatusOK:
		fmt.Fprintf(p.w, "[%d/%d] %s -> %s (%s, %s)\n", idx+1, total, res.Name, res.Output,
			utils.FormatFileSize(res.Bytes), res.Duration.Round(time.Millisecond))
	default:
		fmt.Fprintf(p.w, "[%d/%d] %s %s: %s\n", idx+1, total, res.Name, res.Status, res.Error)
	}
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		style  styleFlags
		outDir string
		format string
		delay  time.Duration
		report string
	)

	cmd := &cobra.Command{
		Use:   "batch <image|dir|url>...",
		Short: "Frame many photos with one style, one after another",
		Long: `Frames every input with the same style and saves <name>-framed.<format> into the
output directory. Directories are walked in lexical order. Items are processed
strictly one at a time with a pause between saves; a failed item is reported
and the batch continues. Ctrl+C stops after the current item.`,
		Example: `  image-framer batch ~/Pictures/trip --caption "Iceland 2024" --out prints
  image-framer batch a.jpg b.jpg --format webp --report report.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			frameCfg := style.apply(cmd, a.cfg.Frame)
			if err := frameCfg.Validate(); err != nil {
				return err
			}

			if !cmd.Flags().Changed("out") {
				outDir = a.cfg.Output.Dir
			}
			if !cmd.Flags().Changed("format") {
				format = a.cfg.Output.Format
			}
			if !cmd.Flags().Changed("delay") {
				delay = a.cfg.Batch.Delay
			}
			f, err := export.ParseFormat(normalizeFormat(format))
			if err != nil {
				return err
			}
			if delay == 0 {
				delay = -1
			}

			framer := a.framer()
			sources, err := framer.LoadImages(ctx, args)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return errors.New("no readable images found")
			}

			pipeline := framer.NewPipeline(
				export.NewDirSaver(outDir),
				export.Options{Format: f, Suffix: a.cfg.Output.Suffix, Logger: a.logger},
				export.PipelineConfig{Delay: delay, Observer: &progressObserver{w: cmd.ErrOrStderr()}, Logger: a.logger},
			)

			rep, runErr := pipeline.Run(ctx, frameCfg, imageframer.Items(sources))
			if rep != nil && report != "" {
				if err := rep.WriteYAML(report); err != nil {
					return err
				}
				a.logger.Info("Wrote report", "path", report)
			}
			if runErr != nil {
				return runErr
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d framed, %d failed in %s -> %s\n",
				rep.OK, rep.Failed, rep.Duration().Round(time.Millisecond), outDir)
			if rep.Failed > 0 {
				return fmt.Errorf("%d of %d images failed", rep.Failed, rep.Total)
			}
			return nil
		},
	}

	addStyleFlags(cmd, &style)
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default from config)")
	cmd.Flags().StringVar(&format, "format", "", "output format: png or webp")
	cmd.Flags().DurationVar(&delay, "delay", export.DefaultDelay, "pause between items (0 disables)")
	cmd.Flags().StringVar(&report, "report", "", "write a YAML report to this path")

	return cmd
}
