package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"postcraft/internal/gallery"
)

var (
	generateForm formFlags
	generateOut  string
)

// generateCmd runs one variation batch
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate image variations for a template",
	Long: `Assembles the prompt for a template and requests N variations from the
Gemini image model. Successful images are added to the gallery.

Example:
  postcraft generate -t events -f title="LUCKY DRAW" -f date=2025-05-01 -n 3 --logo logo.png`,
	RunE: runGenerate,
}

func init() {
	generateForm.bind(generateCmd)
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Also write the new images to this directory")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	form, err := generateForm.state(app.studio)
	if err != nil {
		return err
	}
	refs, err := generateForm.references()
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("Generating %d variation(s)...", form.VariationCount)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	res, err := app.studio.GenerateImages(ctx, form, refs)
	close(done)
	_ = bar.Finish()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, img := range res.Images {
		fmt.Fprintf(out, "%s  %s  %s\n", img.ID, img.TemplateID, img.Timestamp.Format(time.RFC3339))
	}

	if generateOut != "" {
		for _, img := range res.Images {
			path, err := gallery.WriteImage(generateOut, cfg.Brand.ExportPrefix, img)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, path)
		}
	}
	return nil
}
