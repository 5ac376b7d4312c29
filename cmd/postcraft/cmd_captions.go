package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

// captionsCmd asks the text model for Instagram captions
var captionsCmd = &cobra.Command{
	Use:   "captions KEYWORDS...",
	Short: "Generate two caption versions from keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCaptions,
}

func runCaptions(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	keywords := strings.Join(args, " ")
	captions, err := app.studio.GenerateCaptions(ctx, keywords)
	if err != nil {
		return err
	}
	if len(captions) == 0 {
		return fmt.Errorf("keywords are empty")
	}

	out := cmd.OutOrStdout()
	for i, c := range captions {
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Version %d", i+1)))
		fmt.Fprintln(out, c)
		fmt.Fprintln(out)
	}
	return nil
}
