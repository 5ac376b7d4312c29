package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var (
	previewForm formFlags
	previewRaw  bool
)

// previewCmd prints the assembled prompt without calling the API
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the image prompt a generate run would send",
	Long: `Assembles the prompt from the same flags as "generate" and prints it.
No API key is needed.`,
	RunE: runPreview,
}

func init() {
	previewForm.bind(previewCmd)
	previewCmd.Flags().BoolVar(&previewRaw, "raw", false, "Print the prompt text without markdown rendering")
}

func runPreview(cmd *cobra.Command, args []string) error {
	app, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer app.Close()

	form, err := previewForm.state(app.studio)
	if err != nil {
		return err
	}
	refs, err := previewForm.references()
	if err != nil {
		return err
	}
	text, err := app.studio.Preview(form, refs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if previewRaw {
		fmt.Fprintln(out, text)
		return nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		fmt.Fprintln(out, text)
		return nil
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		fmt.Fprintln(out, text)
		return nil
	}
	fmt.Fprint(out, rendered)
	return nil
}
