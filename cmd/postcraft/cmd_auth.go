package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"postcraft/internal/credentials"
)

// authCmd groups the API key commands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Gemini API key",
}

var authSetKeyCmd = &cobra.Command{
	Use:   "set-key [KEY]",
	Short: "Store the Gemini API key for this workspace",
	Long: `Stores the key in <workspace>/.postcraft/credentials.json (mode 0600).
Without KEY the key is read from the terminal without echo, or from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			k, err := credentials.ReadKey(os.Stdin, cmd.ErrOrStderr(), "Gemini API key: ")
			if err != nil {
				return err
			}
			key = k
		}

		app, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer app.Close()

		path := credentials.DefaultPath(cfg.Workspace)
		if err := app.studio.SetKey(key, path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("API key saved to "+path))
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a usable API key is configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer app.Close()

		st := app.studio.Credentials.Status()
		out := cmd.OutOrStdout()
		if !st.Accepted {
			fmt.Fprintln(out, warnStyle.Render("No API key configured."))
			fmt.Fprintln(out, mutedStyle.Render(`Run "postcraft auth set-key" or set GEMINI_API_KEY.`))
			return nil
		}
		fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("API key configured (source: %s)", st.Source)))
		return nil
	},
}

func init() {
	authCmd.AddCommand(authSetKeyCmd)
	authCmd.AddCommand(authStatusCmd)
}
