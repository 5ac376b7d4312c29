package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"postcraft/internal/config"
	"postcraft/internal/server"
)

var initForce bool

// initConfigCmd writes the default config file
var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default config file to the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath(cfg.Workspace)
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		def := config.DefaultConfig()
		if err := def.Save(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Wrote "+path))
		return nil
	},
}

// hashPasswordCmd prints an argon2id hash for server.auth_password_hash
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash a password for server.auth_password_hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		pw, err := readPassword(os.Stdin, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		hash, err := server.HashPassword(pw)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

// readPassword asks twice on a terminal; piped input is read as one line.
func readPassword(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		pw := strings.TrimRight(line, "\r\n")
		if pw == "" {
			return "", fmt.Errorf("password is empty")
		}
		return pw, nil
	}

	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprint(out, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(first) == 0 {
		return "", fmt.Errorf("password is empty")
	}
	return string(first), nil
}

func init() {
	initConfigCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}
