package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"postcraft/internal/credentials"
	"postcraft/internal/logging"
	"postcraft/internal/server"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON HTTP API backing the browser form",
	Long: `Starts the HTTP API on the configured address (server.addr, POSTCRAFT_ADDR).

Basic auth is enforced when server.auth_user and server.auth_password_hash are
set; create the hash with "postcraft hash-password".`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if _, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Infof)); err != nil {
		logging.Get(logging.CategoryBoot).Warn("failed to set GOMAXPROCS: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.watchTemplates(ctx); err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	if !cfg.AuthEnabled() {
		logging.Get(logging.CategoryServer).Warn("basic auth disabled; the API is open to anyone who can reach %s", addr)
	}

	srv := server.New(app.studio, server.Options{
		Addr:             addr,
		MaxConns:         cfg.Server.MaxConns,
		ShutdownTimeout:  cfg.GetShutdownTimeout(),
		AuthUser:         cfg.Server.AuthUser,
		AuthPasswordHash: cfg.Server.AuthPasswordHash,
		CredentialsPath:  credentials.DefaultPath(cfg.Workspace),
		InitialState:     baseState,
	})
	return srv.Run(ctx)
}
