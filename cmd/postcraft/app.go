package main

import (
	"context"
	"fmt"
	"os"

	"postcraft/internal/credentials"
	"postcraft/internal/gallery"
	"postcraft/internal/gemini"
	"postcraft/internal/logging"
	"postcraft/internal/notify"
	"postcraft/internal/presets"
	"postcraft/internal/prompt"
	"postcraft/internal/state"
	"postcraft/internal/store"
	"postcraft/internal/studio"
	"postcraft/internal/templates"
	"postcraft/internal/usage"
)

// application holds the wired components for one command run.
type application struct {
	kv      store.KV
	studio  *studio.Studio
	tracker *usage.Tracker
	watcher *templates.Watcher
}

// openApp opens storage, loads collections and wires the studio.
func openApp(ctx context.Context) (*application, error) {
	timer := logging.StartTimer(logging.CategoryBoot, "openApp")
	defer timer.Stop()

	kv, err := store.Open(cfg.Storage.Backend, cfg.ResolvePath(cfg.Storage.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}

	registry := templates.NewRegistry()
	if cfg.Templates.OverridePath != "" {
		if err := registry.LoadOverrides(cfg.ResolvePath(cfg.Templates.OverridePath)); err != nil {
			_ = kv.Close()
			return nil, err
		}
	}

	g := gallery.New(kv)
	if err := g.Load(ctx); err != nil {
		_ = kv.Close()
		return nil, err
	}
	p := presets.New(kv)
	if err := p.Load(ctx); err != nil {
		_ = kv.Close()
		return nil, err
	}

	tracker := usage.NewTracker(ctx, kv)
	session := credentials.NewSession(credentials.Resolver{
		Explicit:  apiKey,
		FilePath:  credentials.DefaultPath(cfg.Workspace),
		ConfigKey: cfg.Gemini.APIKey,
	})

	s := &studio.Studio{
		Templates:     registry,
		Gallery:       g,
		Presets:       p,
		Credentials:   session,
		Usage:         tracker,
		Notify:        notify.NewTerminal(os.Stderr),
		Identity:      prompt.Studio{Name: cfg.Brand.Name, Vibe: cfg.Brand.Vibe},
		Concurrency:   cfg.Generation.Concurrency,
		MaxVariations: cfg.Generation.MaxVariations,
		NewGen: func(ctx context.Context, key string) (studio.Generator, error) {
			c, err := gemini.New(ctx, gemini.Config{
				APIKey:     key,
				ImageModel: cfg.Gemini.ImageModel,
				TextModel:  cfg.Gemini.TextModel,
				ImageSize:  cfg.Gemini.ImageSize,
				BaseURL:    cfg.Gemini.BaseURL,
				Timeout:    cfg.GetRequestTimeout(),
			})
			if err != nil {
				return nil, err
			}
			c.Tokens = tracker
			return c, nil
		},
	}

	return &application{kv: kv, studio: s, tracker: tracker}, nil
}

// watchTemplates starts hot reload of the override file when enabled.
func (a *application) watchTemplates(ctx context.Context) error {
	if !cfg.Templates.Watch || cfg.Templates.OverridePath == "" {
		return nil
	}
	w, err := templates.NewWatcher(a.studio.Templates, cfg.ResolvePath(cfg.Templates.OverridePath))
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	a.watcher = w
	return nil
}

// Close flushes usage and closes storage.
func (a *application) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if err := a.tracker.Close(context.Background()); err != nil {
		logging.Get(logging.CategoryUsage).Warn("failed to flush usage: %v", err)
	}
	if err := a.kv.Close(); err != nil {
		logging.Get(logging.CategoryStore).Warn("failed to close store: %v", err)
	}
}

// baseState returns a fresh form seeded with the configured brand colors.
func baseState() state.App {
	app := state.Initial(cfg.Generation.DefaultVariations)
	app.Options.Brand = prompt.BrandColors{
		Primary:   cfg.Brand.Primary,
		Secondary: cfg.Brand.Secondary,
		TextColor: cfg.Brand.Text,
	}
	return app
}
