// Package studio ties the form state to generation, the gallery, presets,
// usage counters and notifications.
package studio

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"postcraft/internal/batch"
	"postcraft/internal/captions"
	"postcraft/internal/credentials"
	"postcraft/internal/faults"
	"postcraft/internal/gallery"
	"postcraft/internal/gemini"
	"postcraft/internal/imaging"
	"postcraft/internal/logging"
	"postcraft/internal/notify"
	"postcraft/internal/presets"
	"postcraft/internal/prompt"
	"postcraft/internal/state"
	"postcraft/internal/templates"
	"postcraft/internal/usage"
)

// Generator is the generative API as seen by the studio.
type Generator interface {
	GenerateImage(ctx context.Context, req gemini.ImageRequest) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
	ImageModel() string
	TextModel() string
}

// GeneratorFactory builds a Generator for an API key.
type GeneratorFactory func(ctx context.Context, apiKey string) (Generator, error)

// References are the optional uploaded images.
type References struct {
	Logo       *imaging.Inline
	Background *imaging.Inline
}

// Result is the outcome of GenerateImages.
type Result struct {
	App    state.App
	Images []gallery.Image
}

// Studio coordinates one operator's work.
type Studio struct {
	Templates   *templates.Registry
	Gallery     *gallery.Gallery
	Presets     *presets.Store
	Credentials *credentials.Session
	Usage       *usage.Tracker // optional
	Notify      notify.Sink    // optional
	NewGen      GeneratorFactory
	Identity    prompt.Studio
	Concurrency int // 0 = all variations at once

	// MaxVariations caps a batch below state.MaxVariations; 0 = no extra cap.
	MaxVariations int

	mu     sync.Mutex
	gen    Generator
	genKey string
}

func (s *Studio) sink(ctx context.Context) notify.Sink {
	fallback := s.Notify
	if fallback == nil {
		fallback = notify.Discard
	}
	return notify.FromContext(ctx, fallback)
}

func (s *Studio) generator(ctx context.Context) (Generator, error) {
	key, err := s.Credentials.Key()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != nil && s.genKey == key {
		return s.gen, nil
	}
	gen, err := s.NewGen(ctx, key)
	if err != nil {
		return nil, err
	}
	s.gen, s.genKey = gen, key
	return gen, nil
}

// Assemble builds the prompt for app.
func (s *Studio) Assemble(app state.App, refs References) (prompt.Assembled, error) {
	if app.TemplateID == "" {
		return prompt.Assembled{}, faults.Invalidf("no template selected")
	}
	tpl, ok := s.Templates.Get(app.TemplateID)
	if !ok {
		return prompt.Assembled{}, faults.Invalidf("invalid template %q", app.TemplateID)
	}
	return prompt.Assemble(prompt.Request{
		Template:   tpl,
		Values:     app.Values,
		Options:    app.Options,
		Studio:     s.Identity,
		Logo:       refs.Logo,
		Background: refs.Background,
	})
}

// Preview returns the prompt text without calling the API.
func (s *Studio) Preview(app state.App, refs References) (string, error) {
	a, err := s.Assemble(app, refs)
	if err != nil {
		return "", err
	}
	return a.Text, nil
}

// GenerateImages runs a variation batch for app and saves the results.
// The returned App carries the inline error and credential flag.
func (s *Studio) GenerateImages(ctx context.Context, app state.App, refs References) (Result, error) {
	app = state.Reduce(app, state.ClearError{})
	res, err := s.generateImages(ctx, app, refs)
	if err != nil {
		return Result{App: s.fail(ctx, app, err)}, err
	}
	return res, nil
}

func (s *Studio) generateImages(ctx context.Context, app state.App, refs References) (Result, error) {
	n := app.VariationCount
	if limit := s.maxVariations(); n < state.MinVariations || n > limit {
		return Result{}, faults.Invalidf("variation count must be between %d and %d, got %d", state.MinVariations, limit, n)
	}
	assembled, err := s.Assemble(app, refs)
	if err != nil {
		return Result{}, err
	}
	gen, err := s.generator(ctx)
	if err != nil {
		return Result{}, err
	}

	logging.Generation("generating %d variation(s) of %s", n, app.TemplateID)

	req := gemini.ImageRequest{
		Prompt:      assembled.Text,
		Images:      assembled.Images,
		AspectRatio: string(app.Options.WithDefaults().AspectRatio),
	}
	uris, err := batch.Gather(ctx, n, s.Concurrency, func(ctx context.Context, _ int) (string, error) {
		return gen.GenerateImage(ctx, req)
	})
	s.track(usage.Event{Operation: usage.OpImage, Model: gen.ImageModel(), TemplateID: app.TemplateID, Requested: n, Succeeded: len(uris)})
	if err != nil {
		return Result{}, err
	}

	images, err := s.Gallery.AddBatch(ctx, app.TemplateID, uris)
	if err != nil {
		return Result{}, err
	}

	s.sink(ctx).Success(GeneratedMessage(len(images)))
	app = state.Reduce(app, state.CredentialAccepted{})
	return Result{App: app, Images: images}, nil
}

func (s *Studio) maxVariations() int {
	if s.MaxVariations > 0 && s.MaxVariations < state.MaxVariations {
		return s.MaxVariations
	}
	return state.MaxVariations
}

// GeneratedMessage is the success toast for n images.
func GeneratedMessage(n int) string {
	if n == 1 {
		return "✨ 1 image generated!"
	}
	return fmt.Sprintf("✨ %d images generated!", n)
}

// fail classifies err, records it inline, notifies and resets the
// credential flag when the key was refused.
func (s *Studio) fail(ctx context.Context, app state.App, err error) state.App {
	report := faults.Classify(err)
	logging.Get(logging.CategoryGeneration).Error("generation failed (%s): %v", report.Kind, err)

	app = state.Reduce(app, state.SetError{Message: report.Message})
	s.sink(ctx).Error(report.Title, report.Message)

	if report.ResetsCredential() {
		s.Credentials.Observe(report)
		app = state.Reduce(app, state.CredentialRejected{})
	}
	return app
}

// GenerateCaptions writes up to two captions for keywords. Blank keywords
// return nil without calling the API.
func (s *Studio) GenerateCaptions(ctx context.Context, keywords string) ([]string, error) {
	if strings.TrimSpace(keywords) == "" {
		return nil, nil
	}
	gen, err := s.generator(ctx)
	if err != nil {
		s.captionFailed(ctx, err)
		return nil, err
	}

	out, err := captions.Generate(ctx, gen, s.brand(), keywords)
	ok := 0
	if err == nil {
		ok = 1
	}
	s.track(usage.Event{Operation: usage.OpCaption, Model: gen.TextModel(), Requested: 1, Succeeded: ok})
	if err != nil {
		s.captionFailed(ctx, err)
		return nil, err
	}

	s.sink(ctx).Success("✨ Captions generated!")
	return out, nil
}

func (s *Studio) captionFailed(ctx context.Context, err error) {
	report := faults.Classify(err)
	logging.Get(logging.CategoryGeneration).Warn("caption generation failed (%s): %v", report.Kind, err)
	s.sink(ctx).Error(report.Title, "Failed to generate captions")
	if report.ResetsCredential() {
		s.Credentials.Observe(report)
	}
}

func (s *Studio) brand() string {
	if s.Identity.Name != "" {
		return s.Identity.Name
	}
	return prompt.DefaultStudio().Name
}

func (s *Studio) track(e usage.Event) {
	if s.Usage != nil {
		s.Usage.Track(e)
	}
}
