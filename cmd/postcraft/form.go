package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"postcraft/internal/imaging"
	"postcraft/internal/prompt"
	"postcraft/internal/state"
	"postcraft/internal/studio"
)

// formFlags are the command-line equivalent of the browser form.
type formFlags struct {
	template     string
	preset       string
	fields       map[string]string
	aspect       string
	theme        string
	opacity      int
	logoPosition string
	logoSize     int
	variations   int
	bgPrompt     string
	icon         string
	primary      string
	secondary    string
	textColor    string
	logoPath     string
	bgPath       string
}

func (f *formFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.template, "template", "t", "", "Template id (studio-ops, events, calendar, guide)")
	fs.StringVar(&f.preset, "preset", "", "Start from a saved preset id")
	fs.StringToStringVarP(&f.fields, "field", "f", nil, "Form value as id=value (repeatable)")
	fs.StringVar(&f.aspect, "aspect", "", "Aspect ratio (1:1, 3:4, 4:5, 9:16)")
	fs.StringVar(&f.theme, "theme", "", "Background theme (dark, light, vibrant)")
	fs.IntVar(&f.opacity, "opacity", -1, "Background opacity 0-100")
	fs.StringVar(&f.logoPosition, "logo-position", "", "Logo position (top-left, top-right, bottom-left, bottom-right, center)")
	fs.IntVar(&f.logoSize, "logo-size", 0, "Logo size percent 10-200")
	fs.IntVarP(&f.variations, "variations", "n", 0, "Number of variations 1-4")
	fs.StringVar(&f.bgPrompt, "bg-prompt", "", "Describe a generated background")
	fs.StringVar(&f.icon, "icon", "", "Custom neon icon subject")
	fs.StringVar(&f.primary, "primary", "", "Brand primary color")
	fs.StringVar(&f.secondary, "secondary", "", "Brand secondary color")
	fs.StringVar(&f.textColor, "text-color", "", "Brand text color")
	fs.StringVar(&f.logoPath, "logo", "", "Logo image file")
	fs.StringVar(&f.bgPath, "background", "", "Background image file")
}

// actions turns the flags other than template and preset into reducer
// actions. Unset flags produce none.
func (f *formFlags) actions(brand prompt.BrandColors) []state.Action {
	var acts []state.Action
	ids := make([]string, 0, len(f.fields))
	for id := range f.fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		acts = append(acts, state.SetField{ID: id, Value: f.fields[id]})
	}

	if f.aspect != "" {
		acts = append(acts, state.SetAspectRatio{Ratio: prompt.AspectRatio(f.aspect)})
	}
	if f.theme != "" {
		acts = append(acts, state.SetTheme{Theme: prompt.Theme(f.theme)})
	}
	if f.opacity >= 0 {
		acts = append(acts, state.SetBgOpacity{Percent: f.opacity})
	}
	if f.logoPosition != "" {
		acts = append(acts, state.SetLogoPosition{Position: prompt.LogoPosition(f.logoPosition)})
	}
	if f.logoSize != 0 {
		acts = append(acts, state.SetLogoSize{Percent: f.logoSize})
	}
	if f.variations != 0 {
		acts = append(acts, state.SetVariationCount{N: f.variations})
	}
	if f.bgPrompt != "" {
		acts = append(acts, state.SetBgPrompt{Prompt: f.bgPrompt})
	}
	if f.icon != "" {
		acts = append(acts, state.SetCustomIcon{Prompt: f.icon})
	}
	if f.primary != "" || f.secondary != "" || f.textColor != "" {
		if f.primary != "" {
			brand.Primary = f.primary
		}
		if f.secondary != "" {
			brand.Secondary = f.secondary
		}
		if f.textColor != "" {
			brand.TextColor = f.textColor
		}
		acts = append(acts, state.SetBrandColors{Colors: brand})
	}
	return acts
}

// state builds the form state, starting from a preset when one is named.
func (f *formFlags) state(s *studio.Studio) (state.App, error) {
	app := baseState()
	if f.preset != "" {
		p, ok := s.Presets.Get(f.preset)
		if !ok {
			return app, fmt.Errorf("preset %q: %w", f.preset, studio.ErrNotFound)
		}
		app = state.Reduce(app, state.LoadPreset{Preset: p})
	}
	if f.template != "" && f.template != app.TemplateID {
		// SelectTemplate clears values, so it goes before the fields.
		app = state.Reduce(app, state.SelectTemplate{ID: f.template})
	}
	return state.ReduceAll(app, f.actions(app.Options.Brand)...), nil
}

// references loads the reference image files.
func (f *formFlags) references() (studio.References, error) {
	var refs studio.References
	if f.logoPath != "" {
		in, err := imaging.Open(f.logoPath)
		if err != nil {
			return refs, fmt.Errorf("logo: %w", err)
		}
		refs.Logo = &in
	}
	if f.bgPath != "" {
		in, err := imaging.Open(f.bgPath)
		if err != nil {
			return refs, fmt.Errorf("background: %w", err)
		}
		refs.Background = &in
	}
	return refs, nil
}
