// Package state models the operator's form as an immutable value.
//
// Reduce returns a new App for every action and never modifies its input,
// including the form-value map, so earlier snapshots stay valid.
package state

import (
	"slices"

	"postcraft/internal/presets"
	"postcraft/internal/prompt"
)

// Variation count bounds.
const (
	MinVariations = 1
	MaxVariations = 4
)

// App is the full form and session state.
type App struct {
	TemplateID         string            `json:"templateId"`
	Values             map[string]string `json:"formValues"`
	Options            prompt.Options    `json:"options"`
	VariationCount     int               `json:"variationCount"`
	Error              string            `json:"error,omitempty"`
	CredentialAccepted bool              `json:"credentialAccepted"`
}

// Initial returns the state of a fresh session.
func Initial(variations int) App {
	return App{
		Values:         map[string]string{},
		Options:        prompt.DefaultOptions(),
		VariationCount: clamp(variations, MinVariations, MaxVariations),
	}
}

// Value returns the form value for a field.
func (a App) Value(id string) string {
	return a.Values[id]
}

// Action is a state transition.
type Action interface {
	apply(App) App
}

// Reduce applies act to a.
func Reduce(a App, act Action) App {
	if act == nil {
		return a
	}
	return act.apply(a)
}

// ReduceAll applies actions in order.
func ReduceAll(a App, acts ...Action) App {
	for _, act := range acts {
		a = Reduce(a, act)
	}
	return a
}

// SelectTemplate switches templates, clearing form values and any error.
type SelectTemplate struct{ ID string }

func (s SelectTemplate) apply(a App) App {
	a.TemplateID = s.ID
	a.Values = map[string]string{}
	a.Error = ""
	return a
}

// SetField sets one form value.
type SetField struct{ ID, Value string }

func (s SetField) apply(a App) App {
	values := make(map[string]string, len(a.Values)+1)
	for k, v := range a.Values {
		values[k] = v
	}
	values[s.ID] = s.Value
	a.Values = values
	return a
}

// SetAspectRatio selects the canvas ratio. Unsupported ratios are ignored.
type SetAspectRatio struct{ Ratio prompt.AspectRatio }

func (s SetAspectRatio) apply(a App) App {
	if slices.Contains(prompt.AspectRatios, s.Ratio) {
		a.Options.AspectRatio = s.Ratio
	}
	return a
}

// SetTheme selects the background theme. Unsupported themes are ignored.
type SetTheme struct{ Theme prompt.Theme }

func (s SetTheme) apply(a App) App {
	if slices.Contains(prompt.Themes, s.Theme) {
		a.Options.Theme = s.Theme
	}
	return a
}

// SetBgOpacity sets the background opacity, clamped to 0-100.
type SetBgOpacity struct{ Percent int }

func (s SetBgOpacity) apply(a App) App {
	a.Options.BgOpacity = clamp(s.Percent, prompt.MinOpacity, prompt.MaxOpacity)
	return a
}

// SetBrandColors replaces the brand colors.
type SetBrandColors struct{ Colors prompt.BrandColors }

func (s SetBrandColors) apply(a App) App {
	a.Options.Brand = s.Colors
	return a
}

// SetLogoPosition places the logo. Unsupported positions are ignored.
type SetLogoPosition struct{ Position prompt.LogoPosition }

func (s SetLogoPosition) apply(a App) App {
	if slices.Contains(prompt.LogoPositions, s.Position) {
		a.Options.LogoPosition = s.Position
	}
	return a
}

// SetLogoSize sets the logo scale, clamped to 10-200 percent.
type SetLogoSize struct{ Percent int }

func (s SetLogoSize) apply(a App) App {
	a.Options.LogoSize = clamp(s.Percent, prompt.MinLogoSize, prompt.MaxLogoSize)
	return a
}

// SetBgPrompt sets the background generation prompt.
type SetBgPrompt struct{ Prompt string }

func (s SetBgPrompt) apply(a App) App {
	a.Options.BgPrompt = s.Prompt
	return a
}

// SetCustomIcon sets the custom icon prompt.
type SetCustomIcon struct{ Prompt string }

func (s SetCustomIcon) apply(a App) App {
	a.Options.CustomIcon = s.Prompt
	return a
}

// SetVariationCount sets how many images a generation requests, clamped
// to 1-4.
type SetVariationCount struct{ N int }

func (s SetVariationCount) apply(a App) App {
	a.VariationCount = clamp(s.N, MinVariations, MaxVariations)
	return a
}

// LoadPreset restores a saved preset. Brand colors and logo size are only
// restored when the preset has them.
type LoadPreset struct{ Preset presets.Preset }

func (s LoadPreset) apply(a App) App {
	p := s.Preset
	a.TemplateID = ""
	if p.TemplateID != nil {
		a.TemplateID = *p.TemplateID
	}
	values := make(map[string]string, len(p.FormValues))
	for k, v := range p.FormValues {
		values[k] = v
	}
	a.Values = values
	a = SetAspectRatio{Ratio: p.AspectRatio}.apply(a)
	a = SetTheme{Theme: p.BgTheme}.apply(a)
	a = SetBgOpacity{Percent: p.BgOpacity}.apply(a)
	if p.BrandColors != nil {
		a.Options.Brand = *p.BrandColors
	}
	if p.LogoSize != nil {
		a = SetLogoSize{Percent: *p.LogoSize}.apply(a)
	}
	return a
}

// SetError records the inline error message.
type SetError struct{ Message string }

func (s SetError) apply(a App) App {
	a.Error = s.Message
	return a
}

// ClearError removes the inline error message.
type ClearError struct{}

func (ClearError) apply(a App) App {
	a.Error = ""
	return a
}

// CredentialAccepted marks the API key as usable.
type CredentialAccepted struct{}

func (CredentialAccepted) apply(a App) App {
	a.CredentialAccepted = true
	return a
}

// CredentialRejected forces the operator to supply a key again.
type CredentialRejected struct{}

func (CredentialRejected) apply(a App) App {
	a.CredentialAccepted = false
	return a
}

// Draft captures the current form as a preset draft named name.
func (a App) Draft(name string) presets.Draft {
	var tmpl *string
	if a.TemplateID != "" {
		id := a.TemplateID
		tmpl = &id
	}
	values := make(map[string]string, len(a.Values))
	for k, v := range a.Values {
		values[k] = v
	}
	brand := a.Options.Brand
	size := a.Options.LogoSize
	return presets.Draft{
		Name:        name,
		TemplateID:  tmpl,
		FormValues:  values,
		AspectRatio: a.Options.AspectRatio,
		BgTheme:     a.Options.Theme,
		BgOpacity:   a.Options.BgOpacity,
		BrandColors: &brand,
		LogoSize:    &size,
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
