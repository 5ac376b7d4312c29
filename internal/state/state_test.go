package state

import (
	"testing"

	"postcraft/internal/presets"
	"postcraft/internal/prompt"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestInitial(t *testing.T) {
	a := Initial(2)
	assert.Equal(t, 2, a.VariationCount)
	assert.Equal(t, prompt.DefaultOptions(), a.Options)
	assert.Empty(t, a.TemplateID)
	assert.NotNil(t, a.Values)

	assert.Equal(t, MaxVariations, Initial(10).VariationCount)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	before := Reduce(Initial(2), SetField{ID: "title", Value: "A"})

	want := App{
		Values:         map[string]string{"title": "A"},
		Options:        prompt.DefaultOptions(),
		VariationCount: 2,
	}

	after := ReduceAll(before,
		SetField{ID: "title", Value: "B"},
		SetField{ID: "info", Value: "C"},
		SetAspectRatio{Ratio: prompt.Story},
		SetBgOpacity{Percent: 55},
		SetError{Message: "boom"},
		SelectTemplate{ID: "guide"},
	)

	if diff := cmp.Diff(want, before); diff != "" {
		t.Errorf("input state changed (-want +got):\n%s", diff)
	}
	assert.Equal(t, "guide", after.TemplateID)
	assert.Equal(t, prompt.Story, after.Options.AspectRatio)
}

func TestSelectTemplateResetsFormAndError(t *testing.T) {
	a := ReduceAll(Initial(2),
		SelectTemplate{ID: "events"},
		SetField{ID: "title", Value: "LUCKY DRAW"},
		SetError{Message: "failed"},
		SetTheme{Theme: prompt.ThemeLight},
		SelectTemplate{ID: "calendar"},
	)
	assert.Equal(t, "calendar", a.TemplateID)
	assert.Empty(t, a.Values)
	assert.Empty(t, a.Error)
	assert.Equal(t, prompt.ThemeLight, a.Options.Theme, "options survive a template switch")
}

func TestClamps(t *testing.T) {
	tests := []struct {
		name string
		act  Action
		get  func(App) int
		want int
	}{
		{"opacity high", SetBgOpacity{Percent: 150}, func(a App) int { return a.Options.BgOpacity }, 100},
		{"opacity low", SetBgOpacity{Percent: -5}, func(a App) int { return a.Options.BgOpacity }, 0},
		{"logo high", SetLogoSize{Percent: 500}, func(a App) int { return a.Options.LogoSize }, 200},
		{"logo low", SetLogoSize{Percent: 1}, func(a App) int { return a.Options.LogoSize }, 10},
		{"variations high", SetVariationCount{N: 9}, func(a App) int { return a.VariationCount }, 4},
		{"variations low", SetVariationCount{N: 0}, func(a App) int { return a.VariationCount }, 1},
		{"variations ok", SetVariationCount{N: 3}, func(a App) int { return a.VariationCount }, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.get(Reduce(Initial(2), tt.act)))
		})
	}
}

func TestInvalidEnumsAreIgnored(t *testing.T) {
	a := ReduceAll(Initial(2),
		SetAspectRatio{Ratio: "16:9"},
		SetTheme{Theme: "sepia"},
		SetLogoPosition{Position: "middle"},
	)
	assert.Equal(t, prompt.DefaultOptions(), a.Options)

	a = Reduce(a, SetLogoPosition{Position: prompt.Center})
	assert.Equal(t, prompt.Center, a.Options.LogoPosition)
}

func TestCredentialFlag(t *testing.T) {
	a := Reduce(Initial(2), CredentialAccepted{})
	assert.True(t, a.CredentialAccepted)
	a = Reduce(a, CredentialRejected{})
	assert.False(t, a.CredentialAccepted)
}

func TestErrorActions(t *testing.T) {
	a := Reduce(Initial(2), SetError{Message: "Quota exceeded"})
	assert.Equal(t, "Quota exceeded", a.Error)
	assert.Empty(t, Reduce(a, ClearError{}).Error)
}

func TestPromptsAndColors(t *testing.T) {
	colors := prompt.BrandColors{Primary: "#000000", Secondary: "#111111", TextColor: "#222222"}
	a := ReduceAll(Initial(2),
		SetBgPrompt{Prompt: "sunrise"},
		SetCustomIcon{Prompt: "rower"},
		SetBrandColors{Colors: colors},
	)
	assert.Equal(t, "sunrise", a.Options.BgPrompt)
	assert.Equal(t, "rower", a.Options.CustomIcon)
	assert.Equal(t, colors, a.Options.Brand)
}

func TestLoadPreset(t *testing.T) {
	tmpl := "events"
	size := 150
	colors := prompt.BrandColors{Primary: "#123456", Secondary: "#654321", TextColor: "#FFFFFF"}
	p := presets.Preset{
		ID:          "p1",
		Name:        "Lucky Draw",
		TemplateID:  &tmpl,
		FormValues:  map[string]string{"title": "LUCKY DRAW"},
		AspectRatio: prompt.Square,
		BgTheme:     prompt.ThemeVibrant,
		BgOpacity:   45,
		BrandColors: &colors,
		LogoSize:    &size,
	}

	a := Reduce(Initial(2), LoadPreset{Preset: p})
	assert.Equal(t, "events", a.TemplateID)
	assert.Equal(t, "LUCKY DRAW", a.Value("title"))
	assert.Equal(t, prompt.Square, a.Options.AspectRatio)
	assert.Equal(t, prompt.ThemeVibrant, a.Options.Theme)
	assert.Equal(t, 45, a.Options.BgOpacity)
	assert.Equal(t, colors, a.Options.Brand)
	assert.Equal(t, 150, a.Options.LogoSize)

	// The loaded map is a copy.
	p.FormValues["title"] = "changed"
	assert.Equal(t, "LUCKY DRAW", a.Value("title"))

	// Missing optional parts keep the current values.
	bare := presets.Preset{AspectRatio: prompt.Portrait, BgTheme: prompt.ThemeDark, BgOpacity: 20}
	b := Reduce(a, LoadPreset{Preset: bare})
	assert.Empty(t, b.TemplateID)
	assert.Equal(t, colors, b.Options.Brand)
	assert.Equal(t, 150, b.Options.LogoSize)
}

func TestDraftRoundTripsThroughLoadPreset(t *testing.T) {
	a := ReduceAll(Initial(2),
		SelectTemplate{ID: "guide"},
		SetField{ID: "title", Value: "How to join"},
		SetLogoSize{Percent: 80},
	)
	d := a.Draft("Join guide")
	assert.Equal(t, "Join guide", d.Name)
	assert.Equal(t, "guide", *d.TemplateID)

	p := presets.Preset{
		TemplateID:  d.TemplateID,
		FormValues:  d.FormValues,
		AspectRatio: d.AspectRatio,
		BgTheme:     d.BgTheme,
		BgOpacity:   d.BgOpacity,
		BrandColors: d.BrandColors,
		LogoSize:    d.LogoSize,
	}
	restored := Reduce(Initial(2), LoadPreset{Preset: p})
	assert.Equal(t, a.TemplateID, restored.TemplateID)
	assert.Equal(t, a.Values, restored.Values)
	assert.Equal(t, a.Options, restored.Options)
}

func TestReduceNilAction(t *testing.T) {
	a := Initial(2)
	assert.Equal(t, a, Reduce(a, nil))
}
