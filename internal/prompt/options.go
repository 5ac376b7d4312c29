package prompt

import (
	"slices"
	"strings"

	"postcraft/internal/faults"
)

// AspectRatio is the output canvas shape.
type AspectRatio string

const (
	Square    AspectRatio = "1:1"
	Portrait  AspectRatio = "3:4"
	Feed      AspectRatio = "4:5"
	Story     AspectRatio = "9:16"
	DefaultAR             = Portrait
)

// AspectRatios lists the supported ratios.
var AspectRatios = []AspectRatio{Square, Portrait, Feed, Story}

// Theme is the background theme.
type Theme string

const (
	ThemeDark    Theme = "dark"
	ThemeLight   Theme = "light"
	ThemeVibrant Theme = "vibrant"
)

// Themes lists the supported themes.
var Themes = []Theme{ThemeDark, ThemeLight, ThemeVibrant}

// LogoPosition is where the logo reference image is placed.
type LogoPosition string

const (
	TopLeft     LogoPosition = "top-left"
	TopRight    LogoPosition = "top-right"
	BottomLeft  LogoPosition = "bottom-left"
	BottomRight LogoPosition = "bottom-right"
	Center      LogoPosition = "center"
)

// LogoPositions lists the supported logo positions.
var LogoPositions = []LogoPosition{TopLeft, TopRight, BottomLeft, BottomRight, Center}

// Label renders the position for the prompt, e.g. "TOP RIGHT".
func (p LogoPosition) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(p), "-", " "))
}

// BrandColors are hex colors used in prompts.
type BrandColors struct {
	Primary   string `json:"primary" yaml:"primary"`
	Secondary string `json:"secondary" yaml:"secondary"`
	TextColor string `json:"textColor" yaml:"text_color"`
}

// DefaultBrandColors returns the studio defaults.
func DefaultBrandColors() BrandColors {
	return BrandColors{
		Primary:   "#EE3124",
		Secondary: "#211551",
		TextColor: "#FFFFFF",
	}
}

// Limits on numeric options.
const (
	MinOpacity  = 0
	MaxOpacity  = 100
	MinLogoSize = 10
	MaxLogoSize = 200

	DefaultOpacity  = 20
	DefaultLogoSize = 100
)

// Options are the non-field settings of a graphic.
type Options struct {
	AspectRatio  AspectRatio  `json:"aspectRatio"`
	Theme        Theme        `json:"bgTheme"`
	BgOpacity    int          `json:"bgOpacity"`
	Brand        BrandColors  `json:"brandColors"`
	LogoPosition LogoPosition `json:"logoPosition"`
	LogoSize     int          `json:"logoSize"`
	BgPrompt     string       `json:"bgPrompt,omitempty"`
	CustomIcon   string       `json:"customIconPrompt,omitempty"`
}

// DefaultOptions returns the options a fresh form starts with.
func DefaultOptions() Options {
	return Options{
		AspectRatio:  DefaultAR,
		Theme:        ThemeDark,
		BgOpacity:    DefaultOpacity,
		Brand:        DefaultBrandColors(),
		LogoPosition: TopRight,
		LogoSize:     DefaultLogoSize,
	}
}

// WithDefaults fills unset fields from DefaultOptions. BgOpacity is kept
// since zero is a valid opacity.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.AspectRatio == "" {
		o.AspectRatio = d.AspectRatio
	}
	if o.Theme == "" {
		o.Theme = d.Theme
	}
	if o.LogoPosition == "" {
		o.LogoPosition = d.LogoPosition
	}
	if o.LogoSize == 0 {
		o.LogoSize = d.LogoSize
	}
	if o.Brand.Primary == "" {
		o.Brand.Primary = d.Brand.Primary
	}
	if o.Brand.Secondary == "" {
		o.Brand.Secondary = d.Brand.Secondary
	}
	if o.Brand.TextColor == "" {
		o.Brand.TextColor = d.Brand.TextColor
	}
	return o
}

// Validate checks enumerations and numeric ranges.
func (o Options) Validate() error {
	if !slices.Contains(AspectRatios, o.AspectRatio) {
		return faults.Invalidf("invalid aspect ratio %q (valid: %v)", o.AspectRatio, AspectRatios)
	}
	if !slices.Contains(Themes, o.Theme) {
		return faults.Invalidf("invalid background theme %q (valid: %v)", o.Theme, Themes)
	}
	if !slices.Contains(LogoPositions, o.LogoPosition) {
		return faults.Invalidf("invalid logo position %q (valid: %v)", o.LogoPosition, LogoPositions)
	}
	if o.BgOpacity < MinOpacity || o.BgOpacity > MaxOpacity {
		return faults.Invalidf("invalid background opacity %d (valid: %d-%d)", o.BgOpacity, MinOpacity, MaxOpacity)
	}
	if o.LogoSize < MinLogoSize || o.LogoSize > MaxLogoSize {
		return faults.Invalidf("invalid logo size %d (valid: %d-%d)", o.LogoSize, MinLogoSize, MaxLogoSize)
	}
	return nil
}
