// Package prompt assembles the text and reference images sent to the image
// model for one graphic.
//
// Only text the operator supplied is rendered: empty fields are left out, and
// a template without a CTA value tells the model to draw no buttons at all.
package prompt

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"postcraft/internal/calendar"
	"postcraft/internal/imaging"
	"postcraft/internal/templates"

	"golang.org/x/text/unicode/norm"
)

// lightTitleColor is the title color on light and vibrant themes.
const lightTitleColor = "#221551"

// Studio identifies whose graphic is being made.
type Studio struct {
	Name string // e.g. "F45 Training"
	Vibe string // closing line, e.g. "F45 Premium community."
}

// DefaultStudio returns the stock studio identity.
func DefaultStudio() Studio {
	return Studio{Name: "F45 Training", Vibe: "F45 Premium community."}
}

// Request is everything needed to assemble one prompt.
type Request struct {
	Template   templates.Template
	Values     map[string]string
	Options    Options
	Studio     Studio
	Logo       *imaging.Inline
	Background *imaging.Inline
}

// Assembled is a prompt ready to send. Images are attached before the text,
// logo first, and the text refers to them by 1-based position.
type Assembled struct {
	Text   string
	Images []imaging.Inline
}

// FieldLine is one rendered form value.
type FieldLine struct {
	Label string
	Value string
}

type calendarBlock struct {
	Year, Month int
	Grid        string
}

type referenceLine struct {
	Index int
}

// view is the data the prompt template renders.
type view struct {
	Studio     Studio
	Template   templates.Template
	BasePrompt string
	Calendar   *calendarBlock
	CTA        string
	Opts       Options
	TitleColor string
	ThemeLine  string
	Lines      []FieldLine
	Logo       *referenceLine
	Background *referenceLine
	BgPrompt   string
	CustomIcon string
}

const fence = "```"

var promptTmpl = template.Must(template.New("prompt").Parse(
	`Create a high-quality Instagram notice image for the {{.Studio.Name}} studio.

**STRICT TEXT RENDERING PROTOCOL:**
1. **ONLY** render provided text.
2. **DO NOT** add extra text.
3. If value is empty, do not render.

**Category:** {{.Template.Title}}
{{.BasePrompt}}
{{- with .Calendar}}

**CRITICAL INSTRUCTION - CALENDAR GRID ACCURACY:**
You MUST render the calendar grid EXACTLY as shown below:
` + fence + `
Year: {{.Year}}, Month: {{.Month}}
{{.Grid}}` + fence + `
{{- end}}

{{if .CTA -}}
**CTA BUTTON (Important):**
- Text: "{{.CTA}}"
- Shape: Solid Rectangle at the bottom.
- Color: **{{.Opts.Brand.Primary}}**.
- Style: **FLAT & SOLID**.
{{- else -}}
**CTA / BUTTONS:** DO NOT render any buttons.
{{- end}}

**Theme & Typography:**
- Background: {{.ThemeLine}}
- Title Color: {{.TitleColor}}
- English: MUST use **'Gotham'** (Bold).
- Korean: MUST use **'Noto Sans KR'**.

**Brand Colors:**
- Primary: {{.Opts.Brand.Primary}}
- Secondary: {{.Opts.Brand.Secondary}}
- Text: {{.Opts.Brand.TextColor}}

**CONTENT TO RENDER:**
{{range .Lines}}{{.Label}}: "{{.Value}}"
{{end}}
{{- with .Logo}}
**Reference Image {{.Index}} (LOGO):** Place strictly in **{{$.Opts.LogoPosition.Label}}**. Scale to **{{$.Opts.LogoSize}}%** of default size. Keep original colors.
{{- end}}
{{- with .Background}}
**Reference Image {{.Index}} (BACKGROUND):** Apply at **{{$.Opts.BgOpacity}}% opacity** over solid {{$.Opts.Theme}} color.
{{- else}}{{with .BgPrompt}}
**BACKGROUND GENERATION:** Depict: "{{.}}". Visible at **{{$.Opts.BgOpacity}}% opacity** under text.
{{- end}}{{end}}
{{- with .CustomIcon}}
**Central Icon:** Custom **NEON STYLE** icon of: "{{.}}".
{{- end}}
**Aspect Ratio:** {{.Opts.AspectRatio}}
**Vibe:** {{.Studio.Vibe}}
`))

// Assemble builds the prompt for req. Options are defaulted and validated.
func Assemble(req Request) (Assembled, error) {
	opts := req.Options.WithDefaults()
	if err := opts.Validate(); err != nil {
		return Assembled{}, err
	}
	studio := req.Studio
	if studio.Name == "" || studio.Vibe == "" {
		d := DefaultStudio()
		if studio.Name == "" {
			studio.Name = d.Name
		}
		if studio.Vibe == "" {
			studio.Vibe = d.Vibe
		}
	}

	v := view{
		Studio:     studio,
		Template:   req.Template,
		BasePrompt: strings.TrimSpace(req.Template.BasePrompt),
		Opts:       opts,
		Lines:      Lines(req.Template, req.Values),
		BgPrompt:   clean(req.Options.BgPrompt),
		CustomIcon: clean(req.Options.CustomIcon),
		CTA:        clean(req.Values["cta"]),
		TitleColor: lightTitleColor,
		ThemeLine:  "General Theme: LIGHT.",
	}
	if opts.Theme == ThemeDark {
		v.TitleColor = opts.Brand.TextColor
		v.ThemeLine = "General Theme: DARK."
	}
	if req.Template.ID == templates.Calendar {
		v.Calendar = calendarFor(req.Values)
	}

	var images []imaging.Inline
	if req.Logo != nil {
		images = append(images, *req.Logo)
		v.Logo = &referenceLine{Index: len(images)}
	}
	if req.Background != nil {
		images = append(images, *req.Background)
		v.Background = &referenceLine{Index: len(images)}
	}

	var b strings.Builder
	if err := promptTmpl.Execute(&b, v); err != nil {
		return Assembled{}, fmt.Errorf("failed to render prompt: %w", err)
	}
	return Assembled{Text: b.String(), Images: images}, nil
}

// Lines returns the non-empty form values with their clean labels: template
// fields in template order, then unknown keys sorted.
func Lines(t templates.Template, values map[string]string) []FieldLine {
	var lines []FieldLine
	used := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		used[f.ID] = true
		if v := clean(values[f.ID]); v != "" {
			lines = append(lines, FieldLine{Label: f.CleanLabel(), Value: v})
		}
	}

	var extra []string
	for k := range values {
		if !used[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		if v := clean(values[k]); v != "" {
			lines = append(lines, FieldLine{Label: k, Value: v})
		}
	}
	return lines
}

// calendarFor returns the grid block when year and month parse and the month
// is in range.
func calendarFor(values map[string]string) *calendarBlock {
	year, month, ok := calendar.ParseInput(values["year"], values["month"])
	if !ok || month < 1 || month > 12 {
		return nil
	}
	return &calendarBlock{Year: year, Month: month, Grid: calendar.Format(year, month)}
}

func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
