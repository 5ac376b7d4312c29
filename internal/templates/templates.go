// Package templates holds the graphic templates an operator can fill in.
//
// The built-in table covers the four studio post categories. A YAML file can
// add templates or replace built-ins by id; see Registry.
package templates

import "strings"

// FieldKind is the input widget a field is rendered with.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldDate     FieldKind = "date"
)

// Field is one form input of a template.
type Field struct {
	ID          string    `yaml:"id" json:"id"`
	Label       string    `yaml:"label" json:"label"`
	Kind        FieldKind `yaml:"kind" json:"type"`
	Placeholder string    `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
}

// CleanLabel returns the label up to the first "(", trimmed. Labels carry a
// translated hint in parentheses that is not sent to the model.
func (f Field) CleanLabel() string {
	label := f.Label
	if i := strings.Index(label, "("); i >= 0 {
		label = label[:i]
	}
	return strings.TrimSpace(label)
}

// Template describes one post category.
type Template struct {
	ID          string  `yaml:"id" json:"id"`
	Title       string  `yaml:"title" json:"title"`
	Subtitle    string  `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Icon        string  `yaml:"icon,omitempty" json:"icon,omitempty"`
	Color       string  `yaml:"color,omitempty" json:"color,omitempty"`
	Fields      []Field `yaml:"fields" json:"fields"`
	BasePrompt  string  `yaml:"base_prompt" json:"basePrompt"`
}

// Field returns the field with id.
func (t Template) Field(id string) (Field, bool) {
	for _, f := range t.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Label returns the clean label for a field id, or the id itself when the
// template has no such field.
func (t Template) Label(id string) string {
	if f, ok := t.Field(id); ok {
		return f.CleanLabel()
	}
	return id
}

// Well-known template ids.
const (
	StudioOps = "studio-ops"
	Events    = "events"
	Calendar  = "calendar"
	Guide     = "guide"
)

// Builtin returns a fresh copy of the built-in template table.
func Builtin() []Template {
	out := make([]Template, len(builtin))
	for i, t := range builtin {
		t.Fields = append([]Field(nil), t.Fields...)
		out[i] = t
	}
	return out
}

var builtin = []Template{
	{
		ID:          StudioOps,
		Title:       "Studio Operations",
		Subtitle:    "스튜디오 운영 및 중요 공지",
		Description: "휴무일, 단축 운영, 정책 변경 등 공식적이고 시급한 정보",
		Icon:        "fa-bullhorn",
		Color:       "text-red-500",
		Fields: []Field{
			{ID: "mainTitle", Label: "Main Title (주제)", Placeholder: "e.g., 12월 25일 휴무", Kind: FieldText},
			{ID: "details", Label: "Details (세부 정보)", Placeholder: "e.g., 2024.12.25 All Classes Cancelled", Kind: FieldTextarea},
			{ID: "footer", Label: "Footer (문의)", Placeholder: "e.g., Please contact us", Kind: FieldText},
		},
		BasePrompt: `**Category: Studio Operations & Notices**
**Style:** Official, Urgent, Professional, F45 Tone. **NO NEON EFFECTS.**
**Essential Visual Elements:**
1.  **Signature Header:** A **RED RECTANGULAR BOX** in the top right or center containing the Main Title.
2.  **Background:** Clean, matte finish.
3.  **Typography:** Big, bold, authoritative fonts.`,
	},
	{
		ID:          Events,
		Title:       "Events & Promotions",
		Subtitle:    "이벤트 및 프로모션",
		Description: "챌린지, 럭키드로우, 회원권 행사 등 화려한 비주얼",
		Icon:        "fa-gift",
		Color:       "text-yellow-400",
		Fields: []Field{
			{ID: "title", Label: "Event Title (타이틀)", Placeholder: "e.g., LUCKY DRAW", Kind: FieldText},
			{ID: "info", Label: "Period & Prizes (기간/상품)", Placeholder: "e.g., 1등: 애플워치, 기간: 3월 한달간", Kind: FieldTextarea},
			{ID: "cta", Label: "CTA Button Text", Placeholder: "e.g., Register Now", Kind: FieldText},
		},
		BasePrompt: `**Category: Events & Promotions**
**Style:** Festive, Energetic, High-End 3D, Vibrant. **NO NEON GLOWS (unless specified for icon).**
**Essential Visual Elements:**
1.  **Key Visual:** High-quality **3D OBJECT** in the center (e.g., Gift Box, Dumbbell, Trophy).
2.  **Effects:** **Spotlights**, **Confetti**, Light flares (clean lighting, not neon).
3.  **Title:** 3D or Gradient text, very bold and catchy.`,
	},
	{
		ID:          Calendar,
		Title:       "Monthly Calendar",
		Subtitle:    "월간 캘린더",
		Description: "월별 스케줄, 주요 일정 안내 (모던 그리드 스타일)",
		Icon:        "fa-calendar-alt",
		Color:       "text-cyan-400",
		Fields: []Field{
			{ID: "year", Label: "Year (년도)", Placeholder: "e.g., 2025", Kind: FieldText},
			{ID: "month", Label: "Month (월)", Placeholder: "e.g., 5", Kind: FieldText},
			{ID: "events", Label: "Key Dates (주요 일정)", Placeholder: "e.g., 5th: Rest, 14th: Valentine Event", Kind: FieldTextarea},
		},
		BasePrompt: `**Category: Monthly Calendar**
**Style:** Futuristic, Clean, Modern. **NO NEON TUBES.**
**Essential Visual Elements:**
1.  **Grid:** **Clean, Thin White Lines** for the calendar grid.
2.  **Header:** Huge, bold English month/year (derived from inputs) at the top.
3.  **Icons:** Minimalist line-art icons placed in the grid cells for special dates.
4.  **Background:** Large, faint F45 Logo watermark behind the grid.
5.  **Colors:** Cool Blue/White for weekdays, Red for holidays/events.`,
	},
	{
		ID:          Guide,
		Title:       "User Guide",
		Subtitle:    "이용 가이드 및 브랜드 소개",
		Description: "앱 다운로드, 운동 소개 등 카드 뉴스 형태",
		Icon:        "fa-info-circle",
		Color:       "text-white",
		Fields: []Field{
			{ID: "title", Label: "Guide Title (제목)", Placeholder: "e.g., F45 체험 신청 방법", Kind: FieldText},
			{ID: "steps", Label: "Steps/Content (내용)", Placeholder: "e.g., Step 1: Download App, Step 2: Sign Up", Kind: FieldTextarea},
		},
		BasePrompt: `**Category: User Guides & Info**
**Style:** Clean, UI/UX focus, Friendly. **NO NEON.**
**Essential Visual Elements:**
1.  **Container:** **White Rounded Rectangular Card** placed on a deep navy background.
2.  **Indicators:** Labels like "STEP 1", "STEP 2" clearly visible.
3.  **Visuals:** Vector icons (Heart, Muscle) or App Mockups illustrating the steps.
4.  **Layout:** Organized top-down or side-by-side within the card.`,
	},
}
