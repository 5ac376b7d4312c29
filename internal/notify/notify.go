// Package notify delivers short-lived status notifications ("toasts").
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level is the notification severity.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Display durations.
const (
	SuccessDuration = 4 * time.Second
	ErrorDuration   = 5 * time.Second
)

// Notification is one toast.
type Notification struct {
	Level    Level         `json:"level"`
	Title    string        `json:"title,omitempty"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"-"`
	At       time.Time     `json:"at"`
}

// MarshalJSON reports the duration in milliseconds.
func (n Notification) MarshalJSON() ([]byte, error) {
	type plain Notification
	return json.Marshal(struct {
		plain
		DurationMS int64 `json:"durationMs"`
	}{plain(n), n.Duration.Milliseconds()})
}

// Sink receives notifications.
type Sink interface {
	Success(msg string)
	Error(title, msg string)
}

// Terminal renders notifications as bordered boxes.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	success lipgloss.Style
	failure lipgloss.Style
}

// NewTerminal returns a sink writing to w. Color is used only when w is a
// terminal.
func NewTerminal(w io.Writer) *Terminal {
	r := lipgloss.NewRenderer(w)
	base := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Foreground(lipgloss.Color("#FFFFFF")).
		Padding(0, 1)
	return &Terminal{
		out: w,
		success: base.
			Background(lipgloss.Color("#1A0F3F")).
			BorderForeground(lipgloss.Color("#EE3124")),
		failure: base.
			Background(lipgloss.Color("#7F1D1D")).
			BorderForeground(lipgloss.Color("#DC2626")),
	}
}

// Success implements Sink.
func (t *Terminal) Success(msg string) {
	t.print(t.success.Render("✔ " + msg))
}

// Error implements Sink.
func (t *Terminal) Error(title, msg string) {
	text := "⚠ " + msg
	if title != "" {
		text = title + "\n" + msg
	}
	t.print(t.failure.Render(text))
}

func (t *Terminal) print(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, s)
}

// Recorder keeps notifications in memory, for HTTP responses and tests.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
	now   func() time.Time
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Success implements Sink.
func (r *Recorder) Success(msg string) {
	r.add(Notification{Level: LevelSuccess, Message: msg, Duration: SuccessDuration})
}

// Error implements Sink.
func (r *Recorder) Error(title, msg string) {
	r.add(Notification{Level: LevelError, Title: title, Message: msg, Duration: ErrorDuration})
}

func (r *Recorder) add(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.At = r.now()
	r.items = append(r.items, n)
}

// All returns every recorded notification.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Drain returns and forgets every recorded notification.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	return out
}

// Tee fans notifications out to several sinks.
type Tee []Sink

// Success implements Sink.
func (t Tee) Success(msg string) {
	for _, s := range t {
		s.Success(msg)
	}
}

// Error implements Sink.
func (t Tee) Error(title, msg string) {
	for _, s := range t {
		s.Error(title, msg)
	}
}

// Discard drops every notification.
var Discard Sink = Tee(nil)

type contextKey struct{}

// NewContext returns a context whose notifications also go to s.
func NewContext(ctx context.Context, s Sink) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns fallback plus any sink stored in ctx.
func FromContext(ctx context.Context, fallback Sink) Sink {
	s, ok := ctx.Value(contextKey{}).(Sink)
	if !ok {
		return fallback
	}
	if fallback == nil {
		return s
	}
	return Tee{fallback, s}
}
