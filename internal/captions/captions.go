// Package captions writes Instagram captions through a text model.
package captions

import (
	"context"
	"fmt"
	"strings"

	"postcraft/internal/logging"
)

// Separator splits the versions in a model reply.
const Separator = "|||"

// MaxVersions is the number of captions kept from a reply.
const MaxVersions = 2

// TextGenerator produces text for a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Prompt builds the caption request for brand and keywords.
func Prompt(brand, keywords string) string {
	tag := "#Studio"
	if f := strings.Fields(brand); len(f) > 0 {
		tag = "#" + f[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Act as a social media manager for %s.\n", brand)
	fmt.Fprintf(&b, "Write %d distinct versions of an Instagram caption based on these keywords: %q.\n\n", MaxVersions, keywords)
	b.WriteString("Guidelines:\n")
	b.WriteString("1. Tone: Energetic, Fun, Encouraging, Community-focused.\n")
	b.WriteString("2. Use emojis generously but tastefully.\n")
	fmt.Fprintf(&b, "3. **Include 5-7 relevant hashtags** at the bottom (e.g., %s, #TeamTraining, etc.).\n", tag)
	b.WriteString("4. **Use line breaks** to make the text easy to read.\n")
	b.WriteString("5. Keep the main text concise (under 300 characters approx).\n")
	fmt.Fprintf(&b, "6. Return ONLY the two captions separated by %q. Do not add \"Version 1\" labels.\n", Separator)
	return b.String()
}

// Parse splits a reply into at most MaxVersions trimmed, non-empty captions.
func Parse(text string) []string {
	var out []string
	for _, part := range strings.Split(text, Separator) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == MaxVersions {
			break
		}
	}
	return out
}

// Generate asks gen for captions. Blank keywords return nil without a call.
func Generate(ctx context.Context, gen TextGenerator, brand, keywords string) ([]string, error) {
	keywords = strings.TrimSpace(keywords)
	if keywords == "" {
		return nil, nil
	}

	text, err := gen.GenerateText(ctx, Prompt(brand, keywords))
	if err != nil {
		return nil, fmt.Errorf("failed to generate captions: %w", err)
	}

	captions := Parse(text)
	logging.GenerationDebug("captions: %d parsed from %d bytes", len(captions), len(text))
	return captions, nil
}
