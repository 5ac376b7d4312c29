package faults

import (
	"net/http"
	"strings"
	"unicode/utf8"
)

// Report is the user-facing description of a failure.
type Report struct {
	Kind     Kind   `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Solution string `json:"solution"`
}

// maxUnknownMessage bounds the raw message shown for unclassified failures.
const maxUnknownMessage = 100

var reports = map[Kind]Report{
	KindAPIKey: {
		Kind:     KindAPIKey,
		Title:    "🔑 Invalid API Key",
		Message:  "Your Google Gemini API key is invalid or expired.",
		Solution: "Please check your API key and try connecting again.",
	},
	KindQuota: {
		Kind:     KindQuota,
		Title:    "📊 Quota Exceeded",
		Message:  "You've reached your API quota limit.",
		Solution: "Check your Google Cloud billing or wait for quota reset.",
	},
	KindNetwork: {
		Kind:     KindNetwork,
		Title:    "🌐 Network Error",
		Message:  "Unable to connect to the API.",
		Solution: "Check your internet connection and try again.",
	},
	KindInvalidInput: {
		Kind:     KindInvalidInput,
		Title:    "⚠️ Invalid Input",
		Message:  "Some required fields are missing or invalid.",
		Solution: "Please fill in all required fields and try again.",
	},
	KindGeneration: {
		Kind:     KindGeneration,
		Title:    "🚫 Generation Failed",
		Message:  "The AI couldn't generate the image.",
		Solution: "Try adjusting your prompt or using different content.",
	},
	KindEntityNotFound: {
		Kind:     KindEntityNotFound,
		Title:    "🔑 Project Not Found",
		Message:  "The model or project for this API key was not found.",
		Solution: "Select an API key from a project with billing enabled and try again.",
	},
}

// textRules are checked in order against the error message when the error
// carries no Kind.
var textRules = []struct {
	kind    Kind
	needles []string
}{
	{KindAPIKey, []string{"API_KEY_INVALID", "API key not valid"}},
	{KindQuota, []string{"quota", "RESOURCE_EXHAUSTED"}},
	{KindNetwork, []string{"network", "Failed to fetch"}},
	{KindInvalidInput, []string{"invalid", "missing"}},
	{KindGeneration, []string{"generation", "SAFETY"}},
}

// Classify maps err to a Report. A nil error yields the unknown report.
func Classify(err error) Report {
	msg := "Unknown error"
	if err != nil {
		if m := err.Error(); m != "" {
			msg = m
		}
	}

	kind := KindOf(err)
	if kind == KindBatchFailed {
		if m := messageOf(err); m != "" {
			msg = m
		}
		return unknownReport(KindBatchFailed, msg)
	}
	if kind == "" && strings.Contains(msg, entityNotFoundText) {
		kind = KindEntityNotFound
	}
	if kind == "" {
		for _, rule := range textRules {
			if containsAny(msg, rule.needles) {
				kind = rule.kind
				break
			}
		}
	}

	if r, ok := reports[kind]; ok {
		return r
	}
	return unknownReport(KindUnknown, msg)
}

func unknownReport(kind Kind, msg string) Report {
	return Report{
		Kind:     kind,
		Title:    "❌ Error",
		Message:  truncate(msg, maxUnknownMessage),
		Solution: "Please try again or contact support if the issue persists.",
	}
}

// ResetsCredential reports whether a failure of this kind must force the
// operator to supply a key again.
func (r Report) ResetsCredential() bool {
	return r.Kind == KindAPIKey
}

// HTTPStatus maps a kind to the status code the HTTP API answers with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindAPIKey:
		return http.StatusUnauthorized
	case KindQuota:
		return http.StatusTooManyRequests
	case KindNetwork, KindGeneration, KindEntityNotFound, KindBatchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
