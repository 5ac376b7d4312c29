package faults

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := Wrap(KindEntityNotFound, "model lookup", errors.New("404"))
	wrapped := fmt.Errorf("variation 2: %w", base)

	assert.Equal(t, KindEntityNotFound, KindOf(wrapped))
	assert.True(t, IsEntityNotFound(wrapped))
	assert.False(t, Is(wrapped, KindQuota))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestIsEntityNotFoundMessageFallback(t *testing.T) {
	assert.True(t, IsEntityNotFound(errors.New("Requested entity was not found.")))
	assert.False(t, IsEntityNotFound(errors.New("entity missing")))
	assert.False(t, IsEntityNotFound(nil))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "no template selected", New(KindInvalidInput, "no template selected").Error())
	assert.Equal(t, "call failed: boom", Wrap(KindNetwork, "call failed", errors.New("boom")).Error())
	assert.Equal(t, "boom", Wrap(KindNetwork, "", errors.New("boom")).Error())
	assert.Equal(t, "QUOTA", (&Error{Kind: KindQuota}).Error())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"structured quota", New(KindQuota, "slow down"), KindQuota},
		{"structured beats text", New(KindNetwork, "API key not valid"), KindNetwork},
		{"api key invalid", errors.New("400 API_KEY_INVALID"), KindAPIKey},
		{"api key not valid", errors.New("API key not valid. Please pass a valid API key."), KindAPIKey},
		{"quota text", errors.New("exceeded your current quota"), KindQuota},
		{"resource exhausted", errors.New("RESOURCE_EXHAUSTED"), KindQuota},
		{"network", errors.New("network is unreachable"), KindNetwork},
		{"failed to fetch", errors.New("TypeError: Failed to fetch"), KindNetwork},
		{"invalid", errors.New("invalid argument"), KindInvalidInput},
		{"missing", errors.New("missing field"), KindInvalidInput},
		{"generation", errors.New("image generation refused"), KindGeneration},
		{"safety", errors.New("finish reason SAFETY"), KindGeneration},
		{"entity not found text", errors.New("Requested entity was not found."), KindEntityNotFound},
		{"unknown", errors.New("teapot"), KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.err)
			assert.Equal(t, tt.want, r.Kind)
			assert.NotEmpty(t, r.Title)
			assert.NotEmpty(t, r.Solution)
		})
	}
}

func TestClassifyOrderMatchesPrecedence(t *testing.T) {
	// quota is checked before network and invalid.
	r := Classify(errors.New("quota: invalid network"))
	assert.Equal(t, KindQuota, r.Kind)
}

func TestClassifyUnknownTruncates(t *testing.T) {
	long := strings.Repeat("é", 150)
	r := Classify(errors.New(long))
	assert.Equal(t, KindUnknown, r.Kind)
	assert.Equal(t, strings.Repeat("é", 100), r.Message)
	assert.Equal(t, "❌ Error", r.Title)

	r = Classify(nil)
	assert.Equal(t, "Unknown error", r.Message)
}

func TestClassifyBatchFailedKeepsMessage(t *testing.T) {
	msg := "Generation failed. Please check your API key / project billing."
	err := Wrap(KindBatchFailed, msg, errors.New("API key not valid. Please pass a valid API key."))

	r := Classify(err)
	assert.Equal(t, KindBatchFailed, r.Kind)
	assert.Equal(t, msg, r.Message)
	assert.Equal(t, "❌ Error", r.Title)
	assert.False(t, r.ResetsCredential())
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(r.Kind))
}

func TestResetsCredential(t *testing.T) {
	assert.True(t, Classify(New(KindAPIKey, "")).ResetsCredential())
	assert.False(t, Classify(New(KindQuota, "")).ResetsCredential())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindInvalidInput))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(KindAPIKey))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(KindQuota))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(KindEntityNotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindUnknown))
}
