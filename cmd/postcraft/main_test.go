package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against a fresh file-backed workspace dir.
func execute(t *testing.T, ws string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("POSTCRAFT_STORAGE", "file")
	t.Setenv("POSTCRAFT_DB", filepath.Join(ws, "data"))
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("VITE_GEMINI_API_KEY", "")
	t.Setenv("VITE_API_KEY", "")
	t.Setenv("API_KEY", "")
	apiKey, configPath, verbose = "", "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"-w", ws}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCalendarMarkdown(t *testing.T) {
	out, err := execute(t, t.TempDir(), "calendar", "2025", "4", "--markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "| Sun | Mon | Tue | Wed | Thu | Fri | Sat |")
	assert.Contains(t, out, "|     |     |  1 |")
	assert.Contains(t, out, "  30 |")
}

func TestCalendarRejectsBadMonth(t *testing.T) {
	_, err := execute(t, t.TempDir(), "calendar", "2025", "13")
	assert.Error(t, err)
}

func TestTemplatesList(t *testing.T) {
	out, err := execute(t, t.TempDir(), "templates", "list")
	require.NoError(t, err)
	for _, id := range []string{"studio-ops", "events", "calendar", "guide"} {
		assert.Contains(t, out, id)
	}
}

func TestPreviewRaw(t *testing.T) {
	out, err := execute(t, t.TempDir(), "preview", "--raw", "-t", "events", "-f", "title=LUCKY DRAW")
	require.NoError(t, err)
	assert.Contains(t, out, "LUCKY DRAW")
}

func TestPresetsSaveAndList(t *testing.T) {
	ws := t.TempDir()
	_, err := execute(t, ws, "presets", "save", "Weekly recap")
	require.NoError(t, err)

	out, err := execute(t, ws, "presets", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Weekly recap")
}

func TestGalleryListEmpty(t *testing.T) {
	out, err := execute(t, t.TempDir(), "gallery", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Gallery is empty.")
}

func TestAuthSetKeyThenStatus(t *testing.T) {
	ws := t.TempDir()
	_, err := execute(t, ws, "auth", "set-key", "AIza-test")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(ws, ".postcraft", "credentials.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	out, err := execute(t, ws, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "credentials-file")
}

func TestInitConfigRefusesOverwrite(t *testing.T) {
	ws := t.TempDir()
	_, err := execute(t, ws, "init-config")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(ws, ".postcraft", "config.yaml"))

	_, err = execute(t, ws, "init-config")
	assert.Error(t, err)
}

func TestGenerateAddsToGalleryAndUsage(t *testing.T) {
	png := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"inlineData": map[string]any{"mimeType": "image/png", "data": png}}},
				},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 10, "candidatesTokenCount": 20},
		})
	}))
	defer ts.Close()
	t.Setenv("POSTCRAFT_GEMINI_BASE_URL", ts.URL+"/")

	ws := t.TempDir()
	outDir := filepath.Join(ws, "out")
	out, err := execute(t, ws, "--api-key", "test-key", "generate", "-t", "events", "-f", "title=LUCKY DRAW", "-n", "2", "-o", outDir)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "  events  "))

	files, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	data, err := os.ReadFile(filepath.Join(outDir, files[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "fake-png-bytes", string(data))

	out, err = execute(t, ws, "usage", "--json")
	require.NoError(t, err)
	var stats struct {
		Total struct {
			Calls       int64 `json:"calls"`
			Succeeded   int64 `json:"succeeded"`
			InputTokens int64 `json:"input_tokens"`
		} `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, int64(1), stats.Total.Calls)
	assert.Equal(t, int64(2), stats.Total.Succeeded)
	assert.Equal(t, int64(20), stats.Total.InputTokens)
}
