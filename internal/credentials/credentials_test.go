package credentials

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"postcraft/internal/faults"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestResolveOrder(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "credentials.json")
	require.NoError(t, SaveKey(file, "from-file"))

	allEnv := env(map[string]string{
		"GEMINI_API_KEY":      "from-gemini-env",
		"VITE_GEMINI_API_KEY": "from-vite-env",
		"API_KEY":             "from-api-env",
	})

	tests := []struct {
		name    string
		r       Resolver
		wantKey string
		wantSrc Source
	}{
		{"explicit wins", Resolver{Explicit: " typed ", FilePath: file, ConfigKey: "cfg", Getenv: allEnv}, "typed", SourceExplicit},
		{"file next", Resolver{FilePath: file, ConfigKey: "cfg", Getenv: allEnv}, "from-file", SourceFile},
		{"config next", Resolver{FilePath: filepath.Join(dir, "none.json"), ConfigKey: "cfg", Getenv: allEnv}, "cfg", SourceConfig},
		{"gemini env", Resolver{Getenv: allEnv}, "from-gemini-env", "env:GEMINI_API_KEY"},
		{"vite env", Resolver{Getenv: env(map[string]string{"VITE_GEMINI_API_KEY": "v", "API_KEY": "a"})}, "v", "env:VITE_GEMINI_API_KEY"},
		{"vite api env", Resolver{Getenv: env(map[string]string{"VITE_API_KEY": "va", "API_KEY": "a"})}, "va", "env:VITE_API_KEY"},
		{"api env", Resolver{Getenv: env(map[string]string{"API_KEY": "a"})}, "a", "env:API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, src, err := tt.r.Resolve()
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantSrc, src)
		})
	}
}

func TestResolveMissingIsAPIKeyFault(t *testing.T) {
	_, src, err := Resolver{Getenv: env(nil)}.Resolve()
	require.Error(t, err)
	assert.Equal(t, SourceNone, src)
	assert.True(t, faults.Is(err, faults.KindAPIKey))
}

func TestResolveSkipsCorruptFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(file, []byte("{"), 0600))

	key, src, err := Resolver{FilePath: file, ConfigKey: "cfg"}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "cfg", key)
	assert.Equal(t, SourceConfig, src)
}

func TestSaveKeyPermissions(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "credentials.json")
	require.NoError(t, SaveKey(file, "secret"))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := LoadKey(file)
	require.NoError(t, err)
	assert.Equal(t, "secret", got)

	assert.Error(t, SaveKey(file, "  "))
}

func TestSessionAcceptAndReject(t *testing.T) {
	s := NewSession(Resolver{ConfigKey: "cfg-key", Getenv: env(nil)})
	assert.True(t, s.Accepted())
	assert.Equal(t, Status{Accepted: true, Source: SourceConfig}, s.Status())

	// Non-key failures leave the flag alone.
	s.Observe(faults.Classify(faults.New(faults.KindQuota, "")))
	assert.True(t, s.Accepted())

	s.Observe(faults.Classify(faults.New(faults.KindAPIKey, "API key not valid")))
	assert.False(t, s.Accepted())
	assert.Equal(t, Status{}, s.Status())

	// The same key is refused until a new one arrives.
	_, err := s.Key()
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindAPIKey))

	require.NoError(t, s.Set("new-key", ""))
	key, err := s.Key()
	require.NoError(t, err)
	assert.Equal(t, "new-key", key)
	assert.Equal(t, SourceExplicit, s.Status().Source)
}

func TestSessionWithoutKey(t *testing.T) {
	s := NewSession(Resolver{Getenv: env(nil)})
	assert.False(t, s.Accepted())
	_, err := s.Key()
	assert.Error(t, err)

	assert.Error(t, s.Set(" ", ""))
}

func TestSessionSetPersists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "credentials.json")
	s := NewSession(Resolver{Getenv: env(nil)})
	require.NoError(t, s.Set("persisted", file))

	got, err := LoadKey(file)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got)

	fresh := NewSession(Resolver{FilePath: file, Getenv: env(nil)})
	assert.Equal(t, Status{Accepted: true, Source: SourceFile}, fresh.Status())
}

func TestReadKeyFromPipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString("piped-key\n")
	require.NoError(t, err)
	w.Close()
	defer r.Close()

	key, err := ReadKey(r, io.Discard, "Gemini API key: ")
	require.NoError(t, err)
	assert.Equal(t, "piped-key", key)
}
