// Package credentials resolves the Gemini API key and tracks whether the
// current key has been accepted.
package credentials

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"postcraft/internal/faults"
	"postcraft/internal/logging"

	"golang.org/x/term"
)

// Source names where a key came from.
type Source string

const (
	SourceNone     Source = ""
	SourceExplicit Source = "explicit"
	SourceFile     Source = "credentials-file"
	SourceConfig   Source = "config"
)

// EnvVars are checked in order after the explicit key, credentials file and
// config.
var EnvVars = []string{"GEMINI_API_KEY", "VITE_GEMINI_API_KEY", "VITE_API_KEY", "API_KEY"}

// DefaultPath returns the credentials file location for a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, ".postcraft", "credentials.json")
}

// Resolver looks a key up in order: explicit value, credentials file, config
// value, then EnvVars.
type Resolver struct {
	Explicit  string
	FilePath  string
	ConfigKey string
	Getenv    func(string) string
}

// Resolve returns the first non-empty key. A missing key is a KindAPIKey
// fault.
func (r Resolver) Resolve() (string, Source, error) {
	if k := strings.TrimSpace(r.Explicit); k != "" {
		return k, SourceExplicit, nil
	}
	if r.FilePath != "" {
		k, err := LoadKey(r.FilePath)
		if err != nil {
			logging.Get(logging.CategoryCredentials).Warn("ignoring unreadable credentials file %s: %v", r.FilePath, err)
		} else if k != "" {
			return k, SourceFile, nil
		}
	}
	if k := strings.TrimSpace(r.ConfigKey); k != "" {
		return k, SourceConfig, nil
	}
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, name := range EnvVars {
		if k := strings.TrimSpace(getenv(name)); k != "" {
			return k, Source("env:" + name), nil
		}
	}
	return "", SourceNone, faults.New(faults.KindAPIKey, "no Gemini API key configured")
}

type keyFile struct {
	APIKey  string    `json:"api_key"`
	SavedAt time.Time `json:"saved_at"`
}

// LoadKey reads the key from a credentials file. A missing file yields "".
func LoadKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var f keyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return strings.TrimSpace(f.APIKey), nil
}

// SaveKey writes key to a credentials file readable only by the owner.
func SaveKey(path, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return faults.Invalidf("API key is missing")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	data, err := json.MarshalIndent(keyFile{APIKey: key, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	logging.Credentials("saved API key to %s", path)
	return nil
}

// Status is the externally visible credential state.
type Status struct {
	Accepted bool   `json:"accepted"`
	Source   Source `json:"source,omitempty"`
}

// Session holds the key in use and the accepted flag. Safe for concurrent
// use.
type Session struct {
	mu       sync.Mutex
	resolver Resolver
	key      string
	source   Source
	accepted bool
	rejected string
}

// NewSession creates a session and tries to resolve a key immediately.
func NewSession(r Resolver) *Session {
	s := &Session{resolver: r}
	if _, err := s.Key(); err != nil {
		logging.Credentials("no API key yet: %v", err)
	}
	return s
}

// Key returns the current key, resolving it if none is held.
func (s *Session) Key() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accepted && s.key != "" {
		return s.key, nil
	}
	key, src, err := s.resolver.Resolve()
	if err != nil {
		s.accepted = false
		return "", err
	}
	if key == s.rejected {
		s.accepted = false
		return "", faults.New(faults.KindAPIKey, "API key was rejected; supply a new key")
	}
	if key != s.key || src != s.source {
		logging.Credentials("using API key from %s", src)
	}
	s.key, s.source, s.accepted = key, src, true
	return key, nil
}

// Set installs an explicitly supplied key. persistPath, if non-empty, also
// saves it there.
func (s *Session) Set(key, persistPath string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return faults.Invalidf("API key is missing")
	}
	if persistPath != "" {
		if err := SaveKey(persistPath, key); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver.Explicit = key
	s.key, s.source, s.accepted = key, SourceExplicit, true
	s.rejected = ""
	return nil
}

// Observe updates the accepted flag from a classified failure.
func (s *Session) Observe(r faults.Report) {
	if !r.ResetsCredential() {
		return
	}
	s.Reject()
}

// Reject clears the accepted flag. The rejected key is refused until a
// different key is set or resolved.
func (s *Session) Reject() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accepted {
		logging.Get(logging.CategoryCredentials).Warn("API key from %s rejected; a new key is required", s.source)
	}
	s.accepted = false
	s.rejected = s.key
	if s.source == SourceExplicit {
		s.resolver.Explicit = ""
	}
}

// Accepted reports whether a usable key is held.
func (s *Session) Accepted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// Status returns the accepted flag and key source.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.accepted {
		return Status{}
	}
	return Status{Accepted: true, Source: s.source}
}

// ReadKey prompts on out and reads a key from in. Terminal input is not
// echoed; piped input is read as one line.
func ReadKey(in *os.File, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
