// Package env reads configuration from the process environment
// and optional .env files, and maps it to typed Settings.
package env

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Source resolves configuration keys. An empty value means unset.
type Source interface {
	Get(key string) string
}

// Loader is a Source backed by .env files. The process
// environment always wins over file values, and later files win
// over earlier ones.
type Loader struct {
	mu   sync.RWMutex
	vars map[string]string
}

func NewLoader() *Loader {
	return &Loader{vars: make(map[string]string)}
}

// Load merges the KEY=VALUE lines of the file at path.
func (l *Loader) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open env file %s: %w", path, err)
	}
	defer f.Close()

	vars, err := parseDotenv(f)
	if err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}
	l.mu.Lock()
	for k, v := range vars {
		l.vars[k] = v
	}
	l.mu.Unlock()
	return nil
}

// LoadIfExists is Load that treats a missing file as empty.
func (l *Loader) LoadIfExists(path string) error {
	err := l.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Loader) Get(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vars[key]
}

// parseDotenv accepts blank lines, # comments, an optional
// "export " prefix, and values wrapped in matching single or
// double quotes. Unquoted values end at " #". Lines without "="
// are skipped.
func parseDotenv(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		vars[key] = unquote(strings.TrimSpace(value))
	}
	return vars, sc.Err()
}

func unquote(v string) string {
	if len(v) >= 2 {
		if q := v[0]; (q == '"' || q == '\'') && v[len(v)-1] == q {
			return v[1 : len(v)-1]
		}
	}
	if i := strings.Index(v, " #"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return v
}

// GetString returns key's value, or def when unset.
func GetString(s Source, key, def string) string {
	if v := s.Get(key); v != "" {
		return v
	}
	return def
}

// GetInt parses key as an integer, returning def when unset.
func GetInt(s Source, key string, def int) (int, error) {
	return parse(s, key, def, "integer", strconv.Atoi)
}

// GetBool parses key with strconv.ParseBool.
func GetBool(s Source, key string, def bool) (bool, error) {
	return parse(s, key, def, "boolean", strconv.ParseBool)
}

// GetDuration parses key with time.ParseDuration.
func GetDuration(s Source, key string, def time.Duration) (time.Duration, error) {
	return parse(s, key, def, "duration", time.ParseDuration)
}

func parse[T any](s Source, key string, def T, kind string, fn func(string) (T, error)) (T, error) {
	v := s.Get(key)
	if v == "" {
		return def, nil
	}
	out, err := fn(v)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s: invalid %s %q", key, kind, v)
	}
	return out, nil
}
