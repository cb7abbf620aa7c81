package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Load(t *testing.T) {
	path := writeEnv(t, `# defecthunt local settings
DEFECTHUNT_STORE=sqlite
DEFECTHUNT_BANK="banks/qa course.yaml"
DEFECTHUNT_REDIS_PASSWORD='p#ss'
export DEFECTHUNT_LOG_MODE=development
DEFECTHUNT_LISTEN=:9000 # local port
DEFECTHUNT_POSTGRES_DSN=postgres://u:p@h/db?sslmode=disable
EMPTY=
=orphan
not a pair
`)
	l := NewLoader()
	require.NoError(t, l.Load(path))

	want := map[string]string{
		"DEFECTHUNT_STORE":          "sqlite",
		"DEFECTHUNT_BANK":           "banks/qa course.yaml",
		"DEFECTHUNT_REDIS_PASSWORD": "p#ss",
		"DEFECTHUNT_LOG_MODE":       "development",
		"DEFECTHUNT_LISTEN":         ":9000",
		"DEFECTHUNT_POSTGRES_DSN":   "postgres://u:p@h/db?sslmode=disable",
		"EMPTY":                     "",
	}
	assert.Equal(t, want, l.vars)
}

func TestLoader_LaterFileWins(t *testing.T) {
	l := NewLoader()
	require.NoError(t, l.Load(writeEnv(t, "A=1\nB=1\n")))
	require.NoError(t, l.Load(writeEnv(t, "B=2\n")))

	assert.Equal(t, "1", l.Get("A"))
	assert.Equal(t, "2", l.Get("B"))
}

func TestLoader_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), ".env")
	l := NewLoader()

	assert.Error(t, l.Load(missing))
	assert.NoError(t, l.LoadIfExists(missing))
	assert.Empty(t, l.vars)
}

func TestLoader_LoadIfExistsDirectory(t *testing.T) {
	assert.Error(t, NewLoader().LoadIfExists(t.TempDir()))
}

func TestLoader_ProcessEnvWins(t *testing.T) {
	l := NewLoader()
	l.vars["DEFECTHUNT_TEST_KEY"] = "file"
	assert.Equal(t, "file", l.Get("DEFECTHUNT_TEST_KEY"))

	t.Setenv("DEFECTHUNT_TEST_KEY", "process")
	assert.Equal(t, "process", l.Get("DEFECTHUNT_TEST_KEY"))
	assert.Equal(t, "", l.Get("DEFECTHUNT_TEST_UNSET"))
}

func TestTypedGetters(t *testing.T) {
	l := NewLoader()
	l.vars["N"] = "7"
	l.vars["BAD_N"] = "seven"
	l.vars["B"] = "true"
	l.vars["D"] = "250ms"
	l.vars["S"] = "x"

	assert.Equal(t, "x", GetString(l, "S", "def"))
	assert.Equal(t, "def", GetString(l, "UNSET", "def"))

	n, err := GetInt(l, "N", 1)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = GetInt(l, "UNSET", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = GetInt(l, "BAD_N", 1)
	assert.EqualError(t, err, `BAD_N: invalid integer "seven"`)

	b, err := GetBool(l, "B", false)
	require.NoError(t, err)
	assert.True(t, b)

	d, err := GetDuration(l, "D", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	_, err = GetDuration(l, "N", time.Second)
	assert.ErrorContains(t, err, "invalid duration")
}
