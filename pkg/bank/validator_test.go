package bank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFile_Valid(t *testing.T) {
	assert.Empty(t, ValidateFile("testdata/bank.yaml"))
}

func TestValidateFile_ReportsEverything(t *testing.T) {
	errs := ValidateFile("testdata/invalid.json")

	var got []string
	for _, e := range errs {
		got = append(got, e.Error())
	}

	require.Len(t, errs, 12, "%v", got)
	assert.Equal(t, "version: version is required", got[0])
	assert.Contains(t, got, "challenges[1].id: duplicate ID: c1")
	assert.Contains(t, got, "challenges[1].name: challenge name is required")
	assert.Contains(t, got, "challenges[1].reward_token: reward token is required")
	assert.Contains(t, got, "challenges[2].id: challenge ID is required")
	assert.Contains(t, got, "badges[1].name: duplicate badge name: b")
	assert.Contains(t, got, "badges[2].name: badge name is required")

	byField := map[string]int{}
	for _, e := range errs {
		byField[e.Section+"."+e.Field]++
	}
	assert.Equal(t, 2, byField["challenges.predicate"])
	assert.Equal(t, 3, byField["badges.criteria"])
}

func TestValidateFile_Unreadable(t *testing.T) {
	errs := ValidateFile("/nonexistent/bank.json")
	require.Len(t, errs, 1)
	assert.Equal(t, "file", errs[0].Field)

	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte("challenges: [unterminated"), 0o644))
	errs = ValidateFile(path)
	require.Len(t, errs, 1)
	assert.Equal(t, "format", errs[0].Field)
}

func TestValidationError_Format(t *testing.T) {
	assert.Equal(t, "version: missing",
		ValidationError{Field: "version", Message: "missing", Index: -1}.Error())
	assert.Equal(t, "badges[3].criteria: bad",
		ValidationError{Section: "badges", Index: 3, Field: "criteria", Message: "bad"}.Error())
}
