package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "missing @ check", Normalize("  Missing @ CHECK\n\t"))
	assert.Equal(t, "", Normalize(" \t\n "))
	assert.Equal(t, "żółć", Normalize("ŻÓŁĆ "))
}

func TestContainsAny(t *testing.T) {
	p := ContainsAny("Button", "click")

	assert.True(t, p("the button does nothing"))
	assert.True(t, p("double click required"))
	assert.False(t, p("form resets"))
	assert.False(t, p(""))
}

func TestContainsAny_BlankTermsIgnored(t *testing.T) {
	p := ContainsAny("", "  ")
	assert.False(t, p(""))
	assert.False(t, p("anything"))
}

func TestContainsAll(t *testing.T) {
	p := ContainsAll("email", "@")

	assert.True(t, p("missing email format check, no @ required"))
	assert.False(t, p("email is fine"))
	assert.False(t, p(""))
}

func TestContainsAll_NoTermsNeverTrue(t *testing.T) {
	assert.False(t, ContainsAll()("x"))
	assert.False(t, ContainsAll(" ")(""))
}

func TestEqualsExact(t *testing.T) {
	p := EqualsExact("  Data-Secret ")

	assert.True(t, p("data-secret"))
	assert.False(t, p("data-secret!"))
	assert.False(t, p(""))
	assert.False(t, EqualsExact("")(""))
}

func TestMatches(t *testing.T) {
	p, err := Matches(`\b\d{2,}\s*chars?\b`)
	require.NoError(t, err)

	assert.True(t, p("limit of 10 chars"))
	assert.False(t, p("no limit"))
}

func TestMatches_InvalidPattern(t *testing.T) {
	_, err := Matches(`(unclosed`)
	require.Error(t, err)
}

func TestMustMatch_Panics(t *testing.T) {
	assert.Panics(t, func() { MustMatch(`[`) })
	assert.NotPanics(t, func() { MustMatch(`ok`) })
}

func TestCombinators(t *testing.T) {
	email := ContainsAny("email")
	phone := ContainsAny("phone")

	tests := []struct {
		name  string
		p     Predicate
		input string
		want  bool
	}{
		{"and both", And(email, phone), "email and phone", true},
		{"and one", And(email, phone), "email only", false},
		{"and empty", And(), "anything", false},
		{"and nil", And(email, nil), "email", false},
		{"or one", Or(email, phone), "phone", true},
		{"or none", Or(email, phone), "address", false},
		{"or empty", Or(), "x", false},
		{"not", Not(email), "phone", true},
		{"not match", Not(email), "email", false},
		{"not nil", Not(nil), "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p(tt.input))
		})
	}
}

func TestPredicates_TotalOnOddInput(t *testing.T) {
	inputs := []string{"", " ", "\x00", "\xff\xfe", "🙂🙂", "((("}
	ps := []Predicate{
		ContainsAny("a"),
		ContainsAll("a", "b"),
		EqualsExact("a"),
		MustMatch(`a+`),
		And(ContainsAny("a"), Not(ContainsAny("b"))),
		Or(),
	}

	for _, p := range ps {
		for _, in := range inputs {
			assert.NotPanics(t, func() { p(in) })
		}
	}
}
