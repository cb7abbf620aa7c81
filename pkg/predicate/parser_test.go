package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Spec
	}{
		{
			name:  "contains_all splits values",
			input: "contains_all:email, @",
			want:  Spec{Type: TypeContainsAll, Values: []string{"email", "@"}},
		},
		{
			name:  "contains_any splits values",
			input: "contains_any:phone,tel",
			want:  Spec{Type: TypeContainsAny, Values: []string{"phone", "tel"}},
		},
		{
			name:  "matches keeps commas and colons",
			input: `matches:^\d{1,3}:x$`,
			want:  Spec{Type: TypeMatches, Value: `^\d{1,3}:x$`},
		},
		{
			name:  "equals",
			input: "equals:data-flag",
			want:  Spec{Type: TypeEquals, Value: "data-flag"},
		},
		{
			name:  "type only",
			input: "contains",
			want:  Spec{Type: TypeContains},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSpec(tt.input))
		})
	}
}

func TestParseSpec_CompilesEmailDefectPredicate(t *testing.T) {
	p, err := Compile(ParseSpec("contains_all:email,@"))
	if assert.NoError(t, err) {
		assert.True(t, p(Normalize("Missing email format check, no @ required")))
	}
}
