package badge

import (
	"errors"
	"testing"

	"digital.vasic.defecthunt/pkg/challenge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Semantics(t *testing.T) {
	tests := []struct {
		name      string
		spec      CriteriaSpec
		completed challenge.IDSet
		want      bool
	}{
		{"at_least met", AtLeast(2), challenge.NewIDSet("c1", "c2"), true},
		{"at_least exceeded", AtLeast(2), challenge.NewIDSet("c1", "c2", "c3"), true},
		{"at_least short", AtLeast(3), challenge.NewIDSet("c1", "c2"), false},
		{"set subset", SpecificSet("c1", "c2"), challenge.NewIDSet("c1", "c2", "c9"), true},
		{"set missing", SpecificSet("c1", "c2"), challenge.NewIDSet("c1"), false},
		{"single", SpecificChallenge("c4"), challenge.NewIDSet("c4"), true},
		{"single missing", SpecificChallenge("c4"), challenge.NewIDSet("c1"), false},
		{
			"and",
			AllOf(AtLeast(2), SpecificChallenge("c3")),
			challenge.NewIDSet("c1", "c3"),
			true,
		},
		{
			"and one false",
			AllOf(AtLeast(3), SpecificChallenge("c3")),
			challenge.NewIDSet("c1", "c3"),
			false,
		},
		{
			"or",
			AnyOf(SpecificChallenge("c7"), SpecificSet("c1", "c2")),
			challenge.NewIDSet("c1", "c2"),
			true,
		},
		{
			"or none",
			AnyOf(SpecificChallenge("c7"), AtLeast(5)),
			challenge.NewIDSet("c1"),
			false,
		},
		{"empty completions", AtLeast(1), challenge.NewIDSet(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Compile(tt.spec, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c(tt.completed))
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		spec    CriteriaSpec
		known   challenge.IDSet
		message string
	}{
		{"missing type", CriteriaSpec{}, nil, "type is required"},
		{"unknown type", CriteriaSpec{Type: "streak"}, nil, `unknown criteria type "streak"`},
		{"zero n", AtLeast(0), nil, "n must be positive"},
		{"negative n", AtLeast(-1), nil, "n must be positive"},
		{"empty set", SpecificSet(), nil, "challenges must not be empty"},
		{"blank id", SpecificSet("c1", ""), nil, "challenges[1] must not be empty"},
		{
			"two for single",
			CriteriaSpec{Type: TypeSpecificChallenge, Challenges: []challenge.ID{"a", "b"}},
			nil,
			"exactly one challenge",
		},
		{"empty and", AllOf(), nil, "at least one sub-criterion"},
		{"empty or", AnyOf(), nil, "at least one sub-criterion"},
		{
			"nested path",
			AnyOf(AtLeast(1), AllOf(AtLeast(0))),
			nil,
			"criteria.of[1].of[0]: n must be positive",
		},
		{
			"unknown reference",
			SpecificSet("c1", "c9"),
			challenge.NewIDSet("c1", "c2"),
			`references unknown challenge "c9"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.spec, tt.known)
			require.Error(t, err)
			assert.True(t, errors.Is(err, challenge.ErrConfiguration))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCriteriaSpec_References(t *testing.T) {
	spec := AnyOf(
		SpecificChallenge("c1"),
		AllOf(SpecificSet("c2", "c3"), AtLeast(4)),
	)
	assert.Equal(t, []challenge.ID{"c1", "c2", "c3"}, spec.References())
}
