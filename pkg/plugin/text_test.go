package plugin

import (
	"testing"

	"digital.vasic.defecthunt/pkg/predicate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textEngine(t *testing.T) *predicate.Engine {
	t.Helper()
	eng, err := NewPredicateEngine(nil, Builtin()...)
	require.NoError(t, err)
	return eng
}

func TestTextPlugin_Word(t *testing.T) {
	eng := textEngine(t)
	assert.True(t, eng.HasType(TypeWord))

	p, err := eng.Compile(predicate.Spec{Type: TypeWord, Values: []string{"At", "sign"}})
	require.NoError(t, err)

	assert.True(t, p("missing at check"))
	assert.True(t, p("no sign, anywhere"))
	assert.False(t, p("bad format"), "substring must not match")
}

func TestTextPlugin_WordPhrase(t *testing.T) {
	eng := textEngine(t)

	p, err := eng.Compile(predicate.Spec{Type: TypeWord, Values: []string{"No Validation", "e-mail"}})
	require.NoError(t, err)

	assert.True(t, p("there is no validation at all"))
	assert.True(t, p("no, validation is skipped"), "punctuation separates words only")
	assert.True(t, p("bad e-mail field"))
	assert.False(t, p("validation: no"), "words must appear in order")
	assert.False(t, p("no input validation"), "words must be adjacent")
}

func TestTextPlugin_MinWords(t *testing.T) {
	eng := textEngine(t)

	p, err := eng.Compile(predicate.Spec{Type: TypeMinWords, Value: "3"})
	require.NoError(t, err)
	assert.True(t, p("labels overlap badly"))
	assert.False(t, p("overlap"))
}

func TestTextPlugin_InvalidSpecs(t *testing.T) {
	eng := textEngine(t)

	for _, spec := range []predicate.Spec{
		{Type: TypeWord},
		{Type: TypeWord, Values: []string{"ok", " "}},
		{Type: TypeWord, Values: []string{"!!"}},
		{Type: TypeMinWords, Value: "many"},
		{Type: TypeMinWords, Value: "0"},
	} {
		_, err := eng.Compile(spec)
		assert.Error(t, err, "%+v", spec)
	}
}

func TestTextPlugin_ComposesWithBuiltins(t *testing.T) {
	eng := textEngine(t)

	p, err := eng.Compile(predicate.AndSpec(
		predicate.Spec{Type: TypeWord, Value: "email"},
		predicate.ContainsAnySpec("@"),
	))
	require.NoError(t, err)
	assert.True(t, p("email accepts no @"))
	assert.False(t, p("emails accept no @"))
}

func TestTextPlugin_RequiresEngine(t *testing.T) {
	assert.Error(t, NewTextPlugin().Init(&PluginContext{}))
}

func TestNewPredicateEngine_DuplicateType(t *testing.T) {
	eng := predicate.NewEngine()
	_, err := NewPredicateEngine(&PluginContext{Predicates: eng}, Builtin()...)
	require.NoError(t, err)

	// A second text plugin on the same engine collides on type names.
	_, err = NewPredicateEngine(&PluginContext{Predicates: eng}, Builtin()...)
	assert.Error(t, err)
}
