package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.defecthunt/pkg/predicate"
)

// fakePlugin records the order Init is called in and can
// register a predicate type of its own.
type fakePlugin struct {
	name     string
	predType string
	initErr  error
	calls    *[]string
}

func (f *fakePlugin) Name() string    { return f.name }
func (f *fakePlugin) Version() string { return "0.1.0" }

func (f *fakePlugin) Init(ctx *PluginContext) error {
	if f.calls != nil {
		*f.calls = append(*f.calls, f.name)
	}
	if f.initErr != nil {
		return f.initErr
	}
	if f.predType == "" {
		return nil
	}
	return ctx.Predicates.Register(f.predType, func(predicate.Spec) (predicate.Predicate, error) {
		return func(s string) bool { return s == "yes" }, nil
	})
}

func TestRegistry_RegisterRejects(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakePlugin{name: "text"}))

	tests := map[string]Plugin{
		"nil":       nil,
		"empty":     &fakePlugin{},
		"duplicate": &fakePlugin{name: "text"},
	}
	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, r.Register(p))
		})
	}
	assert.Equal(t, []string{"text"}, r.Names())
}

func TestRegistry_InitAllNameOrder(t *testing.T) {
	var calls []string
	r := NewRegistry()
	for _, n := range []string{"zz", "mm", "aa"} {
		require.NoError(t, r.Register(&fakePlugin{name: n, calls: &calls}))
	}

	require.NoError(t, r.InitAll(nil))
	assert.Equal(t, []string{"aa", "mm", "zz"}, calls)
	assert.True(t, r.Ready("mm"))

	require.NoError(t, r.InitAll(nil))
	assert.Len(t, calls, 3, "initialized plugins are not re-run")
}

func TestRegistry_InitAllStopsAtFailure(t *testing.T) {
	var calls []string
	r := NewRegistry()
	require.NoError(t, r.Register(&fakePlugin{name: "a", calls: &calls}))
	require.NoError(t, r.Register(&fakePlugin{name: "b", calls: &calls, initErr: errors.New("boom")}))
	require.NoError(t, r.Register(&fakePlugin{name: "c", calls: &calls}))

	err := r.InitAll(&PluginContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `init plugin "b"`)
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.True(t, r.Ready("a"))
	assert.False(t, r.Ready("b"))
	assert.False(t, r.Ready("c"))
}

func TestNewPredicateEngine_ContributesTypes(t *testing.T) {
	eng, err := NewPredicateEngine(nil, &fakePlugin{name: "yes", predType: "yes"})
	require.NoError(t, err)

	p, err := eng.Compile(predicate.Spec{Type: "yes"})
	require.NoError(t, err)
	assert.True(t, p("yes"))
	assert.False(t, p("no"))
}

func TestNewPredicateEngine_DuplicatePlugin(t *testing.T) {
	_, err := NewPredicateEngine(nil, &fakePlugin{name: "x"}, &fakePlugin{name: "x"})
	assert.ErrorContains(t, err, "load plugin")
}
