package plugin

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"digital.vasic.defecthunt/pkg/predicate"
)

// Predicate types contributed by TextPlugin.
const (
	TypeWord     = "word"
	TypeMinWords = "min_words"
)

// TextPlugin contributes word-level predicates:
//
//	word       any of Values appears as whole words; a multi-word
//	           value must appear as that exact run of words
//	min_words  the answer has at least Value words
//
// "word" avoids the substring pitfall of contains, where "at"
// would match "format".
type TextPlugin struct{}

// NewTextPlugin returns the text predicates plugin.
func NewTextPlugin() *TextPlugin { return &TextPlugin{} }

func (*TextPlugin) Name() string    { return "text" }
func (*TextPlugin) Version() string { return "1.0.0" }

// Init registers the plugin's predicate types.
func (*TextPlugin) Init(ctx *PluginContext) error {
	if ctx == nil || ctx.Predicates == nil {
		return fmt.Errorf("predicate engine is required")
	}
	if err := ctx.Predicates.Register(TypeWord, buildWord); err != nil {
		return err
	}
	return ctx.Predicates.Register(TypeMinWords, buildMinWords)
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '@'
	})
}

func buildWord(spec predicate.Spec) (predicate.Predicate, error) {
	terms := spec.Values
	if spec.Value != "" {
		terms = append([]string{spec.Value}, terms...)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("values must not be empty")
	}
	phrases := make([][]string, 0, len(terms))
	for i, t := range terms {
		t = predicate.Normalize(t)
		if t == "" {
			return nil, fmt.Errorf("values[%d] must not be blank", i)
		}
		ws := words(t)
		if len(ws) == 0 {
			return nil, fmt.Errorf("values[%d] %q contains no words", i, t)
		}
		phrases = append(phrases, ws)
	}
	return func(s string) bool {
		in := words(s)
		for _, ph := range phrases {
			if containsRun(in, ph) {
				return true
			}
		}
		return false
	}, nil
}

// containsRun reports whether run appears in ws as consecutive
// elements.
func containsRun(ws, run []string) bool {
	for i := 0; i+len(run) <= len(ws); i++ {
		if slices.Equal(ws[i:i+len(run)], run) {
			return true
		}
	}
	return false
}

func buildMinWords(spec predicate.Spec) (predicate.Predicate, error) {
	n, err := strconv.Atoi(strings.TrimSpace(spec.Value))
	if err != nil || n < 1 {
		return nil, fmt.Errorf("value must be a positive integer, got %q", spec.Value)
	}
	return func(s string) bool {
		return len(words(s)) >= n
	}, nil
}
