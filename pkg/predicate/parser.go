package predicate

import "strings"

// ParseSpec parses a compact leaf spec of the form "type:value".
// For "contains_any" and "contains_all" the value is split on
// commas; every other type keeps the value verbatim so patterns
// may contain commas and colons.
//
// Examples:
//
//	"contains_all:email,@"  -> {contains_all [email @]}
//	"matches:^\d{3},\d$"    -> {matches ^\d{3},\d$}
//	"equals:data-flag"      -> {equals data-flag}
//
// Composite types cannot be expressed this way; ParseSpec only
// splits the string and leaves validation to Compile.
func ParseSpec(s string) Spec {
	parts := strings.SplitN(s, ":", 2)
	spec := Spec{Type: strings.TrimSpace(parts[0])}
	if len(parts) < 2 {
		return spec
	}

	switch spec.Type {
	case TypeContainsAny, TypeContainsAll:
		for _, v := range strings.Split(parts[1], ",") {
			spec.Values = append(spec.Values, strings.TrimSpace(v))
		}
	default:
		spec.Value = parts[1]
	}
	return spec
}
