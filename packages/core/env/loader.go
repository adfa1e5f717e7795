package env

import (
	"os"
	"sort"
	"strings"
)

// DefaultEnvPrefix marks process environment variables that seed the
// variable table, e.g. TESTLANG_VAR_token=abc binds $token.
const DefaultEnvPrefix = "TESTLANG_VAR_"

// FromEnviron collects bindings from environ entries carrying prefix, sorted
// by name so the result does not depend on the process environment order.
func FromEnviron(environ []string, prefix string) []Binding {
	var bindings []Binding
	for _, e := range environ {
		key, value, ok := strings.Cut(e, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		name := key[len(prefix):]
		if !ValidName(name) {
			continue
		}
		bindings = append(bindings, Binding{Name: name, Value: value})
	}
	sort.Slice(bindings, func(i, j int) bool {
		return bindings[i].Name < bindings[j].Name
	})
	return bindings
}

func LoadSystemEnv(prefix string) []Binding {
	return FromEnviron(os.Environ(), prefix)
}

// MergeBindings concatenates sources; later bindings of a name win.
func MergeBindings(sources ...[]Binding) []Binding {
	var out []Binding
	index := make(map[string]int)
	for _, src := range sources {
		for _, b := range src {
			if i, ok := index[b.Name]; ok {
				out[i].Value = b.Value
				continue
			}
			index[b.Name] = len(out)
			out = append(out, b)
		}
	}
	return out
}
