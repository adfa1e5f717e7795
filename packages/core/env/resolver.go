package env

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// LookupFunc returns the value bound to name.
type LookupFunc func(name string) (string, bool)

// Substitute replaces every $name reference in text with the value lookup
// returns for it. A reference is '$' followed by the longest run of letters,
// digits and underscores. Unbound references and a bare '$' are copied
// through unchanged. Substituted values are not rescanned, so applying
// Substitute twice differs from applying it once whenever a value itself
// contains a $reference.
func Substitute(text string, lookup LookupFunc) string {
	out, _ := substitute(text, lookup)
	return out
}

func substitute(text string, lookup LookupFunc) (string, []string) {
	if strings.IndexByte(text, '$') < 0 {
		return text, nil
	}

	var (
		b          strings.Builder
		unresolved []string
	)
	b.Grow(len(text))

	for i := 0; i < len(text); {
		if text[i] != '$' {
			b.WriteByte(text[i])
			i++
			continue
		}

		end := i + 1
		for end < len(text) {
			r, width := utf8.DecodeRuneInString(text[end:])
			if !isNameRune(r) {
				break
			}
			end += width
		}

		if end == i+1 {
			b.WriteByte('$')
			i++
			continue
		}

		name := text[i+1 : end]
		if value, ok := lookup(name); ok {
			b.WriteString(value)
		} else {
			b.WriteString(text[i:end])
			unresolved = append(unresolved, name)
		}
		i = end
	}

	return b.String(), unresolved
}

// References lists the names referenced by text, in order of appearance.
func References(text string) []string {
	_, names := substitute(text, func(string) (string, bool) { return "", false })
	return names
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Resolver holds one flat variable table and substitutes $name references
// against it. It is safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]string
	order     []string
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]string),
	}
}

// SetWarnFunc sets a function to be called when warnings occur (e.g., unresolved variables)
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

// SetVariable binds name to value. Rebinding keeps the original position.
func (r *Resolver) SetVariable(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.variables[name]; !ok {
		r.order = append(r.order, name)
	}
	r.variables[name] = value
}

func (r *Resolver) SetBindings(bindings []Binding) {
	for _, b := range bindings {
		r.SetVariable(b.Name, b.Value)
	}
}

func (r *Resolver) Lookup(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variables[name]
	return v, ok
}

func (r *Resolver) HasVariable(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the bound names in first-binding order.
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve substitutes text and reports each unbound reference through the
// warn hook. Unbound references stay in the output verbatim.
func (r *Resolver) Resolve(text string) string {
	out, unresolved := substitute(text, r.Lookup)
	for _, name := range unresolved {
		r.warn("unresolved variable: $%s", name)
	}
	return out
}

// Unresolved returns the names in text that have no binding.
func (r *Resolver) Unresolved(text string) []string {
	_, unresolved := substitute(text, r.Lookup)
	return unresolved
}

func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewResolver()
	clone.warnFunc = r.warnFunc
	for _, name := range r.order {
		clone.order = append(clone.order, name)
		clone.variables[name] = r.variables[name]
	}
	return clone
}
