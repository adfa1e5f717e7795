package env

import (
	"reflect"
	"testing"
)

func mapLookup(vars map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		vars     map[string]string
		expected string
	}{
		{
			name:     "no references",
			input:    "hello world",
			expected: "hello world",
		},
		{
			name:     "simple variable",
			input:    "hello $name",
			vars:     map[string]string{"name": "world"},
			expected: "hello world",
		},
		{
			name:     "adjacent text",
			input:    "/users/$id/posts",
			vars:     map[string]string{"id": "42"},
			expected: "/users/42/posts",
		},
		{
			name:     "maximal munch",
			input:    "$user_id",
			vars:     map[string]string{"user": "x", "user_id": "7"},
			expected: "7",
		},
		{
			name:     "maximal munch does not fall back",
			input:    "$username",
			vars:     map[string]string{"user": "x"},
			expected: "$username",
		},
		{
			name:     "unbound stays literal",
			input:    "token=$token",
			expected: "token=$token",
		},
		{
			name:     "bare dollar",
			input:    "costs $ 5",
			expected: "costs $ 5",
		},
		{
			name:     "trailing dollar",
			input:    "price$",
			expected: "price$",
		},
		{
			name:     "double dollar",
			input:    "$$a",
			vars:     map[string]string{"a": "1"},
			expected: "$1",
		},
		{
			name:     "digit name",
			input:    "$1",
			vars:     map[string]string{"1": "one"},
			expected: "one",
		},
		{
			name:     "unicode name",
			input:    "$café!",
			vars:     map[string]string{"café": "latte"},
			expected: "latte!",
		},
		{
			name:     "empty value",
			input:    "[$e]",
			vars:     map[string]string{"e": ""},
			expected: "[]",
		},
		{
			name:     "json body",
			input:    `{"user":"$user"}`,
			vars:     map[string]string{"user": "admin"},
			expected: `{"user":"admin"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Substitute(tt.input, mapLookup(tt.vars))
			if got != tt.expected {
				t.Errorf("Substitute(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSubstituteIdempotence(t *testing.T) {
	plain := mapLookup(map[string]string{"a": "1", "b": "two"})
	input := "$a-$b-$c"
	once := Substitute(input, plain)
	twice := Substitute(once, plain)
	if once != twice {
		t.Errorf("expected idempotence without nested references: %q vs %q", once, twice)
	}

	nested := mapLookup(map[string]string{"a": "$b", "b": "x"})
	once = Substitute("$a", nested)
	if once != "$b" {
		t.Fatalf("values must not be rescanned, got %q", once)
	}
	twice = Substitute(once, nested)
	if twice != "x" {
		t.Errorf("second pass should expand nested reference, got %q", twice)
	}
}

func TestReferences(t *testing.T) {
	got := References("$a and $b_2 but not $ or $$")
	want := []string{"a", "b_2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("References() = %v, want %v", got, want)
	}
}

func TestResolverResolve(t *testing.T) {
	r := NewResolver()
	r.SetVariable("user", "admin")
	r.SetVariable("id", "1")

	var warnings []string
	r.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, format)
	})

	got := r.Resolve("/users/$id?by=$user&t=$token")
	if got != "/users/1?by=admin&t=$token" {
		t.Errorf("Resolve() = %q", got)
	}
	if len(warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(warnings))
	}
}

func TestResolverRebindKeepsPosition(t *testing.T) {
	r := NewResolver()
	r.SetVariable("a", "1")
	r.SetVariable("b", "2")
	r.SetVariable("a", "3")

	if got := r.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Names() = %v", got)
	}
	if v, _ := r.Lookup("a"); v != "3" {
		t.Errorf("a = %q, want 3", v)
	}
}

func TestResolverUnresolved(t *testing.T) {
	r := NewResolver()
	r.SetBindings([]Binding{{Name: "foo", Value: "bar"}})

	tests := []struct {
		input    string
		expected []string
	}{
		{"hello", nil},
		{"$foo", nil},
		{"$foo and $bar", []string{"bar"}},
		{"$x$y", []string{"x", "y"}},
	}

	for _, tt := range tests {
		got := r.Unresolved(tt.input)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Unresolved(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestResolverClone(t *testing.T) {
	r := NewResolver()
	r.SetVariable("a", "1")

	clone := r.Clone()
	clone.SetVariable("a", "2")
	clone.SetVariable("b", "3")

	if v, _ := r.Lookup("a"); v != "1" {
		t.Errorf("original modified: a = %q", v)
	}
	if r.HasVariable("b") {
		t.Error("original should not see clone bindings")
	}
	if v, _ := clone.Lookup("a"); v != "2" {
		t.Errorf("clone a = %q", v)
	}
}
