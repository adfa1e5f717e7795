package env

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadVarFile(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []Binding
	}{
		{
			name:     "simple key-value",
			content:  "token=secret123",
			expected: []Binding{{"token", "secret123"}},
		},
		{
			name:    "keeps file order",
			content: "b=2\na=1\nc=3",
			expected: []Binding{
				{"b", "2"},
				{"a", "1"},
				{"c", "3"},
			},
		},
		{
			name:     "double quoted value",
			content:  `user="with spaces"`,
			expected: []Binding{{"user", "with spaces"}},
		},
		{
			name:     "single quoted value",
			content:  `user='with spaces'`,
			expected: []Binding{{"user", "with spaces"}},
		},
		{
			name:     "comments and blank lines are skipped",
			content:  "# comment\n\nuser=admin\n",
			expected: []Binding{{"user", "admin"}},
		},
		{
			name:     "export prefix",
			content:  "export user=admin",
			expected: []Binding{{"user", "admin"}},
		},
		{
			name:     "value containing equals",
			content:  "query=a=b",
			expected: []Binding{{"query", "a=b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vars.env")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write file: %v", err)
			}

			got, err := LoadVarFile(path)
			if err != nil {
				t.Fatalf("LoadVarFile() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("LoadVarFile() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLoadVarFileFileNotFound(t *testing.T) {
	_, err := LoadVarFile("/nonexistent/path/vars.env")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestParseVarFileInvalidLine(t *testing.T) {
	_, err := ParseVarFile(strings.NewReader("ok=1\nnot an assignment\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the line, got %v", err)
	}
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		input   string
		want    Binding
		wantErr bool
	}{
		{input: "a=1", want: Binding{"a", "1"}},
		{input: " a = 1 ", want: Binding{"a", "1"}},
		{input: "a=", want: Binding{"a", ""}},
		{input: "a", wantErr: true},
		{input: "=1", wantErr: true},
		{input: "my-var=1", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseAssignment(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAssignment(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAssignment(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAssignment(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFromEnviron(t *testing.T) {
	environ := []string{
		"PATH=/usr/bin",
		"TESTLANG_VAR_user=admin",
		"TESTLANG_VAR_id=42",
		"TESTLANG_VAR_bad-name=x",
		"TESTLANG_VAR_=empty",
	}

	got := FromEnviron(environ, DefaultEnvPrefix)
	want := []Binding{{"id", "42"}, {"user", "admin"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromEnviron() = %v, want %v", got, want)
	}
}

func TestMergeBindings(t *testing.T) {
	got := MergeBindings(
		[]Binding{{"a", "1"}, {"b", "2"}},
		[]Binding{{"a", "3"}, {"c", "4"}},
	)
	want := []Binding{{"a", "3"}, {"b", "2"}, {"c", "4"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeBindings() = %v, want %v", got, want)
	}
}
