package env

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Binding is one externally supplied variable.
type Binding struct {
	Name  string
	Value string
}

// LoadVarFile parses a dotenv-style file into bindings, in file order.
// Supports: NAME=value, NAME="quoted value", NAME='single quoted',
// an optional leading "export", and # comments.
func LoadVarFile(path string) ([]Binding, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open variable file: %w", err)
	}
	defer file.Close()

	bindings, err := ParseVarFile(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bindings, nil
}

func ParseVarFile(r io.Reader) ([]Binding, error) {
	var bindings []Binding
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		b, err := ParseAssignment(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		bindings = append(bindings, b)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading variable file: %w", err)
	}

	return bindings, nil
}

// ParseAssignment parses a single name=value pair as given to --var.
func ParseAssignment(s string) (Binding, error) {
	name, value, found := strings.Cut(s, "=")
	if !found {
		return Binding{}, fmt.Errorf("expected name=value, got %q", s)
	}

	name = strings.TrimSpace(name)
	if !ValidName(name) {
		return Binding{}, fmt.Errorf("invalid variable name %q", name)
	}

	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}

	return Binding{Name: name, Value: value}, nil
}

// ValidName reports whether name can be referenced as $name.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !isNameRune(r) {
			return false
		}
	}
	return true
}
