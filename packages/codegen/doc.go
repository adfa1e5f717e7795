// Package codegen renders parsed testlang units as executable test modules.
//
// Generation happens in two steps. Lower turns a CompilationUnit into a
// Suite: request paths are resolved against the configured base URL and
// $name references in URLs, bodies and request header values are
// substituted. A Generator then renders the Suite through an embedded
// text/template for the selected target:
//
//   - junit: a JUnit 5 class using java.net.http
//   - gotest: a Go test file using net/http and testify
//
// Output is deterministic: the same unit and options always yield the same
// bytes.
package codegen
