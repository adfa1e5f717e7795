// Package history records test runs in a SQLite database so results can
// be compared across invocations.
package history
