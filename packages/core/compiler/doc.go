// Package compiler wires the tokenizer, parser and code generator into a
// single call per source text, and compiles many files with a bounded
// worker pool.
package compiler
