// Package cmd implements the testlangc CLI commands using Cobra.
//
// Available commands:
//   - compile: Generate JUnit 5 or Go test sources from .tl files
//   - run: Execute tests in-process against a live server
//   - validate: Check source syntax without generating code
//   - tokens, inspect: Dump the token stream or syntax tree
//   - list: Display the tests defined in files
//   - history: Show runs recorded in a SQLite database
//   - init: Create a config file and an example source
//   - version, docs, exitcodes, completion
//
// Exit codes are listed by the exitcodes command.
package cmd
