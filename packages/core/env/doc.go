// Package env handles variables and $name substitution for testlang.
//
// It provides functionality for:
//   - Substituting $name references against a flat variable table
//   - Loading external bindings from dotenv-style files and --var flags
//   - Seeding bindings from TESTLANG_VAR_* process environment variables
package env
