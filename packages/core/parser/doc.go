// Package parser turns testlang source text into a CompilationUnit.
//
// The pipeline has two stages:
//   - Lexer: a forward-only rune cursor producing typed tokens with line and
//     column positions. Unknown characters are skipped and reported as
//     LexicalWarning values; malformed literals are fatal LexError values.
//   - Parser: strict recursive descent with one token of lookahead. The first
//     grammar violation aborts the parse with a *ParseError.
//
// The grammar has an optional config block, then let statements, then test
// blocks, in that order:
//
//	config { base_url = "http://api.test"; header "Accept" = "application/json"; }
//	let user = "admin";
//	test login {
//	    POST "/login" { body = "{\"user\":\"$user\"}"; }
//	    expect status = 200;
//	}
package parser
