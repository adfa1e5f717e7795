// Package http provides the HTTP client used to execute compiled testlang
// suites in-process.
//
// It wraps the standard library's http package with:
//   - Request and connect timeouts matching generated tests
//   - Ordered default headers applied before per-request headers
//   - Optional request rate limiting
//   - Response helpers for headers and JSON bodies
package http
