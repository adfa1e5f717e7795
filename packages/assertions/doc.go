// Package assertions evaluates testlang expectations against an HTTP
// response.
//
// Supported assertions:
//   - Status code equality (expect status = 200)
//   - Header equality (expect header "Content-Type" = "text/plain")
//   - Header substring (expect header "Content-Type" contains "json")
//   - Body substring (expect body contains "success")
//
// Header lookup is case-insensitive and uses the first value; a missing
// header compares as the empty string.
package assertions
