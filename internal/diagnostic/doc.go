// Package diagnostic provides structured errors, warnings and notes produced
// while validating tag declarations and building alias graphs.
//
// Key capabilities:
//   - Coded diagnostics located by schema, attribute or element
//   - "Did you mean" suggestions for misspelled names
//   - Conversion of a diagnostics set into a single error
package diagnostic
