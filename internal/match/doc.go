// Package match provides identifier normalization and edit-distance scoring
// used to suggest the intended name when a schema, attribute or element
// reference does not resolve.
//
// Key functions:
//   - NormalizeIdent: folds case and strips separators
//   - Levenshtein: computes edit distance between strings
//   - Suggest: ranks known names by similarity to an unknown one
package match
