package common

import "strings"

// ShortName returns the last dot-separated segment of a qualified name.
// "com.acme.Service" becomes "Service"; a name without dots is returned as is.
func ShortName(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}

	return qualified
}

// MatchesName reports whether want names qualified, either exactly or as a
// dot-separated suffix ("acme.Service" matches "com.acme.Service").
func MatchesName(qualified, want string) bool {
	if want == "" {
		return false
	}

	return qualified == want || strings.HasSuffix(qualified, "."+want)
}
