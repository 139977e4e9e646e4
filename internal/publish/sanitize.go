// Package publish writes report artifacts to tenant-scoped keys in the
// blob store.
package publish

import "strings"

// Artifact keys live flat under one per-tenant prefix. Characters the store
// rejects are substituted with readable, reversible escape sequences so a
// caller can always reconstruct the original name.
var keyEscapes = []struct {
	raw     string
	escaped string
}{
	{"^", "_CARET_"},
	{"<", "_LT_"},
	{">", "_GT_"},
}

// SanitizeKey rewrites an artifact name into the store's accepted charset.
// Deterministic and reversible via RestoreKey.
func SanitizeKey(name string) string {
	for _, e := range keyEscapes {
		name = strings.ReplaceAll(name, e.raw, e.escaped)
	}
	return name
}

// RestoreKey is the inverse of SanitizeKey.
func RestoreKey(key string) string {
	for i := len(keyEscapes) - 1; i >= 0; i-- {
		key = strings.ReplaceAll(key, keyEscapes[i].escaped, keyEscapes[i].raw)
	}
	return key
}
