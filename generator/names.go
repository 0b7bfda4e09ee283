package generator

import (
	"strings"

	"modernc.org/mathutil"
)

// Normalize turns a C identifier into a Scheme-style name: lower case with
// hyphens instead of underscores.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}

// commonPrefix returns the longest string prefix shared by all names.
func commonPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}

	prefix := names[0]
	for _, name := range names[1:] {
		n := mathutil.Min(len(prefix), len(name))
		i := 0
		for i < n && prefix[i] == name[i] {
			i++
		}
		prefix = prefix[:i]
		if prefix == "" {
			break
		}
	}

	return prefix
}

// baseName derives an identifying name for an anonymous enum from the
// common prefix of its enumerators.
func baseName(prefix string) string {
	return strings.TrimRight(prefix, " _")
}
