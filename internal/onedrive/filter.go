package onedrive

import (
	"path"
	"strings"
)

// MatchesName reports whether an item name satisfies a filter pattern.
// An empty pattern matches everything. Patterns containing a glob
// metacharacter match the whole name case-insensitively ("*.pdf"
// matches "Report.PDF" but not "report.pdf.txt"); anything else is a
// case-insensitive substring match.
func MatchesName(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	lowerName := strings.ToLower(name)
	lowerPattern := strings.ToLower(pattern)

	if strings.ContainsAny(pattern, "*?[") {
		matched, err := path.Match(lowerPattern, lowerName)
		if err != nil {
			// Malformed pattern, fall back to substring.
			return strings.Contains(lowerName, lowerPattern)
		}
		return matched
	}

	return strings.Contains(lowerName, lowerPattern)
}
