package util

import "strings"

// NormalizeDisplayName cleans up the upstream station/headsign text, which
// arrives with stray padding and doubled spaces.
func NormalizeDisplayName(s string) string {
	s = strings.TrimSpace(s)
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}

	return s
}
