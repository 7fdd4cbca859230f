package generation

import (
	"regexp"
	"strings"
)

var hexColorPattern = regexp.MustCompile(`^#?([0-9A-Fa-f]{6})$`)

// normalizeList trims entries, drops blanks, and removes case-insensitive duplicates
// while keeping the first spelling.
func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		item = strings.Trim(item, `"`)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// normalizeColor returns the color as #RRGGBB, or "" when it is not a 6-digit hex value.
func normalizeColor(c string) string {
	m := hexColorPattern.FindStringSubmatch(strings.TrimSpace(c))
	if m == nil {
		return ""
	}
	return "#" + strings.ToUpper(m[1])
}

func normalizePalette(colors []string) []string {
	out := make([]string, 0, len(colors))
	for _, c := range colors {
		if n := normalizeColor(c); n != "" {
			out = append(out, n)
		}
	}
	return out
}
