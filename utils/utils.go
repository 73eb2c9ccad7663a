package utils

import (
	"strings"
)

// SplitLines returns the trimmed, non-empty lines of text in order.
func SplitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// PageMeta is the pagination block returned with list responses.
func PageMeta(total int64, page, limit int) map[string]interface{} {
	return map[string]interface{}{
		"total": total,
		"page":  page,
		"limit": limit,
	}
}
