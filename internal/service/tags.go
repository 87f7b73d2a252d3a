package service

import "strings"

// NormalizeTags splits comma-delimited values into trimmed, non-empty tags, keeping their order.
// Each argument may be a single tag or a delimited list.
func NormalizeTags(values ...string) []string {
	tags := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			tags = append(tags, trimmed)
		}
	}
	return tags
}
