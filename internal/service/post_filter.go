package service

import (
	"errors"
	"strings"
)

// ErrInvalidFilter is returned for unknown or half-specified list filters.
var ErrInvalidFilter = errors.New("invalid post filter")

// FilterField names a column that listing may filter on.
type FilterField string

const (
	FilterAudience    FilterField = "audience"
	FilterTone        FilterField = "tone"
	FilterReadability FilterField = "readability"
	FilterAuthor      FilterField = "author"
	FilterTag         FilterField = "tag"
)

var filterColumns = map[FilterField]string{
	FilterAudience:    "posts.audience",
	FilterTone:        "posts.tone",
	FilterReadability: "posts.readability",
	FilterAuthor:      "posts.author",
}

// PostFilter is a single case-insensitive equality filter. The zero value matches every post.
type PostFilter struct {
	Field FilterField
	Value string
}

// IsZero reports whether the filter matches everything.
func (f PostFilter) IsZero() bool {
	return f.Field == ""
}

// ParseFilter turns raw field/value query parameters into a PostFilter.
// Both empty means no filter; anything outside the known fields is rejected.
func ParseFilter(field, value string) (PostFilter, error) {
	name := strings.ToLower(strings.TrimSpace(field))
	trimmedValue := strings.TrimSpace(value)

	if name == "" && trimmedValue == "" {
		return PostFilter{}, nil
	}
	if name == "" || trimmedValue == "" {
		return PostFilter{}, ErrInvalidFilter
	}

	if name == "tags" {
		name = string(FilterTag)
	}

	candidate := FilterField(name)
	if _, ok := filterColumns[candidate]; !ok && candidate != FilterTag {
		return PostFilter{}, ErrInvalidFilter
	}

	return PostFilter{Field: candidate, Value: trimmedValue}, nil
}
