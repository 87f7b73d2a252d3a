package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidChoice is returned when an enumerated post field holds an unknown value.
var ErrInvalidChoice = errors.New("invalid choice")

var (
	Audiences     = []string{"public", "followers", "private"}
	Tones         = []string{"informative", "creative", "formal", "casual"}
	Readabilities = []string{"simple", "medium", "advanced"}
)

// NormalizeChoice lowercases value and checks it against allowed.
// An empty value is accepted and stays empty.
func NormalizeChoice(field, value string, allowed []string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "", nil
	}
	for _, candidate := range allowed {
		if candidate == normalized {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("%w: %s must be one of %s", ErrInvalidChoice, field, strings.Join(allowed, ", "))
}
