package auth

import "strings"

// Identity sources.
const (
	SourceToken   = "token"
	SourceSession = "session"
)

// Identity is the signed-in user as seen by this service.
type Identity struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	ImageURL string `json:"imageUrl,omitempty"`
	Source   string `json:"source"`
}

// Matches reports whether username names this identity.
func (i Identity) Matches(username string) bool {
	return strings.TrimSpace(username) == i.Username
}
