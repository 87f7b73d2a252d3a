package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrVerifierDisabled = errors.New("identity token verification is not configured")
	ErrInvalidToken     = errors.New("invalid identity token")
)

// Claims are the session token claims issued by the identity provider.
// username and image_url are custom claims configured on the provider side.
type Claims struct {
	Username string `json:"username"`
	ImageURL string `json:"image_url"`
	jwt.RegisteredClaims
}

// Verifier checks identity-provider session tokens.
type Verifier struct {
	key     any
	methods []string
	issuer  string
}

// NewVerifier builds a verifier from a PEM encoded RSA public key or, failing that, a shared secret.
// It returns nil when neither is configured.
func NewVerifier(publicKeyPEM, secret, issuer string) (*Verifier, error) {
	pemText := strings.TrimSpace(strings.ReplaceAll(publicKeyPEM, `\n`, "\n"))
	if pemText != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemText))
		if err != nil {
			return nil, fmt.Errorf("parse identity provider public key: %w", err)
		}
		return &Verifier{key: key, methods: []string{"RS256"}, issuer: strings.TrimSpace(issuer)}, nil
	}

	if trimmed := strings.TrimSpace(secret); trimmed != "" {
		return &Verifier{key: []byte(trimmed), methods: []string{"HS256"}, issuer: strings.TrimSpace(issuer)}, nil
	}

	return nil, nil
}

// Verify parses and validates a token and returns the identity it carries.
func (v *Verifier) Verify(tokenStr string) (Identity, error) {
	if v == nil {
		return Identity{}, ErrVerifierDisabled
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenStr), claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, options...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	username := strings.TrimSpace(claims.Username)
	if username == "" {
		return Identity{}, fmt.Errorf("%w: missing username claim", ErrInvalidToken)
	}

	return Identity{
		ID:       claims.Subject,
		Username: username,
		ImageURL: strings.TrimSpace(claims.ImageURL),
		Source:   SourceToken,
	}, nil
}
