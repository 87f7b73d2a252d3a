package service

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUploadSigningDisabled is returned when the CDN keys are not configured.
var ErrUploadSigningDisabled = errors.New("upload signing is not configured")

// UploadAuth carries the short-lived credentials a browser needs to upload directly to the CDN.
type UploadAuth struct {
	Token     string `json:"token"`
	Expire    int64  `json:"expire"`
	Signature string `json:"signature"`
	PublicKey string `json:"publicKey"`
}

// UploadSigner issues ImageKit-compatible upload credentials from the server-held private key.
type UploadSigner struct {
	publicKey  string
	privateKey string
	ttl        time.Duration
	now        func() time.Time
	newToken   func() string
}

// NewUploadSigner creates an UploadSigner. ttl is the credential lifetime.
func NewUploadSigner(publicKey, privateKey string, ttl time.Duration) *UploadSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &UploadSigner{
		publicKey:  strings.TrimSpace(publicKey),
		privateKey: strings.TrimSpace(privateKey),
		ttl:        ttl,
		now:        time.Now,
		newToken:   uuid.NewString,
	}
}

// Enabled reports whether both keys are present.
func (s *UploadSigner) Enabled() bool {
	return s != nil && s.publicKey != "" && s.privateKey != ""
}

// Sign returns a fresh token, its expiry as a unix timestamp and the signature over both.
func (s *UploadSigner) Sign() (UploadAuth, error) {
	if !s.Enabled() {
		return UploadAuth{}, ErrUploadSigningDisabled
	}

	token := s.newToken()
	expire := s.now().Add(s.ttl).Unix()

	return UploadAuth{
		Token:     token,
		Expire:    expire,
		Signature: SignUploadToken(s.privateKey, token, expire),
		PublicKey: s.publicKey,
	}, nil
}

// SignUploadToken computes hex(HMAC-SHA1(privateKey, token+expire)).
func SignUploadToken(privateKey, token string, expire int64) string {
	mac := hmac.New(sha1.New, []byte(privateKey))
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
