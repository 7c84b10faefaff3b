package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid session token")

const defaultSessionTTL = 24 * time.Hour

// HMACStrategy issues and verifies self-contained session tokens. A token is
// url-safe base64 over "<userID>.<expiresUnix>.<hex hmac-sha256 of the first
// two fields>", so no server-side session state is kept.
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACStrategy builds a strategy signing with the given secret.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken signs a token for the user, valid until the configured TTL.
func (s *HMACStrategy) IssueToken(userID int64) (string, error) {
	expires := s.now().Add(s.ttl).Unix()
	payload := fmt.Sprintf("%d.%d", userID, expires)
	token := payload + "." + s.signature(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

// ParseToken verifies the signature and expiry and returns the user ID.
// Every failure collapses to ErrInvalidToken; callers get no oracle about
// which check rejected the token.
func (s *HMACStrategy) ParseToken(token string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, ErrInvalidToken
	}

	payload, signature, found := cutLast(string(raw), ".")
	if !found {
		return 0, ErrInvalidToken
	}
	if !hmac.Equal([]byte(s.signature(payload)), []byte(signature)) {
		return 0, ErrInvalidToken
	}

	idPart, expiresPart, found := strings.Cut(payload, ".")
	if !found {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	expires, err := strconv.ParseInt(expiresPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	if s.now().After(time.Unix(expires, 0)) {
		return 0, ErrInvalidToken
	}

	return userID, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) signature(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
