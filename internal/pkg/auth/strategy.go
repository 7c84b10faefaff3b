package auth

import "time"

// Strategy issues and parses customer session tokens. Token contents are
// opaque to callers; only the user ID survives a round trip.
type Strategy interface {
	IssueToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

// Options tunes token issuance.
type Options struct {
	TTL time.Duration
}
