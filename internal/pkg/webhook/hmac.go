package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
)

// SignatureHeader carries the card provider's webhook signature:
// "t=<unix>,v1=<hex hmac-sha256 of "<unix>.<body>">".
const SignatureHeader = "Cardpay-Signature"

const defaultTolerance = 5 * time.Minute

// HMACVerifier checks the card provider's shared-secret signature scheme.
type HMACVerifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewHMACVerifier builds a verifier for the given shared secret.
func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret), tolerance: defaultTolerance, now: time.Now}
}

// Verify checks the signature header against the raw body. Fails closed on
// any missing or malformed part, and rejects stale timestamps to limit
// replay of captured payloads.
func (v *HMACVerifier) Verify(body []byte, header http.Header) error {
	raw := header.Get(SignatureHeader)
	if raw == "" {
		return fmt.Errorf("%w: missing %s header", domainErrors.ErrVerificationFailed, SignatureHeader)
	}

	timestamp, signature, err := parseSignatureHeader(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrVerificationFailed, err)
	}

	age := v.now().Sub(time.Unix(timestamp, 0))
	if age > v.tolerance || age < -v.tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", domainErrors.ErrVerificationFailed)
	}

	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: signature is not hex", domainErrors.ErrVerificationFailed)
	}
	if !hmac.Equal(expected, provided) {
		return fmt.Errorf("%w: signature mismatch", domainErrors.ErrVerificationFailed)
	}
	return nil
}

func parseSignatureHeader(raw string) (timestamp int64, signature string, err error) {
	for _, part := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, "", errors.New("malformed timestamp")
			}
		case "v1":
			signature = value
		}
	}
	if timestamp == 0 || signature == "" {
		return 0, "", errors.New("incomplete signature header")
	}
	return timestamp, signature, nil
}
