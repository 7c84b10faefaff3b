package webhook

import (
	"net/http"
)

// Verifier authenticates an inbound provider callback. Verification always
// runs over the exact raw request bytes; re-serialized payloads would break
// the signature. Any error means the webhook must be rejected with no state
// change.
type Verifier interface {
	Verify(body []byte, header http.Header) error
}
