package webhook

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
)

// Wallet provider webhook headers.
const (
	TransmissionIDHeader   = "Walletpay-Transmission-Id"
	TransmissionTimeHeader = "Walletpay-Transmission-Time"
	TransmissionSigHeader  = "Walletpay-Transmission-Sig"
	CertURLHeader          = "Walletpay-Cert-Url"
)

// CertVerifier checks the wallet provider's certificate scheme: an RSA
// signature over "transmissionID|transmissionTime|webhookID|crc32(body)",
// made with a certificate served from the provider's domain and chained to
// a pinned trust root.
type CertVerifier struct {
	webhookID   string
	allowedHost string
	roots       *x509.CertPool
	client      *http.Client
	now         func() time.Time

	mu    sync.Mutex
	certs map[string]*x509.Certificate
}

// NewCertVerifier builds a verifier for the configured webhook id. rootPEM
// is the pinned provider CA; allowedHost restricts where leaf certificates
// may be fetched from.
func NewCertVerifier(webhookID, allowedHost string, rootPEM []byte) (*CertVerifier, error) {
	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(rootPEM) {
		return nil, fmt.Errorf("no usable certificates in trust root")
	}
	return &CertVerifier{
		webhookID:   webhookID,
		allowedHost: allowedHost,
		roots:       roots,
		client:      &http.Client{Timeout: 10 * time.Second},
		now:         time.Now,
		certs:       make(map[string]*x509.Certificate),
	}, nil
}

// Verify authenticates the webhook against the raw body bytes, fail-closed.
func (v *CertVerifier) Verify(body []byte, header http.Header) error {
	transmissionID := header.Get(TransmissionIDHeader)
	transmissionTime := header.Get(TransmissionTimeHeader)
	signature := header.Get(TransmissionSigHeader)
	certURL := header.Get(CertURLHeader)
	if transmissionID == "" || transmissionTime == "" || signature == "" || certURL == "" {
		return fmt.Errorf("%w: missing transmission headers", domainErrors.ErrVerificationFailed)
	}

	cert, err := v.certificate(certURL)
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrVerificationFailed, err)
	}

	nowTime := v.now()
	if nowTime.Before(cert.NotBefore) || nowTime.After(cert.NotAfter) {
		return fmt.Errorf("%w: certificate outside validity window", domainErrors.ErrVerificationFailed)
	}
	if _, err := cert.Verify(x509.VerifyOptions{Roots: v.roots, CurrentTime: nowTime}); err != nil {
		return fmt.Errorf("%w: certificate chain: %v", domainErrors.ErrVerificationFailed, err)
	}

	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: unsupported certificate key type", domainErrors.ErrVerificationFailed)
	}

	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: signature is not base64", domainErrors.ErrVerificationFailed)
	}

	message := fmt.Sprintf("%s|%s|%s|%d", transmissionID, transmissionTime, v.webhookID, crc32.ChecksumIEEE(body))
	digest := sha256.Sum256([]byte(message))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig); err != nil {
		return fmt.Errorf("%w: signature mismatch", domainErrors.ErrVerificationFailed)
	}
	return nil
}

func (v *CertVerifier) certificate(certURL string) (*x509.Certificate, error) {
	if err := v.checkCertURL(certURL); err != nil {
		return nil, err
	}

	v.mu.Lock()
	cached, ok := v.certs[certURL]
	v.mu.Unlock()
	if ok {
		return cached, nil
	}

	resp, err := v.client.Get(certURL)
	if err != nil {
		return nil, fmt.Errorf("fetch certificate: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch certificate: %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read certificate: %v", err)
	}
	block, _ := pem.Decode(raw)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("certificate is not PEM encoded")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %v", err)
	}

	v.mu.Lock()
	v.certs[certURL] = cert
	v.mu.Unlock()
	return cert, nil
}

func (v *CertVerifier) checkCertURL(certURL string) error {
	parsed, err := url.Parse(certURL)
	if err != nil {
		return fmt.Errorf("malformed certificate url")
	}
	if parsed.Scheme != "https" {
		return fmt.Errorf("certificate url must use https")
	}
	host := parsed.Hostname()
	if host != v.allowedHost && !strings.HasSuffix(host, "."+v.allowedHost) {
		return fmt.Errorf("certificate host %q not allowed", host)
	}
	return nil
}
