package webhook

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/artmarket/settlement/internal/config"
)

func writeTrustRoot(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Walletpay Root CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "root.pem")
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	if err := os.WriteFile(path, pemBytes, 0o600); err != nil {
		t.Fatalf("write trust root: %v", err)
	}
	return path
}

func TestNewVerifiers(t *testing.T) {
	cfg := &config.Config{
		CardWebhookSecret:   "whsec_test",
		WalletWebhookID:     "WH-ID",
		WalletCertHost:      "api.walletpay.test",
		WalletTrustRootPath: writeTrustRoot(t),
	}

	verifiers, err := newVerifiers(cfg)
	if err != nil {
		t.Fatalf("newVerifiers returned error: %v", err)
	}
	if _, ok := verifiers.Card.(*HMACVerifier); !ok {
		t.Fatalf("expected HMAC verifier for card webhooks, got %T", verifiers.Card)
	}
	if _, ok := verifiers.Wallet.(*CertVerifier); !ok {
		t.Fatalf("expected certificate verifier for wallet webhooks, got %T", verifiers.Wallet)
	}
}

func TestNewVerifiersMissingTrustRoot(t *testing.T) {
	cfg := &config.Config{
		CardWebhookSecret:   "whsec_test",
		WalletWebhookID:     "WH-ID",
		WalletCertHost:      "api.walletpay.test",
		WalletTrustRootPath: filepath.Join(t.TempDir(), "missing.pem"),
	}
	if _, err := newVerifiers(cfg); err == nil {
		t.Fatal("expected error for missing trust root file")
	}
}

func TestNewVerifiersUnusableTrustRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "root.pem")
	if err := os.WriteFile(path, []byte("not a certificate"), 0o600); err != nil {
		t.Fatalf("write trust root: %v", err)
	}
	cfg := &config.Config{
		CardWebhookSecret:   "whsec_test",
		WalletWebhookID:     "WH-ID",
		WalletCertHost:      "api.walletpay.test",
		WalletTrustRootPath: path,
	}
	if _, err := newVerifiers(cfg); err == nil {
		t.Fatal("expected error for unusable trust root")
	}
}
