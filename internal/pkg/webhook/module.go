package webhook

import (
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/artmarket/settlement/internal/config"
)

// Verifiers bundles both provider verifiers for injection.
type Verifiers struct {
	Card   Verifier
	Wallet Verifier
}

// Module provides webhook signature verifiers via fx.
var Module = fx.Provide(newVerifiers)

func newVerifiers(cfg *config.Config) (Verifiers, error) {
	rootPEM, err := os.ReadFile(cfg.WalletTrustRootPath)
	if err != nil {
		return Verifiers{}, fmt.Errorf("read wallet trust root: %w", err)
	}
	wallet, err := NewCertVerifier(cfg.WalletWebhookID, cfg.WalletCertHost, rootPEM)
	if err != nil {
		return Verifiers{}, err
	}
	return Verifiers{
		Card:   NewHMACVerifier(cfg.CardWebhookSecret),
		Wallet: wallet,
	}, nil
}
