// Package verifier authenticates inbound payment provider webhooks.
package verifier

import (
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"
)

const SignatureHeader = "Stripe-Signature"

var (
	ErrAuthenticationFailed = errors.New("webhook authentication failed")
	ErrSecretNotConfigured  = errors.New("webhook secret not configured")
)

type Config struct {
	Secret    string
	Tolerance time.Duration
}

type Verifier struct {
	cfg Config
}

func New(cfg Config) *Verifier {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = webhook.DefaultTolerance
	}
	return &Verifier{
		cfg: cfg,
	}
}

func (v *Verifier) Configured() bool {
	return v.cfg.Secret != ""
}

// Verify checks that header carries a valid signature of body made with the
// shared secret. The HMAC comparison and timestamp tolerance check are done by
// stripe-go.
func (v *Verifier) Verify(body []byte, header string) error {
	if !v.Configured() {
		return ErrSecretNotConfigured
	}
	if header == "" {
		return fmt.Errorf("%w: missing %s header", ErrAuthenticationFailed, SignatureHeader)
	}
	if err := webhook.ValidatePayloadWithTolerance(body, header, v.cfg.Secret, v.cfg.Tolerance); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	return nil
}
