package emailsender

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"payment-webhook/internal/common/resendprotocol"
	"payment-webhook/pkg/logging"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.resend.com"
	defaultTimeout = 5 * time.Second
)

var (
	ErrSenderDisabled   = errors.New("email sender is disabled")
	ErrDeliveryRejected = errors.New("email delivery rejected")
)

type Config struct {
	APIKey  string
	From    string
	BaseURL string
	Timeout time.Duration
}

// Resend delivers transactional email through the Resend HTTP API. Without an
// API key it is disabled and Send returns ErrSenderDisabled.
type Resend struct {
	client *resty.Client
	cfg    Config
	logger *logging.ZapLogger
}

func NewResend(cfg Config, logger *logging.ZapLogger) *Resend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	client := resty.
		New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.APIKey)
	return &Resend{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Resend) Enabled() bool {
	return s.cfg.APIKey != ""
}

// Send makes exactly one delivery attempt.
func (s *Resend) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	if !s.Enabled() {
		return ErrSenderDisabled
	}
	result := resendprotocol.Accepted{}
	resp, err := s.client.
		R().
		SetContext(ctx).
		SetBody(resendprotocol.Email{
			From:    s.cfg.From,
			To:      []string{recipient},
			Subject: subject,
			HTML:    htmlBody,
		}).
		SetResult(&result).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("post request failed: %w", err)
	}
	if !resp.IsSuccess() {
		s.logger.ErrorCtx(
			ctx,
			"email provider rejected message",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return fmt.Errorf("%w: unexpected status code %v", ErrDeliveryRejected, resp.StatusCode())
	}
	s.logger.DebugCtx(ctx, "email accepted by provider", zap.String("messageID", result.ID))
	return nil
}
