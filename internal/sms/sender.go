package sms

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/ileco-one/triage-backend/internal/sysutil"
)

// Sender pushes confirmation texts through the SMS provider's HTTP API.
// Sends are best-effort: intake never fails because a confirmation could
// not go out.
type Sender struct {
	client *resty.Client
	apiKey string
	from   string
}

// NewSender constructs a Sender against the provider base URL. A short
// timeout keeps a slow provider from holding intake requests hostage.
func NewSender(baseURL, apiKey, from string) *Sender {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second).
		SetRetryCount(1)
	return &Sender{client: client, apiKey: apiKey, from: sysutil.FirstNonEmpty(from, "ILECO")}
}

// Send delivers one message. Errors are returned for logging but callers
// are expected to treat them as non-fatal.
func (s *Sender) Send(ctx context.Context, to, message string) error {
	if s.client.BaseURL == "" {
		log.Debug().Str("to", to).Msg("sms provider not configured, confirmation skipped")
		return nil
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"apikey":     s.apiKey,
			"number":     to,
			"message":    message,
			"sendername": s.from,
		}).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("sms send: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sms send: provider returned %s", resp.Status())
	}
	return nil
}

// Confirmation renders the reply quoted back to a complainant.
func Confirmation(issueType, reference string) string {
	return fmt.Sprintf("ILECO: Your %s report has been received. Reference: %s. A crew will be dispatched as needed.", issueType, reference)
}
