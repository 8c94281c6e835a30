package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// payoutRequest is the JSON body posted to the payout endpoint.
type payoutRequest struct {
	TransferID string `json:"transfer_id"`
	Recipient  string `json:"recipient"`
	Amount     string `json:"amount"`
}

// HTTPRailConfig configures HTTPRail.
type HTTPRailConfig struct {
	URL          string
	Secret       string
	MaxAttempts  int
	RetryBackoff time.Duration
}

// HTTPRail executes transfers by posting them to an external payout
// service. Requests are HMAC-signed and carry the transfer id as
// Idempotency-Key, so retries never pay twice on a well-behaved service.
// Network errors and 5xx responses are retried with doubling backoff;
// any other non-2xx response fails the transfer immediately.
type HTTPRail struct {
	cfg    HTTPRailConfig
	client HTTPClient
	sigSvc ports.SignatureService
	log    zerolog.Logger
	now    func() time.Time
}

func NewHTTPRail(cfg HTTPRailConfig, client HTTPClient, sigSvc ports.SignatureService, log zerolog.Logger) *HTTPRail {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &HTTPRail{cfg: cfg, client: client, sigSvc: sigSvc, log: log, now: time.Now}
}

func (r *HTTPRail) Transfer(ctx context.Context, t domain.PendingTransfer) error {
	body, err := json.Marshal(payoutRequest{
		TransferID: t.ID.String(),
		Recipient:  t.Recipient,
		Amount:     t.Amount.String(),
	})
	if err != nil {
		return fmt.Errorf("encoding payout: %w", err)
	}

	backoff := r.cfg.RetryBackoff
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			sleep(ctx, backoff)
			if ctx.Err() != nil {
				return fmt.Errorf("payout %s: %w", t.ID, ctx.Err())
			}
			backoff *= 2
		}

		status, err := r.post(ctx, t.ID.String(), body)
		switch {
		case err != nil:
			lastErr = err
			r.log.Warn().Err(err).Str("transfer_id", t.ID.String()).Int("attempt", attempt).Msg("payout: delivery failed")
			continue
		case status >= 200 && status < 300:
			r.log.Info().Str("transfer_id", t.ID.String()).Int("attempt", attempt).Int("status", status).Msg("payout: settled")
			return nil
		case status >= 500:
			lastErr = fmt.Errorf("payout service returned %d", status)
			r.log.Warn().Str("transfer_id", t.ID.String()).Int("attempt", attempt).Int("status", status).Msg("payout: server error, retrying")
			continue
		default:
			return fmt.Errorf("payout %s rejected with status %d: %w", t.ID, status, ErrTransferRejected)
		}
	}

	r.log.Error().Str("transfer_id", t.ID.String()).Msg("payout: all retry attempts exhausted")
	return fmt.Errorf("payout %s: %d attempts exhausted: %w", t.ID, r.cfg.MaxAttempts, lastErr)
}

func (r *HTTPRail) post(ctx context.Context, transferID string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building payout request: %w", err)
	}

	ts := r.now().Unix()
	nonce := uuid.NewString()
	canonical := r.sigSvc.BuildCanonicalString(http.MethodPost, req.URL.Path, ts, nonce, string(body))

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", transferID)
	req.Header.Set("X-Timestamp", strconv.FormatInt(ts, 10))
	req.Header.Set("X-Nonce", nonce)
	req.Header.Set("X-Signature", r.sigSvc.Sign(r.cfg.Secret, canonical))

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
