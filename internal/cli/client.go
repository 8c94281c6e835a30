package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"pooled-multisender/internal/adapter/http/dto"
	"pooled-multisender/internal/core/domain"
)

// Mode selects how a multisend is funded.
type Mode string

const (
	ModeAttached Mode = "attached"
	ModeBalance  Mode = "balance"
	ModeUnsafe   Mode = "unsafe"
)

func (m Mode) path() (string, error) {
	switch m {
	case ModeAttached:
		return "/api/v1/multisend/attached", nil
	case ModeBalance:
		return "/api/v1/multisend/balance", nil
	case ModeUnsafe:
		return "/api/v1/multisend/balance-unsafe", nil
	default:
		return "", fmt.Errorf("unknown mode %q (attached, balance, unsafe)", m)
	}
}

// APIError is an error envelope returned by the ledger.
type APIError struct {
	Status  int
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Code, e.Message, e.Status)
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Client calls the ledger HTTP API on behalf of one account.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: hc}
}

// Balance returns the stored balance of account.
func (c *Client) Balance(ctx context.Context, account string) (domain.Amount, error) {
	var resp dto.BalanceResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/deposits/"+url.PathEscape(account), nil, "", &resp); err != nil {
		return domain.Amount{}, err
	}
	return domain.ParseAmount(resp.Balance)
}

// Deposit credits amount to the caller and returns the new balance.
func (c *Client) Deposit(ctx context.Context, amount domain.Amount, idemKey string) (domain.Amount, error) {
	var resp dto.BalanceResponse
	body := dto.DepositRequest{AttachedDeposit: amount.String()}
	if err := c.do(ctx, http.MethodPost, "/api/v1/deposit", body, idemKey, &resp); err != nil {
		return domain.Amount{}, err
	}
	return domain.ParseAmount(resp.Balance)
}

// Withdraw returns the caller's whole balance.
func (c *Client) Withdraw(ctx context.Context) (domain.TransferHandle, error) {
	var handle domain.TransferHandle
	err := c.do(ctx, http.MethodPost, "/api/v1/withdraw", nil, "", &handle)
	return handle, err
}

// Multisend submits one batch. attached is only sent in attached mode.
func (c *Client) Multisend(ctx context.Context, mode Mode, attached domain.Amount, ops []domain.Operation, idemKey string) (*dto.MultisendResponse, error) {
	path, err := mode.path()
	if err != nil {
		return nil, err
	}

	var body any = dto.MultisendBalanceRequest{Operations: dto.FromOperations(ops)}
	if mode == ModeAttached {
		body = dto.MultisendAttachedRequest{AttachedDeposit: attached.String(), Operations: dto.FromOperations(ops)}
	}

	var resp dto.MultisendResponse
	if err := c.do(ctx, http.MethodPost, path, body, idemKey, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, idemKey string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = "HTTP"
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
