package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

// Config holds the Razorpay API credentials and client settings.
type Config struct {
	KeyID     string
	KeySecret string
	BaseURL   string        // overridable for tests
	Timeout   time.Duration // defaults to 10s
}

// Client talks to the Razorpay Orders and Refunds REST API. Every call is
// bounded by the configured HTTP timeout.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a new Razorpay client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type refundResponse struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// CreateOrder creates a gateway order for the payable amount (paise) and
// returns the Razorpay order id.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	if amount <= 0 {
		return "", errors.New("razorpay: order amount must be positive")
	}

	payload := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}

	var out orderResponse
	if err := c.post(ctx, "/orders", payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("razorpay: order response missing id")
	}
	return out.ID, nil
}

// Refund issues a refund of the given amount (paise) against a captured
// payment and returns the Razorpay refund id.
func (c *Client) Refund(ctx context.Context, paymentID string, amount int64) (string, error) {
	if paymentID == "" {
		return "", errors.New("razorpay: payment id is required")
	}
	if amount <= 0 {
		return "", errors.New("razorpay: refund amount must be positive")
	}

	payload := map[string]interface{}{
		"amount": amount,
	}

	var out refundResponse
	path := "/payments/" + url.PathEscape(paymentID) + "/refund"
	if err := c.post(ctx, path, payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("razorpay: refund response missing id")
	}
	return out.ID, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("razorpay: %s (%s)", apiErr.Error.Description, apiErr.Error.Code)
		}
		return fmt.Errorf("razorpay: unexpected status %d", resp.StatusCode)
	}

	return json.Unmarshal(respBody, out)
}
