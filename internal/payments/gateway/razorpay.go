package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RazorpayClient talks to the Razorpay orders API. Amounts are rupees on our
// side and paise on the wire.
type RazorpayClient struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewRazorpayClient(keyID, keySecret, baseURL string, timeout time.Duration) *RazorpayClient {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}
	return &RazorpayClient{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *RazorpayClient) Name() string {
	return "razorpay"
}

type razorpayOrder struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
	AmountPaid int64  `json:"amount_paid"`
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, amount float64, receipt string) (*Order, error) {
	payload := map[string]interface{}{
		"amount":   int64(amount * 100),
		"currency": "INR",
		"receipt":  receipt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay order request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("razorpay order request returned status %d", resp.StatusCode)
	}

	var order razorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode razorpay order: %w", err)
	}

	return &Order{
		Ref:      order.ID,
		Amount:   float64(order.Amount) / 100,
		Currency: order.Currency,
	}, nil
}

func (c *RazorpayClient) CheckStatus(ctx context.Context, ref string, _ time.Time) (OrderStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders/"+ref, nil)
	if err != nil {
		return OrderPending, fmt.Errorf("failed to build status request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return OrderPending, fmt.Errorf("razorpay status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return OrderPending, ErrOrderNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return OrderPending, fmt.Errorf("razorpay status request returned status %d", resp.StatusCode)
	}

	var order razorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return OrderPending, fmt.Errorf("failed to decode razorpay order: %w", err)
	}

	switch order.Status {
	case "paid":
		return OrderPaid, nil
	case "attempted", "created":
		return OrderPending, nil
	default:
		return OrderFailed, nil
	}
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header, an HMAC
// SHA256 of the raw body keyed with the webhook secret.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
