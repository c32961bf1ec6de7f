package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// EKQRClient talks to a UPI QR provider with a form-encoded API. Orders are
// created with a client-chosen reference and paid by scanning the returned
// QR image.
type EKQRClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewEKQRClient(apiKey, baseURL string, timeout time.Duration) *EKQRClient {
	return &EKQRClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *EKQRClient) Name() string {
	return "ekqr"
}

type ekqrResponse struct {
	Status bool            `json:"status"`
	Msg    string          `json:"msg"`
	Result json.RawMessage `json:"result"`
}

type ekqrOrderResult struct {
	OrderID    int    `json:"orderId"`
	PaymentURL string `json:"payment_url"`
}

type ekqrStatusResult struct {
	TxnStatus string `json:"txnStatus"`
}

func (c *EKQRClient) post(ctx context.Context, path string, form url.Values) (*ekqrResponse, error) {
	form.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build ekqr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ekqr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ekqr request returned status %d", resp.StatusCode)
	}

	var out ekqrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode ekqr response: %w", err)
	}
	return &out, nil
}

func (c *EKQRClient) CreateOrder(ctx context.Context, amount float64, receipt string) (*Order, error) {
	form := url.Values{}
	form.Set("client_txn_id", receipt)
	form.Set("amount", strconv.FormatFloat(amount, 'f', 2, 64))
	form.Set("p_info", "Booking "+receipt)

	resp, err := c.post(ctx, "/create_order", form)
	if err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("ekqr order creation rejected: %s", resp.Msg)
	}

	var result ekqrOrderResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to decode ekqr order result: %w", err)
	}

	return &Order{
		Ref:        receipt,
		Amount:     amount,
		Currency:   "INR",
		PaymentURL: result.PaymentURL,
	}, nil
}

// CheckStatus looks an order up by reference and creation date. The provider
// keys the lookup on txn_date, so an order created before midnight is only
// found under the day it was created, never under today.
func (c *EKQRClient) CheckStatus(ctx context.Context, ref string, createdAt time.Time) (OrderStatus, error) {
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	form := url.Values{}
	form.Set("client_txn_id", ref)
	form.Set("txn_date", createdAt.Format("02-01-2006"))

	resp, err := c.post(ctx, "/check_order_status", form)
	if err != nil {
		return OrderPending, err
	}
	if !resp.Status {
		// The API reports unknown refs as a failed lookup, not an HTTP 404
		if strings.Contains(strings.ToLower(resp.Msg), "not found") {
			return OrderPending, ErrOrderNotFound
		}
		return OrderPending, fmt.Errorf("ekqr status lookup rejected: %s", resp.Msg)
	}

	var result ekqrStatusResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return OrderPending, fmt.Errorf("failed to decode ekqr status result: %w", err)
	}

	switch strings.ToLower(result.TxnStatus) {
	case "success":
		return OrderPaid, nil
	case "failure", "failed":
		return OrderFailed, nil
	default:
		return OrderPending, nil
	}
}
