package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func ekqrStatusServer(t *testing.T, gotDate *string, body map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		*gotDate = r.FormValue("txn_date")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Fatalf("failed to encode response: %v", err)
		}
	}))
}

func TestEKQRCheckStatusUsesCreationDate(t *testing.T) {
	var gotDate string
	srv := ekqrStatusServer(t, &gotDate, map[string]interface{}{
		"status": true,
		"msg":    "ok",
		"result": map[string]string{"txnStatus": "success"},
	})
	defer srv.Close()

	client := NewEKQRClient("key", srv.URL, 5*time.Second)
	createdAt := time.Date(2024, 6, 1, 23, 50, 0, 0, time.UTC)

	status, err := client.CheckStatus(context.Background(), "SHB-000001", createdAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != OrderPaid {
		t.Fatalf("expected PAID, got %s", status)
	}
	if gotDate != "01-06-2024" {
		t.Fatalf("lookup must carry the order's creation date, got %q", gotDate)
	}
}

func TestEKQRCheckStatusUnknownOrder(t *testing.T) {
	var gotDate string
	srv := ekqrStatusServer(t, &gotDate, map[string]interface{}{
		"status": false,
		"msg":    "Transaction not found",
	})
	defer srv.Close()

	client := NewEKQRClient("key", srv.URL, 5*time.Second)

	_, err := client.CheckStatus(context.Background(), "SHB-000002", time.Now())
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
