package oracle

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lockRelay/internal/model"
)

func testEvent() model.LockEvent {
	return model.LockEvent{
		TxHash:      "0xabc123",
		BlockNumber: 1000,
		Amount:      big.NewInt(5000000),
	}
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(url, "secret", "Ethereum", time.Second, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestValidateAccepted(t *testing.T) {
	var gotBody validateRequest
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]bool{"isValid": true})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	accepted, err := client.Validate(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !accepted {
		t.Fatalf("expected acceptance")
	}

	if gotKey != "secret" {
		t.Fatalf("api key header = %q, want secret", gotKey)
	}
	if gotBody.TransactionHash != "0xabc123" {
		t.Fatalf("transactionHash = %q", gotBody.TransactionHash)
	}
	if gotBody.SourceChain != "Ethereum" {
		t.Fatalf("sourceChain = %q", gotBody.SourceChain)
	}
	if gotBody.Amount != "5000000" {
		t.Fatalf("amount = %q, want 5000000", gotBody.Amount)
	}
}

func TestValidateRejectedByBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"isValid": false})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	accepted, err := client.Validate(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if accepted {
		t.Fatalf("expected rejection")
	}
}

func TestValidateRejectedByStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	accepted, err := client.Validate(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("a non-5xx status is a rejection, not an error: %v", err)
	}
	if accepted {
		t.Fatalf("expected rejection")
	}
}

func TestValidateMalformedBodyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	accepted, err := client.Validate(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if accepted {
		t.Fatalf("expected rejection for malformed body")
	}
}

func TestValidateServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.Validate(context.Background(), testEvent()); err == nil {
		t.Fatalf("expected error for 5xx status")
	}
}

func TestValidateTransportErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.Validate(context.Background(), testEvent()); err == nil {
		t.Fatalf("expected error for unreachable oracle")
	}
}
