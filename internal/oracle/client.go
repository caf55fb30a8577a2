// Package oracle implements the external validation call against the
// oracle HTTP endpoint.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"lockRelay/internal/model"
)

const maxResponseBytes = 1 << 20

// validateRequest is the oracle request body.
type validateRequest struct {
	TransactionHash string `json:"transactionHash"`
	SourceChain     string `json:"sourceChain"`
	Amount          string `json:"amount"`
}

// validateResponse is the oracle response body.
type validateResponse struct {
	IsValid bool `json:"isValid"`
}

// Client validates lock events against the oracle endpoint.
//
// Outcome mapping: HTTP 200 with isValid=true is an acceptance; any
// other 2xx/4xx status, isValid=false, or a malformed body is a
// definitive rejection; a transport error, timeout, or 5xx status is
// returned as an error so the caller can retry before failing closed.
type Client struct {
	url         string
	apiKey      string
	sourceChain string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient builds an oracle client.
func NewClient(url, apiKey, sourceChain string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("oracle url is required")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		url:         url,
		apiKey:      apiKey,
		sourceChain: sourceChain,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}, nil
}

// Validate asks the oracle whether the lock event is genuine.
func (c *Client) Validate(ctx context.Context, event model.LockEvent) (bool, error) {
	payload := validateRequest{
		TransactionHash: event.TxHash,
		SourceChain:     c.sourceChain,
		Amount:          event.AmountString(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("oracle request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false, fmt.Errorf("read oracle response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return false, fmt.Errorf("oracle status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("oracle rejected request",
			zap.Int("status", resp.StatusCode),
			zap.String("tx_hash", event.TxHash),
		)
		return false, nil
	}

	var decoded validateResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		c.logger.Warn("oracle response malformed",
			zap.Error(err),
			zap.String("tx_hash", event.TxHash),
		)
		return false, nil
	}

	return decoded.IsValid, nil
}
