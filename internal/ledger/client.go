package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client calls an external ledger service over HTTP. The contract is a
// single request/response call: POST /credit with the identity and
// amount, returning the player's new balance.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

type creditRequest struct {
	Identity string `json:"identity"`
	Amount   int    `json:"amount"`
}

type creditResponse struct {
	Balance int64 `json:"balance"`
}

func (c *Client) CreditCoins(ctx context.Context, identity string, amount int) (int64, error) {
	body, err := json.Marshal(creditRequest{Identity: identity, Amount: amount})
	if err != nil {
		return 0, fmt.Errorf("failed to encode credit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/credit", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build credit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ledger request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ledger returned status %d", resp.StatusCode)
	}

	var out creditResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode ledger response: %w", err)
	}

	return out.Balance, nil
}
