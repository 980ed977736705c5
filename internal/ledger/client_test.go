package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientCreditCoins(t *testing.T) {
	var gotIdentity string
	var gotAmount int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/credit", r.URL.Path)

		var req creditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		gotIdentity = req.Identity
		gotAmount = req.Amount

		json.NewEncoder(w).Encode(creditResponse{Balance: 42})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	balance, err := c.CreditCoins(context.Background(), "user-1", 5)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), balance)
	assert.Equal(t, "user-1", gotIdentity)
	assert.Equal(t, 5, gotAmount)
}

func TestClientCreditCoinsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CreditCoins(context.Background(), "user-1", 5)
	assert.Error(t, err)
}

func TestClientCreditCoinsUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.CreditCoins(context.Background(), "user-1", 5)
	assert.Error(t, err)
}

func TestNoopCreditCoins(t *testing.T) {
	balance, err := Noop{}.CreditCoins(context.Background(), "user-1", CoinsDraw)
	assert.NoError(t, err)
	assert.Equal(t, int64(CoinsDraw), balance)
}
