// Package ledger holds the coin-credit collaborator. The game server
// treats it as advisory: credits are issued once per participant when a
// game ends, and a failed credit never affects game state.
package ledger

import (
	"context"
	"log"
)

// Coin amounts awarded per outcome, from each participant's own
// perspective.
const (
	CoinsLoss = 1
	CoinsDraw = 2
	CoinsWin  = 5
)

// Service credits coins to a player's balance and returns the new
// balance.
type Service interface {
	CreditCoins(ctx context.Context, identity string, amount int) (int64, error)
}

// Noop logs credits without storing them. Used when no ledger backend
// is configured, so local play needs no external infrastructure.
type Noop struct{}

func (Noop) CreditCoins(_ context.Context, identity string, amount int) (int64, error) {
	log.Printf("Ledger disabled: would credit %d coins to %s", amount, identity)
	return int64(amount), nil
}
