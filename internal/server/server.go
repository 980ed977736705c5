package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"arcade-server/internal/ledger"
)

type Server struct {
	config      Config
	connections *ConnectionManager
	broadcaster *Broadcaster
	matchmaker  *Matchmaker
	limiter     *RateLimiter
	ledgerClose func()
}

func NewServer() (*Server, *http.Server) {
	cfg := LoadConfig()

	svc, closeLedger := newLedgerService(cfg)

	connections := NewConnectionManager()
	broadcaster := NewBroadcaster(connections)

	s := &Server{
		config:      cfg,
		connections: connections,
		broadcaster: broadcaster,
		matchmaker:  NewMatchmaker(broadcaster, svc),
		limiter:     NewRateLimiter(cfg.RateLimitPerSec, time.Second),
		ledgerClose: closeLedger,
	}

	// Start background tasks
	go s.limiterCleanupTask()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, httpServer
}

// newLedgerService picks the ledger backend from config: external HTTP
// service, owned Postgres table, or a logging noop.
func newLedgerService(cfg Config) (ledger.Service, func()) {
	if cfg.LedgerURL != "" {
		log.Printf("Using external ledger at %s", cfg.LedgerURL)
		return ledger.NewClient(cfg.LedgerURL), func() {}
	}

	if cfg.DatabaseURL != "" {
		store, err := ledger.NewPostgresStore(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect ledger database: %v", err)
		}
		log.Println("Using Postgres ledger store")
		return store, store.Close
	}

	return ledger.Noop{}, func() {}
}

// limiterCleanupTask periodically drops rate limit state for idle
// connections.
func (s *Server) limiterCleanupTask() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.limiter.Cleanup()
	}
}

// Shutdown closes every live connection and releases the ledger
// backend. The per-connection read loops handle room cleanup as they
// observe the closures.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Printf("Closing %d connections", s.connections.Count())
	s.connections.CloseAll()

	s.ledgerClose()
	return ctx.Err()
}
