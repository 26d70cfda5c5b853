// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"wallet-ledger/internal/api/handler"
	"wallet-ledger/internal/api/middleware"
)

// DefaultTimeout bounds every request handled by the router.
const DefaultTimeout = 30 * time.Second

// RouterConfig carries what the router needs besides the handlers.
type RouterConfig struct {
	JWTSecret []byte
	// Cache enables Idempotency-Key replay when non-nil.
	Cache          *redis.Client
	IdempotencyTTL time.Duration
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(walletHandler *handler.WalletHandler, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimiddleware.RequestID)               // Add a request ID to the context
	r.Use(chimiddleware.RealIP)                  // Use the real IP address
	r.Use(chimiddleware.Logger)                  // Log HTTP requests
	r.Use(chimiddleware.Recoverer)               // Recover from panics and return 500
	r.Use(chimiddleware.Timeout(DefaultTimeout)) // Set a default timeout for requests

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Wallet API routes
	r.Route("/wallets", func(r chi.Router) {
		r.Use(middleware.Authenticator(cfg.JWTSecret, logger))
		if cfg.Cache != nil {
			r.Use(middleware.Idempotency(cfg.Cache, cfg.IdempotencyTTL, logger))
		}

		r.Post("/", walletHandler.CreateWallet)
		r.Get("/", walletHandler.ListWallets)
		r.Get("/{walletID}", walletHandler.GetWallet)
		r.Post("/{walletID}/deposit", walletHandler.Deposit)
		r.Post("/{walletID}/transfer-to/{recipientID}", walletHandler.Transfer)
		r.Get("/{walletID}/operations", walletHandler.ListOperations)
	})

	return r
}
