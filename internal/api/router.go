package api

import (
	"database/sql"
	"math/big"
	"net/http"

	"github.com/idea404/bos-commerce/internal/market"
	"github.com/idea404/bos-commerce/internal/wallet"
)

// Config carries the router's dependencies.
type Config struct {
	DB        *sql.DB
	Engine    *market.Engine
	Wallet    *wallet.Wallet
	Contract  string // the marketplace's own treasury account
	JWTSecret string

	// SeedBalance is minted into newly registered accounts (nil disables).
	SeedBalance *big.Int
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{
		DB:          cfg.DB,
		Wallet:      cfg.Wallet,
		JWTSecret:   cfg.JWTSecret,
		SeedBalance: cfg.SeedBalance,
	}
	itemsHandler := &ItemsHandler{
		DB:       cfg.DB,
		Engine:   cfg.Engine,
		Wallet:   cfg.Wallet,
		Contract: cfg.Contract,
	}
	accountsHandler := &AccountsHandler{DB: cfg.DB}
	transfersHandler := &TransfersHandler{DB: cfg.DB}
	walletHandler := &WalletHandler{Wallet: cfg.Wallet}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.DB)

	// Public: registration, login, and the read-only query surface.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}/image", itemsHandler.Image)
	mux.HandleFunc("GET /api/items/{id}/history", itemsHandler.History)
	mux.HandleFunc("GET /api/transfers", transfersHandler.List)
	mux.HandleFunc("GET /api/accounts", accountsHandler.List)
	mux.HandleFunc("GET /api/accounts/{account}/items", accountsHandler.Items)

	// Authenticated: session management and the mutating operations.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("POST /api/items/{id}/list", authMW(http.HandlerFunc(itemsHandler.ListForSale)))
	mux.Handle("POST /api/items/{id}/delist", authMW(http.HandlerFunc(itemsHandler.Delist)))
	mux.Handle("POST /api/items/{id}/purchase", authMW(http.HandlerFunc(itemsHandler.Purchase)))
	mux.Handle("GET /api/wallet", authMW(http.HandlerFunc(walletHandler.Balance)))

	return mux
}
