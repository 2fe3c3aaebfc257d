package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/idea404/bos-commerce/internal/api"
	"github.com/idea404/bos-commerce/internal/db"
	"github.com/idea404/bos-commerce/internal/market"
	"github.com/idea404/bos-commerce/internal/metrics"
	"github.com/idea404/bos-commerce/internal/store"
	"github.com/idea404/bos-commerce/internal/wallet"
	"github.com/idea404/bos-commerce/pkg/logging"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: commerce <init|serve>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		cmdInit(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\nUsage: commerce <init|serve>\n", os.Args[1])
		os.Exit(1)
	}
}

func cmdInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dbPath := fs.String("db", "commerce.sqlite3", "path to SQLite database file")
	fs.Parse(args)

	if _, err := os.Stat(*dbPath); err == nil {
		fmt.Fprintf(os.Stderr, "Error: database file %s already exists\n", *dbPath)
		os.Exit(1)
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		os.Remove(*dbPath)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database created: %s\n", *dbPath)
	fmt.Println("Schema initialized. Accounts register themselves via POST /api/auth/register.")
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	dbPath := fs.String("db", "commerce.sqlite3", "path to SQLite database file")
	addr := fs.String("addr", ":8080", "listen address")
	contract := fs.String("contract", "marketplace", "the marketplace's own treasury account")
	seed := fs.String("seed", "10", "starting balance (in NEAR) minted for new accounts; 0 disables")
	fs.Parse(args)

	logging.Setup()

	// Open database, auto-initializing if it does not exist yet.
	database, err := db.Open(*dbPath)
	if err != nil {
		slog.Error("opening database", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		slog.Error("migrating database", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		slog.Error("loading JWT secret", "error", err)
		os.Exit(1)
	}

	seedBalance, err := market.ToYocto(*seed)
	if err != nil {
		slog.Error("parsing seed balance", "seed", *seed, "error", err)
		os.Exit(1)
	}

	w := wallet.New(database)
	treasury := wallet.NewTreasury(w, *contract)
	engine := market.New(database, *contract, treasury, time.Now)

	router := api.NewRouter(api.Config{
		DB:          database,
		Engine:      engine,
		Wallet:      w,
		Contract:    *contract,
		JWTSecret:   jwtSecret,
		SeedBalance: seedBalance,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", router)
	mux.Handle("GET /metrics", metrics.Handler())

	server := &http.Server{
		Addr:    *addr,
		Handler: api.LoggingMiddleware(mux),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server listening", "addr", *addr, "contract", *contract)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-shutdownCtx.Done()
	slog.Info("shutting down")

	timeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(timeout); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
