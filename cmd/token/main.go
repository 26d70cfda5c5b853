// cmd/token/main.go
//
// Command token prints a bearer token for local development. Identity is owned
// by an external service in production; this only signs with JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"wallet-ledger/internal/api/middleware"
	"wallet-ledger/internal/config"
)

func main() {
	owner := flag.String("owner", "", "owner id to put in the token subject (random when empty)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ownerID := uuid.New()
	if *owner != "" {
		ownerID, err = uuid.Parse(*owner)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -owner: %v\n", err)
			os.Exit(2)
		}
	}

	token, err := middleware.SignToken([]byte(cfg.JWTSecret), ownerID, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "owner: %s\n", ownerID)
	fmt.Println(token)
}
