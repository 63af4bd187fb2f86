package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/hyoshino/fruitledger/internal/config"
	"github.com/hyoshino/fruitledger/internal/db"
	"github.com/hyoshino/fruitledger/internal/model"
	"github.com/hyoshino/fruitledger/internal/server"
)

var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	// When DB config is present the server holds writes until the persisted
	// ledger is restored; otherwise it runs memory-only.
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		log.Printf("config load error: %v (running memory-only)", cfgErr)
	}

	srv := server.New(nil, cfgErr == nil, gitSHA, buildTime)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	errCh := make(chan error, 1)

	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	// Attach the database in the background so the server is reachable even
	// while the DB is still coming up.
	go func() {
		if cfgErr != nil {
			return
		}
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Printf("db connect error: %v (writes stay disabled)", err)
			return
		}
		if err := conn.AutoMigrate(&model.Listing{}, &model.Reputation{}, &model.WalletAccount{}); err != nil {
			log.Printf("auto migrate error: %v", err)
		}
		if err := srv.SetDB(conn); err != nil {
			log.Printf("ledger restore error: %v", err)
		}
	}()

	if err := <-errCh; err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
