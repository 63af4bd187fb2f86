package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hyoshino/fruitledger/internal/config"
	"github.com/hyoshino/fruitledger/internal/db"
	"github.com/hyoshino/fruitledger/internal/ledger"
	"github.com/hyoshino/fruitledger/internal/model"
	"github.com/hyoshino/fruitledger/internal/repository"
	"github.com/hyoshino/fruitledger/internal/settlement"
)

type seedFile struct {
	Listings []seedListing `yaml:"listings"`
}

type seedListing struct {
	Name   string `yaml:"name"`
	Price  uint64 `yaml:"price"`
	Seller string `yaml:"seller"`
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(&model.Listing{}, &model.Reputation{}, &model.WalletAccount{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	entries, err := loadSeedFile(cfg.SeedFile)
	if err != nil {
		return err
	}

	store := repository.NewLedgerStore(gdb,
		repository.NewListingRepository(gdb),
		repository.NewReputationRepository(gdb))

	listings, reps, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	if len(listings) > 0 && os.Getenv("FORCE_SEED") != "true" {
		log.Printf("listings already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	// Seeding goes through the engine so listing validation applies and the
	// assigned indexes continue from the persisted tail.
	engine := ledger.New(settlement.NewMemoryWallet(), store)
	engine.Restore(listings, reps)

	for _, entry := range entries {
		seller := entry.Seller
		if seller == "" {
			seller = "demo-" + uuid.NewString()
		}
		idx, err := engine.Create(ctx, seller, entry.Name, entry.Price)
		if err != nil {
			return fmt.Errorf("create %q: %w", entry.Name, err)
		}
		log.Printf("seeded listing %d: %s (%d) by %s", idx, entry.Name, entry.Price, seller)
	}

	log.Printf("seeded %d listings", len(entries))
	return nil
}

func loadSeedFile(path string) ([]seedListing, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(f.Listings) == 0 {
		return nil, fmt.Errorf("seed file %s has no listings", path)
	}
	return f.Listings, nil
}
