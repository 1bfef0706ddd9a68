package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/kioskops/ledger/internal/api"
	"github.com/kioskops/ledger/internal/ingestion"
	"github.com/kioskops/ledger/internal/repository"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	port := envDefault("PORT", "8080")
	dbPath := envDefault("DB_PATH", "ledger.db")
	sessionTTL := envMinutes("SESSION_TTL_MINUTES", 30)

	log.Printf("Initializing database at %s", dbPath)
	db, err := repository.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	store := repository.NewStore(db)
	txnRepo := repository.NewTransactionRepo(db)
	termRepo := repository.NewTerminalRepo(db)
	importRepo := repository.NewImportRepo(db)

	ingestSvc := ingestion.NewService(store, importRepo, sessionTTL)

	// Seed reference data if the DB is empty.
	count, err := repository.NewLocationRepo(db).Count()
	if err != nil {
		log.Fatalf("Failed to count locations: %v", err)
	}
	if count == 0 {
		log.Println("Database is empty, seeding from testdata...")
		if err := seed(store); err != nil {
			log.Printf("WARNING: Failed to seed: %v", err)
		}
	} else {
		log.Printf("Database already has %d locations, skipping seed", count)
	}

	router := api.NewRouter(store, txnRepo, termRepo, importRepo, ingestSvc)

	log.Printf("Kiosk Ledger")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("API base: http://localhost:%s/api/v1", port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  POST   /api/v1/imports")
	log.Printf("  GET    /api/v1/imports")
	log.Printf("  GET    /api/v1/imports/sessions/{id}")
	log.Printf("  POST   /api/v1/imports/sessions/{id}/file")
	log.Printf("  POST   /api/v1/imports/sessions/{id}/mapping")
	log.Printf("  POST   /api/v1/imports/sessions/{id}/process")
	log.Printf("  GET    /api/v1/data")
	log.Printf("  GET    /api/v1/transactions")
	log.Printf("  GET    /api/v1/reports/profitability")
	log.Printf("  GET    /api/v1/dashboard")

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envMinutes(key string, def int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m > 0 {
			return time.Duration(m) * time.Minute
		}
	}
	return time.Duration(def) * time.Minute
}

func seed(store *repository.Store) error {
	// Try multiple possible locations for testdata.
	candidates := []string{
		filepath.Join("testdata", "seed.json"),
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, "testdata", "seed.json"),
			filepath.Join(dir, "..", "..", "testdata", "seed.json"),
		)
	}

	var data []byte
	var loadErr error
	for _, path := range candidates {
		data, loadErr = os.ReadFile(path)
		if loadErr == nil {
			log.Printf("Loaded seed data from %s", path)
			break
		}
	}
	if loadErr != nil {
		return fmt.Errorf("could not find seed.json in any candidate path: %w", loadErr)
	}

	var snap repository.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("unmarshal seed: %w", err)
	}

	if err := store.SyncBatch(nil, snap.Locations, snap.Terminals, snap.Transactions); err != nil {
		return fmt.Errorf("sync seed: %w", err)
	}

	log.Printf("Seeded %d locations, %d terminals, %d transactions",
		len(snap.Locations), len(snap.Terminals), len(snap.Transactions))
	return nil
}
