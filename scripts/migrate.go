package main

import (
	"log"

	"github.com/valpere/nebo/internal/config"
	"github.com/valpere/nebo/internal/database"
)

// Creates the key-value table for the configured SQL backend ahead of the first start
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect migrates as part of opening the database
	db, err := database.Connect(&cfg.Storage, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to migrate %s storage: %v", cfg.Storage.Backend, err)
	}
	defer func() { _ = database.Close(db) }()

	log.Printf("Migrations completed successfully for %s storage", cfg.Storage.Backend)
}
