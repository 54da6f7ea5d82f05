package main

import (
	"log"

	"github.com/emberdating/ember-server/internal/config"
	"github.com/emberdating/ember-server/internal/db"
)

// Seeds the database with demo profiles, likes and sponsored cards.
func main() {
	cfg := config.New()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	if err := db.SeedTestData(database); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	log.Println("seed complete")
}
