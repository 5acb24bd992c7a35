package main

import (
	"context"
	"exsighting-location/internal/adapters/geocode"
	"exsighting-location/internal/adapters/kvstore"
	"exsighting-location/internal/adapters/repositories"
	"exsighting-location/internal/config"
	"exsighting-location/internal/platform/db"
	"exsighting-location/internal/ports"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	ctx := context.Background()

	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/places.json")

	sqlDB, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	var geocoder ports.Geocoder
	if key := strings.TrimSpace(os.Getenv("ORS_API_KEY")); key != "" {
		g, err := geocode.NewORSGeocoder(key)
		if err != nil {
			log.Fatal(err)
		}
		// Lookups are memoized in the local kv_store.
		cached, err := geocode.NewCachedGeocoder(g, kvstore.NewSqliteKVStore(sqlDB))
		if err != nil {
			log.Fatal(err)
		}
		geocoder = cached
	}

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(sqlDB); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	if err := repositories.SeedFromJSON(ctx, sqlDB, seedPath, geocoder); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		return
	}

	pg, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pg.Close()

	log.Println("Initializing postgres kv_store...")
	if err := repositories.InitPostgresSchema(ctx, pg); err != nil {
		log.Fatalf("postgres schema initialization failed: %v", err)
	}
	log.Println("Postgres ready.")
}
