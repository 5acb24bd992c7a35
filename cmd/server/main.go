package main

import (
	"context"
	"database/sql"
	"exsighting-location/internal/adapters/geocode"
	"exsighting-location/internal/adapters/kvstore"
	"exsighting-location/internal/adapters/position"
	"exsighting-location/internal/adapters/repositories"
	"exsighting-location/internal/api"
	"exsighting-location/internal/config"
	"exsighting-location/internal/domain"
	"exsighting-location/internal/platform/db"
	"exsighting-location/internal/ports"
	"exsighting-location/internal/services"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, Postgres, Redis, ip-api, ORS) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// Places always live in the local SQLite database.
	placesDB, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer placesDB.Close()

	var geocoder ports.Geocoder
	if strings.TrimSpace(cfg.ORSAPIKey) != "" {
		g, err := geocode.NewORSGeocoder(cfg.ORSAPIKey)
		if err != nil {
			log.Fatal(err)
		}
		// Lookups are memoized in the local kv_store.
		cached, err := geocode.NewCachedGeocoder(g, kvstore.NewSqliteKVStore(placesDB))
		if err != nil {
			log.Fatal(err)
		}
		geocoder = cached
	}

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(ctx, placesDB, cfg.SeedPath, geocoder); err != nil {
		log.Fatal(err)
	}

	store, closeStore, err := openStore(ctx, cfg, placesDB)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	provider, err := openProvider(cfg)
	if err != nil {
		log.Fatal(err)
	}

	svc := services.NewLocationService(provider, services.NewLocationCache(store), services.LocationServiceOptions{
		EnableHighAccuracy: cfg.LocationHighAccuracy,
		Timeout:            cfg.LocationTimeout,
		MaximumAge:         cfg.LocationMaxAge,
	})

	repo := repositories.NewSqlitePlaceRepository(placesDB)
	router := api.NewRouter(svc, repo, api.RouterOptions{
		DefaultMaxAge: cfg.LocationMaxAge,
		CORSOrigins:   cfg.CORSOrigin,
	})

	log.Printf(
		"Server listening addr=:%s store=%s provider=%s supported=%t",
		cfg.Port, cfg.StoreBackend, cfg.PositionProvider, svc.Supported(),
	)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.LocationTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func initAndSeed(ctx context.Context, sqlDB *sql.DB, seedPath string, geocoder ports.Geocoder) error {
	if err := repositories.InitSchema(sqlDB); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(ctx, sqlDB, seedPath, geocoder); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

// openStore builds the key-value store the location cache persists to.
func openStore(ctx context.Context, cfg *config.Config, placesDB *sql.DB) (ports.KeyValueStore, func(), error) {
	noop := func() {}

	switch cfg.StoreBackend {
	case "memory":
		return kvstore.NewMemoryKVStore(), noop, nil

	case "sqlite":
		return kvstore.NewSqliteKVStore(placesDB), noop, nil

	case "postgres":
		pg, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		if err := repositories.InitPostgresSchema(ctx, pg); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return kvstore.NewSQLKVStore(pg), func() { pg.Close() }, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("open store: ping redis %q: %w", cfg.RedisAddr, err)
		}
		return kvstore.NewRedisKVStore(client, cfg.RedisPrefix), func() { client.Close() }, nil
	}

	return nil, nil, fmt.Errorf("open store: unknown backend %q", cfg.StoreBackend)
}

// openProvider returns nil for "none", which leaves location unsupported.
func openProvider(cfg *config.Config) (ports.PositionProvider, error) {
	switch cfg.PositionProvider {
	case "none":
		return nil, nil
	case "fixed":
		p, err := position.NewFixedPositionProvider(domain.Coordinates{Lat: cfg.FixedLat, Lon: cfg.FixedLon})
		if err != nil {
			return nil, fmt.Errorf("open provider: %w", err)
		}
		return p, nil
	case "ip":
		p, err := position.NewIPPositionProvider(cfg.IPGeoURL)
		if err != nil {
			return nil, fmt.Errorf("open provider: %w", err)
		}
		return p, nil
	}

	return nil, fmt.Errorf("open provider: unknown provider %q", cfg.PositionProvider)
}
