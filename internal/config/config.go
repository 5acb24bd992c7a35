package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Runtime configuration read from the environment (optionally seeded by .env).
type Config struct {
	Port string

	StoreBackend string
	DBPath       string
	DatabaseURL  string
	RedisAddr    string
	RedisPrefix  string

	LocationMaxAge       time.Duration
	LocationTimeout      time.Duration
	LocationHighAccuracy bool

	PositionProvider string
	IPGeoURL         string
	FixedLat         float64
	FixedLon         float64

	CORSOrigin string
	SeedPath   string
	ORSAPIKey  string
}

// Load reads every supported variable and validates the combinations
// that would otherwise fail later at wiring time.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 Get("PORT", "8080"),
		StoreBackend:         strings.ToLower(Get("STORE_BACKEND", "sqlite")),
		DBPath:               Get("DB_PATH", "data/app.db"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisAddr:            Get("REDIS_ADDR", "localhost:6379"),
		RedisPrefix:          Get("REDIS_PREFIX", "exsighting:"),
		LocationMaxAge:       GetDuration("LOCATION_MAX_AGE", 5*time.Minute),
		LocationTimeout:      GetDuration("LOCATION_TIMEOUT", 10*time.Second),
		LocationHighAccuracy: GetBool("LOCATION_HIGH_ACCURACY", true),
		PositionProvider:     strings.ToLower(Get("POSITION_PROVIDER", "ip")),
		IPGeoURL:             Get("IP_GEO_URL", "http://ip-api.com/json/"),
		CORSOrigin:           Get("CORS_ORIGIN", "*"),
		SeedPath:             Get("SEED_PATH", "data/seeds/places.json"),
		ORSAPIKey:            os.Getenv("ORS_API_KEY"),
	}

	switch cfg.StoreBackend {
	case "sqlite", "memory", "redis":
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, fmt.Errorf("load config: DATABASE_URL is required for STORE_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("load config: unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	switch cfg.PositionProvider {
	case "ip", "none":
	case "fixed":
		lat, err := strconv.ParseFloat(os.Getenv("FIXED_LAT"), 64)
		if err != nil {
			return nil, fmt.Errorf("load config: FIXED_LAT: %w", err)
		}
		lon, err := strconv.ParseFloat(os.Getenv("FIXED_LON"), 64)
		if err != nil {
			return nil, fmt.Errorf("load config: FIXED_LON: %w", err)
		}
		cfg.FixedLat, cfg.FixedLon = lat, lon
	default:
		return nil, fmt.Errorf("load config: unknown POSITION_PROVIDER %q", cfg.PositionProvider)
	}

	if cfg.LocationMaxAge < 0 {
		return nil, fmt.Errorf("load config: LOCATION_MAX_AGE must not be negative")
	}
	if cfg.LocationTimeout <= 0 {
		return nil, fmt.Errorf("load config: LOCATION_TIMEOUT must be positive")
	}

	return cfg, nil
}

func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetDuration parses a time.Duration ("90s", "5m"); unparsable values fall back.
func GetDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: invalid duration %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func GetBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("config: invalid bool %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}
