// Package config loads server configuration from environment variables.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds everything the server needs to start.
type Config struct {
	Port          int
	DBPath        string
	SecretKey     string
	AdminPassword string
	TokenDuration time.Duration

	// Pix receiver identity embedded in every generated payload.
	PixKey         string
	RestaurantName string
	RestaurantCity string

	// SeedDemo inserts a small demo catalog on an empty database.
	SeedDemo bool
}

// Load reads the configuration from the environment. SECRET_KEY and
// ADMIN_PASSWORD have no safe default and must be set.
func Load() (*Config, error) {
	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		return nil, errors.New("SECRET_KEY must be set")
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		return nil, errors.New("ADMIN_PASSWORD must be set")
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, errors.New("PORT must be a number")
	}

	tokenDuration, err := time.ParseDuration(getEnv("TOKEN_DURATION", "24h"))
	if err != nil {
		return nil, errors.New("TOKEN_DURATION must be a duration like 24h")
	}

	return &Config{
		Port:           port,
		DBPath:         getEnv("DB_PATH", "./data/comanda.db"),
		SecretKey:      secret,
		AdminPassword:  adminPassword,
		TokenDuration:  tokenDuration,
		PixKey:         getEnv("PIX_KEY", ""),
		RestaurantName: getEnv("RESTAURANT_NAME", "Restaurante"),
		RestaurantCity: getEnv("RESTAURANT_CITY", "SAO PAULO"),
		SeedDemo:       getEnv("SEED_DEMO", "") == "true",
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
