// Package config loads process configuration. An optional .env file
// seeds the environment; real environment variables win.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server process needs to start.
type Config struct {
	Addr   string
	DBPath string
}

// Load reads configuration from .env and the environment.
func Load() Config {
	// Missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	c := Config{
		Addr:   ":8080",
		DBPath: "rps.db",
	}
	if p := os.Getenv("PORT"); p != "" {
		c.Addr = ":" + p
	}
	if p := os.Getenv("DB_PATH"); p != "" {
		c.DBPath = p
	}
	return c
}
