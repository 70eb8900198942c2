package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds settings read from the environment. Command-line flags take
// precedence over these values.
type Config struct {
	Port         string // PORT
	LogLevel     string // LOG_LEVEL
	DBPath       string // HUE_DB, empty disables history
	ClientOrigin string // CLIENT_ORIGIN, for CORS
	Player       string // HUE_PLAYER
}

func defaults() Config {
	return Config{
		Port:         "5175",
		LogLevel:     "info",
		ClientOrigin: "http://localhost:5173",
	}
}

// Load reads a .env file if present, then the process environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, keeping defaults for unset keys.
func FromEnv(getenv func(string) string) Config {
	c := defaults()
	if v := getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("HUE_DB"); v != "" {
		c.DBPath = v
	}
	if v := getenv("CLIENT_ORIGIN"); v != "" {
		c.ClientOrigin = v
	}
	if v := getenv("HUE_PLAYER"); v != "" {
		c.Player = v
	}
	return c
}
