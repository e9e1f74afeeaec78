package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/modelgen/internal/logfields"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads the first of .env/.env.local found in the working
// directory. Variables already set in the process are never overridden.
func loadEnvFile() {
	for _, envPath := range envFiles {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to load environment file", logfields.Path(envPath), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(envPath))
		return
	}
}
