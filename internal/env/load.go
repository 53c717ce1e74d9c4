package env

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// LoadEnv reads a .env file from the working directory, if present.
func LoadEnv(logger zerolog.Logger, files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Debug().Msg("No .env file found, assuming environment variables are set directly.")
	}
}

