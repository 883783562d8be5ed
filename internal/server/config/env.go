package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variables read by parseEnv.
const (
	EnvSecretKey   = "TOKEN_SECRET_KEY"
	EnvAlgorithm   = "TOKEN_ALGORITHM"
	EnvExpireMin   = "TOKEN_ACCESS_TOKEN_EXPIRE_MINUTES"
	EnvDatabaseDSN = "NOTEKEEPER_DATABASE_DSN"

	EnvSuperuserIdentity = "NOTEKEEPER_SUPERUSER_IDENTITY"
	EnvSuperuserPassword = "NOTEKEEPER_SUPERUSER_PASSWORD"
)

// parseEnv overlays set environment variables onto config. A non-integer
// expiry panics.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv(EnvSecretKey); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv(EnvAlgorithm); ok {
		config.SigningAlgorithm = v
	}
	if v, ok := os.LookupEnv(EnvExpireMin); ok {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvExpireMin, err))
		}
		config.AccessTokenValidityDuration = time.Duration(minutes) * time.Minute
	}
	if v, ok := os.LookupEnv(EnvDatabaseDSN); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv(EnvSuperuserIdentity); ok {
		config.SuperuserIdentity = v
	}
	if v, ok := os.LookupEnv(EnvSuperuserPassword); ok {
		config.SuperuserPassword = v
	}
}
