// Package config handles configuration for the server component:
// defaults, a JSON or YAML file overlay, environment variables and
// command-line flags, applied in that order.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the notekeeper server. It is built once
// at startup and not mutated afterwards.
//
// Fields:
//   - EndpointAddrGRPC / EndpointAddrHTTP: bind addresses of the gRPC API and the ops HTTP server.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey / SigningAlgorithm: HMAC secret and algorithm (HS256, HS384, HS512) for access tokens.
//   - AccessTokenValidityDuration: token lifetime.
//   - PasswordMemoryKiB / PasswordIterations / PasswordParallelism: Argon2id cost for new hashes.
//   - RedisAddr / LoginAttemptLimit / LoginAttemptWindow: login throttling; empty address disables it.
//   - ActivityLogDir: directory of user_actions.log.
//   - SuperuserIdentity / SuperuserPassword: when both are set, a Superuser with these credentials is
//     created at startup unless the identity already exists. Required to reach staff operations with
//     the in-memory store.
type Config struct {
	EndpointAddrGRPC            string
	EndpointAddrHTTP            string
	DatabaseDSN                 string
	SecretKey                   string
	SigningAlgorithm            string
	AccessTokenValidityDuration time.Duration
	PasswordMemoryKiB           uint32
	PasswordIterations          uint32
	PasswordParallelism         uint8
	RedisAddr                   string
	LoginAttemptLimit           int
	LoginAttemptWindow          time.Duration
	ActivityLogDir              string
	SuperuserIdentity           string
	SuperuserPassword           string
}

var signingAlgorithms = map[string]struct{}{"HS256": {}, "HS384": {}, "HS512": {}}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key default is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secret_key"
	c.SigningAlgorithm = "HS256"
	c.AccessTokenValidityDuration = 240 * time.Minute
	c.PasswordMemoryKiB = 64 * 1024
	c.PasswordIterations = 3
	c.PasswordParallelism = 4
	c.RedisAddr = ""
	c.LoginAttemptLimit = 5
	c.LoginAttemptWindow = time.Minute
	c.ActivityLogDir = "logs"
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key must not be empty"))
	}
	if _, ok := signingAlgorithms[c.SigningAlgorithm]; !ok {
		errs = append(errs, fmt.Errorf("unsupported signing algorithm %q", c.SigningAlgorithm))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("access token validity must be positive"))
	}
	if c.PasswordMemoryKiB == 0 || c.PasswordIterations == 0 || c.PasswordParallelism == 0 {
		errs = append(errs, errors.New("password hash cost parameters must be positive"))
	}
	if c.LoginAttemptLimit < 0 {
		errs = append(errs, errors.New("login attempt limit must not be negative"))
	}
	if (c.SuperuserIdentity == "") != (c.SuperuserPassword == "") {
		errs = append(errs, errors.New("superuser identity and password must be set together"))
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file, the environment and finally command-line
// flags. Invalid input panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
