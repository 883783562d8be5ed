package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
	"github.com/dmitrijs2005/notekeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file. Durations accept both
// "240m" strings and integer nanoseconds. Absent or zero fields keep the
// current value.
type FileConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	SigningAlgorithm            string         `json:"signing_algorithm" yaml:"signing_algorithm"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	PasswordMemoryKiB           uint32         `json:"password_memory_kib" yaml:"password_memory_kib"`
	PasswordIterations          uint32         `json:"password_iterations" yaml:"password_iterations"`
	PasswordParallelism         uint8          `json:"password_parallelism" yaml:"password_parallelism"`
	RedisAddr                   string         `json:"redis_addr" yaml:"redis_addr"`
	LoginAttemptLimit           int            `json:"login_attempt_limit" yaml:"login_attempt_limit"`
	LoginAttemptWindow          timex.Duration `json:"login_attempt_window" yaml:"login_attempt_window"`
	ActivityLogDir              string         `json:"activity_log_dir" yaml:"activity_log_dir"`
	SuperuserIdentity           string         `json:"superuser_identity" yaml:"superuser_identity"`
	SuperuserPassword           string         `json:"superuser_password" yaml:"superuser_password"`
}

// parseFile loads the file named by -c/-config into config. Files ending in
// .yaml or .yml are decoded as YAML, everything else as JSON. An unreadable
// or malformed file panics.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlags()

	// nothing to load
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SigningAlgorithm, c.SigningAlgorithm)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.ActivityLogDir, c.ActivityLogDir)
	setString(&config.SuperuserIdentity, c.SuperuserIdentity)
	setString(&config.SuperuserPassword, c.SuperuserPassword)

	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.LoginAttemptWindow.Duration != 0 {
		config.LoginAttemptWindow = c.LoginAttemptWindow.Duration
	}
	if c.PasswordMemoryKiB != 0 {
		config.PasswordMemoryKiB = c.PasswordMemoryKiB
	}
	if c.PasswordIterations != 0 {
		config.PasswordIterations = c.PasswordIterations
	}
	if c.PasswordParallelism != 0 {
		config.PasswordParallelism = c.PasswordParallelism
	}
	if c.LoginAttemptLimit != 0 {
		config.LoginAttemptLimit = c.LoginAttemptLimit
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
