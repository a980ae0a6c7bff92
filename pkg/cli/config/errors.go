package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrUnsupportedFormat  = goerr.New("unsupported configuration file format")
	ErrDuplicateAccountID = goerr.New("duplicate account ID")
	ErrNoAccount          = goerr.New("at least one account is required")
	ErrMissingEnv         = goerr.New("referenced environment variable is not set")
)

// Context keys for error values
const (
	ConfigPathKey   = "config_path"
	AccountIDKey    = "account_id"
	AccountIndexKey = "account_index"
	EnvNameKey      = "env_name"
)
