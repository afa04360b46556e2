package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is read when neither --config nor TASKLEDGER_CONFIG is given.
const DefaultPath = "taskledger.yaml"

// Config holds runtime settings. Values come from the YAML file when it
// exists, environment variables override them, and secrets are env-only.
type Config struct {
	Env      string `yaml:"env" env:"TASKLEDGER_ENV" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	Storage  StorageConfig  `yaml:"storage"`
	Audit    AuditConfig    `yaml:"audit"`
	Auth     AuthConfig     `yaml:"auth"`
	Projects ProjectsConfig `yaml:"projects"`
}

type StorageConfig struct {
	// Driver is one of file, sqlite, mysql, postgres.
	Driver  string `yaml:"driver" env:"TASKLEDGER_STORAGE_DRIVER" env-default:"file"`
	DataDir string `yaml:"data_dir" env:"TASKLEDGER_DATA_DIR" env-default:"data"`
	// DSN is required for mysql and postgres; for sqlite it defaults to
	// <data_dir>/taskledger.db.
	DSN string `yaml:"-" env:"TASKLEDGER_DSN"`
}

type AuditConfig struct {
	Path string `yaml:"path" env:"TASKLEDGER_AUDIT_PATH" env-default:"data/log.log"`
}

type AuthConfig struct {
	// PasswordScheme selects the credential digest: sha256 or bcrypt.
	PasswordScheme string `yaml:"password_scheme" env:"TASKLEDGER_PASSWORD_SCHEME" env-default:"sha256"`
	BcryptCost     int    `yaml:"bcrypt_cost" env:"TASKLEDGER_BCRYPT_COST" env-default:"10"`
}

type ProjectsConfig struct {
	// AllowUnregisteredMembers lets a leader add usernames that have not
	// registered yet. Off by default: AddMember checks the identity store.
	AllowUnregisteredMembers bool `yaml:"allow_unregistered_members" env:"TASKLEDGER_ALLOW_UNREGISTERED_MEMBERS"`
}

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	SchemeSHA256 = "sha256"
	SchemeBcrypt = "bcrypt"
)

var (
	drivers = []string{DriverFile, DriverSQLite, DriverMySQL, DriverPostgres}
	schemes = []string{SchemeSHA256, SchemeBcrypt}
)

// Load reads path (if it exists) with environment overrides. An empty path
// falls back to TASKLEDGER_CONFIG and then DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = getEnv("TASKLEDGER_CONFIG", DefaultPath)
	}

	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the runtime cannot honour.
func (c *Config) Validate() error {
	if !slices.Contains(drivers, c.Storage.Driver) {
		return fmt.Errorf("unknown storage driver %q (want one of %v)", c.Storage.Driver, drivers)
	}
	if (c.Storage.Driver == DriverMySQL || c.Storage.Driver == DriverPostgres) && c.Storage.DSN == "" {
		return fmt.Errorf("TASKLEDGER_DSN is required for the %s driver", c.Storage.Driver)
	}
	if !slices.Contains(schemes, c.Auth.PasswordScheme) {
		return fmt.Errorf("unknown password scheme %q (want one of %v)", c.Auth.PasswordScheme, schemes)
	}
	if c.Audit.Path == "" {
		return errors.New("audit path is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
