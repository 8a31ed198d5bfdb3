// Package config reads the toolcrib settings from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvDataDir            = "TOOLCRIB_DATA_DIR"
	EnvToolsFile          = "TOOLCRIB_TOOLS_FILE"
	EnvUsersFile          = "TOOLCRIB_USERS_FILE"
	EnvLogLevel           = "TOOLCRIB_LOG_LEVEL"
	EnvLogFile            = "TOOLCRIB_LOG_FILE"
	EnvMetrics            = "TOOLCRIB_METRICS"
	EnvMachines           = "TOOLCRIB_MACHINES"
	EnvArchiveDriver      = "TOOLCRIB_ARCHIVE_DRIVER"
	EnvArchiveFSRoot      = "TOOLCRIB_ARCHIVE_FS_ROOT"
	EnvArchiveKeep        = "TOOLCRIB_ARCHIVE_KEEP"
	EnvArchiveS3Bucket    = "TOOLCRIB_ARCHIVE_S3_BUCKET"
	EnvArchiveS3Region    = "TOOLCRIB_ARCHIVE_S3_REGION"
	EnvArchiveS3Endpoint  = "TOOLCRIB_ARCHIVE_S3_ENDPOINT"
	EnvArchiveS3PathStyle = "TOOLCRIB_ARCHIVE_S3_USE_PATH_STYLE"
	EnvArchiveS3AccessKey = "TOOLCRIB_ARCHIVE_S3_ACCESS_KEY_ID"
	EnvArchiveS3Secret    = "TOOLCRIB_ARCHIVE_S3_SECRET_ACCESS_KEY"
	EnvJournalDriver      = "TOOLCRIB_JOURNAL_DRIVER"
	EnvJournalSQLitePath  = "TOOLCRIB_JOURNAL_SQLITE_PATH"
	EnvJournalPostgresDSN = "TOOLCRIB_JOURNAL_POSTGRES_DSN"
)

// Config is the resolved application configuration.
type Config struct {
	DataDir   string
	ToolsFile string
	UsersFile string
	LogLevel  string
	LogFile   string
	// Metrics is prometheus, expvar or none.
	Metrics string
	// Machines lists the machines tools can be loaded into.
	Machines []string
	Archive  ArchiveConfig
	Journal  JournalConfig
}

// DefaultMachines is used when TOOLCRIB_MACHINES is unset.
var DefaultMachines = []string{"Hermle40", "Hermle400", "Evo60", "EVO100", "650V"}

// ArchiveConfig selects where snapshots of written files go. An empty
// Driver disables the archive.
type ArchiveConfig struct {
	Driver string
	FSRoot string
	Keep   int
	S3     S3Config
}

// S3Config holds the S3 archive settings.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
}

// JournalConfig selects the movement journal backend.
type JournalConfig struct {
	// Driver is sqlite, postgres, memory or none.
	Driver      string
	SQLitePath  string
	PostgresDSN string
}

// Load reads the given .env files (missing files are ignored; none given
// means ".env") and resolves the configuration from the environment.
// Variables already set in the process environment win over .env values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv resolves the configuration from the process environment only.
func FromEnv() (Config, error) {
	dataDir := getEnv(EnvDataDir, "data")
	cfg := Config{
		DataDir:   dataDir,
		ToolsFile: getEnv(EnvToolsFile, filepath.Join(dataDir, "werkzeuge.csv")),
		UsersFile: getEnv(EnvUsersFile, filepath.Join(dataDir, "users.csv")),
		LogLevel:  getEnv(EnvLogLevel, "info"),
		LogFile:   os.Getenv(EnvLogFile),
		Metrics:   strings.ToLower(getEnv(EnvMetrics, "prometheus")),
		Machines:  envList(EnvMachines, DefaultMachines),
		Archive: ArchiveConfig{
			Driver: strings.ToLower(os.Getenv(EnvArchiveDriver)),
			FSRoot: getEnv(EnvArchiveFSRoot, filepath.Join(dataDir, "archive")),
			S3: S3Config{
				Bucket:          os.Getenv(EnvArchiveS3Bucket),
				Region:          getEnv(EnvArchiveS3Region, "us-east-1"),
				Endpoint:        os.Getenv(EnvArchiveS3Endpoint),
				AccessKeyID:     os.Getenv(EnvArchiveS3AccessKey),
				SecretAccessKey: os.Getenv(EnvArchiveS3Secret),
			},
		},
		Journal: JournalConfig{
			Driver:      strings.ToLower(getEnv(EnvJournalDriver, "sqlite")),
			SQLitePath:  getEnv(EnvJournalSQLitePath, filepath.Join(dataDir, "journal.db")),
			PostgresDSN: os.Getenv(EnvJournalPostgresDSN),
		},
	}

	var err error
	if cfg.Archive.Keep, err = envInt(EnvArchiveKeep, 20); err != nil {
		return Config{}, err
	}
	if cfg.Archive.S3.UsePathStyle, err = envBool(EnvArchiveS3PathStyle, false); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks driver names and driver-specific requirements.
func (c Config) Validate() error {
	switch c.Metrics {
	case "prometheus", "expvar", "none":
	default:
		return fmt.Errorf("%s: unsupported metrics backend %q", EnvMetrics, c.Metrics)
	}
	switch c.Archive.Driver {
	case "", "none", "fs", "memory":
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return fmt.Errorf("%s is required for the s3 archive", EnvArchiveS3Bucket)
		}
	default:
		return fmt.Errorf("%s: unsupported archive driver %q", EnvArchiveDriver, c.Archive.Driver)
	}
	if c.Archive.Keep < 0 {
		return fmt.Errorf("%s must not be negative", EnvArchiveKeep)
	}
	switch c.Journal.Driver {
	case "sqlite", "memory", "none":
	case "postgres":
		if c.Journal.PostgresDSN == "" {
			return fmt.Errorf("%s is required for the postgres journal", EnvJournalPostgresDSN)
		}
	default:
		return fmt.Errorf("%s: unsupported journal driver %q", EnvJournalDriver, c.Journal.Driver)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// envList splits a comma separated value, dropping blank items.
func envList(key string, fallback []string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return slices.Clone(fallback)
	}
	return out
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
