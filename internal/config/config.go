// Package config loads mealtrack settings from an ini file and the
// environment. Environment variables take precedence over the file, and the
// file over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// Provider supplies the location of the data file.
type Provider interface {
	DataFilePath() string
}

// StorageSection selects the snapshot backend.
//
//	driver: file|sqlite|postgres|bolt|blob (default file)
//	format: xml|json|cbor (default: from the data file extension, else xml)
type StorageSection struct {
	Driver      string `ini:"driver"`
	DataFile    string `ini:"data_file"`
	Format      string `ini:"format"`
	SQLitePath  string `ini:"sqlite_path"`
	PostgresDSN string `ini:"postgres_dsn"`
	BoltPath    string `ini:"bolt_path"`
	BlobDriver  string `ini:"blob_driver"`
	BlobRoot    string `ini:"blob_root"`
	BlobKey     string `ini:"blob_key"`
}

// S3Section configures the S3 blob driver.
type S3Section struct {
	Bucket          string `ini:"bucket"`
	Region          string `ini:"region"`
	Endpoint        string `ini:"endpoint"`
	AccessKeyID     string `ini:"access_key_id"`
	SecretAccessKey string `ini:"secret_access_key"`
	PathStyle       bool   `ini:"path_style"`
}

// LogSection configures the process logger.
type LogSection struct {
	Level  string `ini:"level"`
	Format string `ini:"format"`
}

// Config is the complete settings tree.
type Config struct {
	Storage StorageSection
	S3      S3Section
	Log     LogSection
}

var _ Provider = (*Config)(nil)

// DataFilePath returns the path of the flat data file.
func (c *Config) DataFilePath() string { return c.Storage.DataFile }

// DefaultDir returns the per-user directory holding the data and config files.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".mealtrack"
	}
	return filepath.Join(home, ".mealtrack")
}

// DefaultPath returns the config file location. MEALTRACK_CONFIG overrides it.
func DefaultPath() string {
	if p := os.Getenv("MEALTRACK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(DefaultDir(), "mealtrack.ini")
}

// Default returns the built-in settings.
func Default() *Config {
	dir := DefaultDir()
	return &Config{
		Storage: StorageSection{
			Driver:     "file",
			DataFile:   filepath.Join(dir, "HealthTracker.xml"),
			SQLitePath: filepath.Join(dir, "mealtrack.db"),
			BoltPath:   filepath.Join(dir, "mealtrack.bolt"),
			BlobDriver: "fs",
			BlobRoot:   filepath.Join(dir, "blobs"),
			BlobKey:    "HealthTracker.xml",
		},
		S3:  S3Section{Region: "us-east-1"},
		Log: LogSection{Level: "info", Format: "console"},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := c.readFile(path); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) readFile(path string) error {
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if err := f.Section("storage").MapTo(&c.Storage); err != nil {
		return fmt.Errorf("config section storage: %w", err)
	}
	if err := f.Section("s3").MapTo(&c.S3); err != nil {
		return fmt.Errorf("config section s3: %w", err)
	}
	if err := f.Section("log").MapTo(&c.Log); err != nil {
		return fmt.Errorf("config section log: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := []struct {
		key    string
		target *string
	}{
		{"MEALTRACK_STORAGE_DRIVER", &c.Storage.Driver},
		{"MEALTRACK_DATA_FILE", &c.Storage.DataFile},
		{"MEALTRACK_FORMAT", &c.Storage.Format},
		{"MEALTRACK_SQLITE_PATH", &c.Storage.SQLitePath},
		{"MEALTRACK_POSTGRES_DSN", &c.Storage.PostgresDSN},
		{"MEALTRACK_BOLT_PATH", &c.Storage.BoltPath},
		{"MEALTRACK_BLOB_DRIVER", &c.Storage.BlobDriver},
		{"MEALTRACK_BLOB_ROOT", &c.Storage.BlobRoot},
		{"MEALTRACK_BLOB_KEY", &c.Storage.BlobKey},
		{"MEALTRACK_S3_BUCKET", &c.S3.Bucket},
		{"MEALTRACK_S3_REGION", &c.S3.Region},
		{"MEALTRACK_S3_ENDPOINT", &c.S3.Endpoint},
		{"MEALTRACK_S3_ACCESS_KEY_ID", &c.S3.AccessKeyID},
		{"MEALTRACK_S3_SECRET_ACCESS_KEY", &c.S3.SecretAccessKey},
		{"MEALTRACK_LOG_LEVEL", &c.Log.Level},
		{"MEALTRACK_LOG_FORMAT", &c.Log.Format},
	}
	for _, s := range strs {
		if v := strings.TrimSpace(getenv(s.key)); v != "" {
			*s.target = v
		}
	}
	if v := strings.TrimSpace(getenv("MEALTRACK_S3_PATH_STYLE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MEALTRACK_S3_PATH_STYLE: %w", err)
		}
		c.S3.PathStyle = b
	}
	return nil
}

// Save writes c to path in ini form, creating the parent directory.
func (c *Config) Save(path string) error {
	f := ini.Empty()
	if err := f.Section("storage").ReflectFrom(&c.Storage); err != nil {
		return err
	}
	if err := f.Section("s3").ReflectFrom(&c.S3); err != nil {
		return err
	}
	if err := f.Section("log").ReflectFrom(&c.Log); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveTo(path)
}
