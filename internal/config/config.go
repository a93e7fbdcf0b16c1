// Package config loads settings from defaults, a YAML file, the environment
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable. Nested keys are joined
// with a double underscore, so NERD_API__URL sets api.url.
const EnvPrefix = "NERD_"

// DefaultFile is read when no --config flag is given. It may be absent.
const DefaultFile = "nerd.yaml"

type Config struct {
	API    API    `koanf:"api"`
	Server Server `koanf:"server"`
	Log    Log    `koanf:"log"`
	Export Export `koanf:"export"`
	Import Import `koanf:"import"`
}

type API struct {
	URL string `koanf:"url" validate:"required,url"`
}

type Server struct {
	Addr string `koanf:"addr" validate:"required"`
	DB   string `koanf:"db" validate:"required"`
}

type Log struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
	// File receives the log of the terminal client. Empty discards it.
	File string `koanf:"file"`
}

type Export struct {
	Format string `koanf:"format" validate:"oneof=json yaml"`
	S3     S3     `koanf:"s3"`
}

// S3 locates the bucket snapshots are uploaded to. Empty credentials fall
// back to the default AWS credential chain.
type S3 struct {
	Endpoint     string `koanf:"endpoint" validate:"omitempty,url"`
	Region       string `koanf:"region"`
	AccessKey    string `koanf:"access_key"`
	SecretKey    string `koanf:"secret_key"`
	UsePathStyle bool   `koanf:"use_path_style"`
}

type Import struct {
	CacheDir string `koanf:"cache_dir" validate:"required"`
}

// Default holds the value of every key not set elsewhere.
var Default = Config{
	API:    API{URL: "http://localhost:8080"},
	Server: Server{Addr: ":8080", DB: "nerd.db"},
	Log:    Log{Level: "info", Format: "text"},
	Export: Export{Format: "json", S3: S3{Region: "us-east-1"}},
	Import: Import{CacheDir: "repos"},
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"api-url":    "api.url",
	"addr":       "server.addr",
	"db":         "server.db",
	"log-level":  "log.level",
	"log-format": "log.format",
	"log-file":   "log.file",
	"format":     "export.format",
	"cache-dir":  "import.cache_dir",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds the configuration. path names the YAML file; an empty path
// reads DefaultFile when it exists. Only flags the user changed override
// the other sources.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	filePath := path
	if filePath == "" {
		filePath = DefaultFile
		if _, err := os.Stat(filePath); errors.Is(err, fs.ErrNotExist) {
			filePath = ""
		}
	}
	if filePath != "" {
		if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", filePath, err)
		}
	}

	envKey := func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		flagKey := func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, f.Value.String()
		}
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := Default
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// NewLogger returns a logger writing to w in the configured format.
func (l Log) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
