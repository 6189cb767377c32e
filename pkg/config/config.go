// Package config loads booko's runtime configuration from defaults, an
// optional YAML file, and BOOKO_-prefixed environment variables, in that
// order. Credential material (gateway token, API keys) is read from files
// referenced by the config, never embedded in it.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// ChannelsConfig maps the configured chat channels. Each of the three shelf
// channels fixes the shelf of books proposed in it; the voting channel is
// recognized but accepts no curation commands.
type ChannelsConfig struct {
	Recommendations string `koanf:"recommendations" validate:"required"`
	PastBooks       string `koanf:"past_books" validate:"required"`
	Smut            string `koanf:"smut" validate:"required"`
	Voting          string `koanf:"voting"`
}

type Config struct {
	Environment string `koanf:"environment" default:"development"`

	DatabaseFilePath          string        `koanf:"database_file_path" default:"data/booko.db" validate:"required"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries" default:"5"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`

	GatewayTokenFile   string `koanf:"gateway_token_file" default:"data/gateway_token" validate:"required"`
	GoogleBooksKeyFile string `koanf:"google_books_key_file" default:"data/books_api" validate:"required"`

	GuildID  string         `koanf:"guild_id"`
	Channels ChannelsConfig `koanf:"channels"`

	TargetLanguage     string        `koanf:"target_language" default:"en" validate:"required"`
	EditTimeout        time.Duration `koanf:"edit_timeout" default:"10m"`
	CancelCleanupDelay time.Duration `koanf:"cancel_cleanup_delay" default:"2s"`
	ProviderTimeout    time.Duration `koanf:"provider_timeout" default:"10s"`

	VerboseAPI bool `koanf:"verbose_api"`
	VerboseDB  bool `koanf:"verbose_db"`
}

const configFileENV = "BOOKO_CONFIG_FILE"

// New loads the configuration. A YAML file is only loaded when
// BOOKO_CONFIG_FILE is set; the daemon can run from env vars alone.
func New() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	if path := os.Getenv(configFileENV); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	// Double underscore delimits nesting (BOOKO_CHANNELS__PAST_BOOKS) so
	// flat keys keep their single underscores.
	err := k.Load(env.Provider("BOOKO_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "BOOKO_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// ReadCredentialFile reads a single-line credential file, trimming
// surrounding whitespace.
func ReadCredentialFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read credential file %s", path)
	}
	return strings.TrimSpace(string(data)), nil
}

// GatewayToken reads the chat-gateway token.
func (c *Config) GatewayToken() (string, error) {
	return ReadCredentialFile(c.GatewayTokenFile)
}

// GoogleBooksKey reads the Google Books API key.
func (c *Config) GoogleBooksKey() (string, error) {
	return ReadCredentialFile(c.GoogleBooksKeyFile)
}
