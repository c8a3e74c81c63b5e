// Package config loads server configuration from an optional YAML file,
// IMAGESTUDIO_* environment variables and a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dev-x-infinite/imagestudio"
)

// EnvPrefix prefixes every environment override, e.g.
// IMAGESTUDIO_SERVER_PORT or IMAGESTUDIO_GEMINI_API_KEY.
const EnvPrefix = "IMAGESTUDIO"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Models    ModelsConfig    `mapstructure:"models"`
	Studio    StudioConfig    `mapstructure:"studio"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Session   SessionConfig   `mapstructure:"session"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

type GeminiConfig struct {
	// APIKey is the server-wide key. Sessions may supply their own.
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

// OpenAIConfig routes text calls (enhancement, pose description) to an
// OpenAI-compatible endpoint instead of Gemini.
type OpenAIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key" validate:"required_if=Enabled true"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
	Model   string `mapstructure:"model" validate:"required_if=Enabled true"`
}

type ModelsConfig struct {
	Text  string `mapstructure:"text" validate:"required"`
	Image string `mapstructure:"image" validate:"required"`
}

type StudioConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	EnhanceDefault bool          `mapstructure:"enhance_default"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" validate:"gte=0"`
	TokensPerMinute   int  `mapstructure:"tokens_per_minute" validate:"gte=0"`
}

type SessionConfig struct {
	TTL        time.Duration `mapstructure:"ttl" validate:"gt=0"`
	CookieName string        `mapstructure:"cookie_name" validate:"required"`
	Secure     bool          `mapstructure:"secure"`
}

// StudioModels returns the configured models. Text calls go to the
// OpenAI-compatible model when that provider is enabled.
func (c *Config) StudioModels() imagestudio.Models {
	text := c.Models.Text
	if c.OpenAI.Enabled {
		text = c.OpenAI.Model
	}
	return imagestudio.Models{Text: text, Image: c.Models.Image}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 3*time.Minute)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_upload_bytes", 2*imagestudio.MaxImageSize+1<<20)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "")

	v.SetDefault("openai.enabled", false)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "")

	v.SetDefault("models.text", imagestudio.DefaultTextModel)
	v.SetDefault("models.image", imagestudio.DefaultImageModel)

	v.SetDefault("studio.request_timeout", 2*time.Minute)
	v.SetDefault("studio.enhance_default", false)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 43200)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests_per_minute", 10)
	v.SetDefault("rate_limit.tokens_per_minute", 0)

	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("session.cookie_name", "imagestudio_session")
	v.SetDefault("session.secure", false)
}

// Load reads configPath if it exists, applies .env and environment
// overrides, and validates the result. An empty or missing configPath is
// not an error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", configPath, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	// Prefixed variables and the config file win; the SDK's own variable
	// names are honoured as a fallback.
	if cfg.Gemini.APIKey == "" {
		for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if key := os.Getenv(name); key != "" {
				cfg.Gemini.APIKey = key
				break
			}
		}
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			msgs := make([]string, 0, len(vErrs))
			for _, fe := range vErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
