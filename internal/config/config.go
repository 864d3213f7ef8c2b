package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config captures the runtime configuration for the embedding service.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Model         ModelConfig         `mapstructure:"model"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	ListenAddr            string        `mapstructure:"listen_addr"`
	BodyLimitMB           int           `mapstructure:"body_limit_mb"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout"`
	ReadHeaderTimeout     time.Duration `mapstructure:"read_header_timeout"`
	GracefulShutdownDelay time.Duration `mapstructure:"graceful_shutdown_delay"`
}

// ModelConfig describes the local embedding model and the limits applied
// when serving it.
type ModelConfig struct {
	// Path points at a model artifact on local disk. When empty the
	// artifact compiled into the binary is used.
	Path           string `mapstructure:"path"`
	Dimensions     int    `mapstructure:"dimensions"`
	MaxBatch       int    `mapstructure:"max_batch"`
	MaxConcurrency int    `mapstructure:"max_concurrency"`
	Warmup         bool   `mapstructure:"warmup"`
}

type ObservabilityConfig struct {
	EnableMetrics bool   `mapstructure:"enable_metrics"`
	EnableOTLP    bool   `mapstructure:"enable_otlp"`
	OTLPEndpoint  string `mapstructure:"otlp_endpoint"`
}

type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load returns the merged configuration sourced from YAML and environment variables.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	explicitFile := false
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		explicitFile = true
	} else {
		if cfg := os.Getenv("EMBEDD_CONFIG_FILE"); cfg != "" {
			v.SetConfigFile(cfg)
			explicitFile = true
		}
	}

	if !explicitFile {
		// Allow standard lookup locations when no explicit file is provided.
		v.SetConfigName("embeddingd")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("EMBEDD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(timeStringToDurationHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures required values are set and within supported bounds.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		return fmt.Errorf("server.listen_addr must be provided")
	}
	if c.Server.BodyLimitMB <= 0 {
		return fmt.Errorf("server.body_limit_mb must be > 0")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be > 0")
	}

	switch c.Model.Dimensions {
	case 384, 768:
	default:
		return fmt.Errorf("model.dimensions must be 384 or 768, got %d", c.Model.Dimensions)
	}
	if c.Model.MaxBatch <= 0 {
		return fmt.Errorf("model.max_batch must be > 0")
	}
	if c.Model.MaxConcurrency <= 0 {
		return fmt.Errorf("model.max_concurrency must be > 0")
	}

	if c.Observability.EnableOTLP && strings.TrimSpace(c.Observability.OTLPEndpoint) == "" {
		return fmt.Errorf("observability.otlp_endpoint must be provided when OTLP is enabled")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8000")
	v.SetDefault("server.body_limit_mb", 20)
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.graceful_shutdown_delay", "5s")

	v.SetDefault("model.path", "")
	v.SetDefault("model.dimensions", 384)
	v.SetDefault("model.max_batch", 2048)
	v.SetDefault("model.max_concurrency", 4)
	v.SetDefault("model.warmup", true)

	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.enable_otlp", false)
	v.SetDefault("observability.otlp_endpoint", "http://localhost:4317")
}

func timeStringToDurationHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case time.Duration:
			return v, nil
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, err
			}
			return d, nil
		default:
			return nil, fmt.Errorf("cannot decode %T into time.Duration", data)
		}
	}
}
