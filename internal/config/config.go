package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"reflexa/internal/game"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Port           string       `mapstructure:"port"`
	Environment    string       `mapstructure:"environment"`
	LogLevel       string       `mapstructure:"log_level"`
	ServiceName    string       `mapstructure:"service_name"`
	AllowedOrigins []string     `mapstructure:"allowed_origins"`
	Store          StoreConfig  `mapstructure:"store"`
	Signer         SignerConfig `mapstructure:"signer"`
	Kafka          KafkaConfig  `mapstructure:"kafka"`
	Round          RoundConfig  `mapstructure:"round"`
}

type StoreConfig struct {
	Driver        string `mapstructure:"driver"`
	DatabaseURL   string `mapstructure:"database_url"`
	MongoURI      string `mapstructure:"mongodb_uri"`
	MongoDatabase string `mapstructure:"mongodb_database"`
}

type SignerConfig struct {
	PrivateKey      string `mapstructure:"private_key"`
	ChainID         int64  `mapstructure:"chain_id"`
	VerifierAddress string `mapstructure:"verifier_address"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type RoundConfig struct {
	MinDelayMs int `mapstructure:"min_delay_ms"`
	MaxDelayMs int `mapstructure:"max_delay_ms"`
}

func (r RoundConfig) Game() game.Config {
	return game.Config{MinDelayMs: r.MinDelayMs, MaxDelayMs: r.MaxDelayMs}
}

// Load reads configuration from the environment and, when path is set, a
// config file. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := game.DefaultConfig()
	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("service_name", "reflexa")
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("signer.chain_id", 43113)
	v.SetDefault("store.mongodb_database", "reflexa")
	v.SetDefault("kafka.topic", "reflexa.scores")
	v.SetDefault("round.min_delay_ms", defaults.MinDelayMs)
	v.SetDefault("round.max_delay_ms", defaults.MaxDelayMs)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	binds := map[string]string{
		"port":                    "PORT",
		"environment":             "ENVIRONMENT",
		"log_level":               "LOG_LEVEL",
		"service_name":            "SERVICE_NAME",
		"allowed_origins":         "ALLOWED_ORIGINS",
		"store.driver":            "STORE_DRIVER",
		"store.database_url":      "DATABASE_URL",
		"store.mongodb_uri":       "MONGODB_URI",
		"store.mongodb_database":  "MONGODB_DATABASE",
		"signer.private_key":      "SIGNER_PRIVATE_KEY",
		"signer.chain_id":         "CHAIN_ID",
		"signer.verifier_address": "VERIFIER_ADDRESS",
		"kafka.brokers":           "KAFKA_BROKERS",
		"kafka.topic":             "KAFKA_TOPIC",
		"round.min_delay_ms":      "ROUND_MIN_DELAY_MS",
		"round.max_delay_ms":      "ROUND_MAX_DELAY_MS",
	}
	for key, env := range binds {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	cfg.AllowedOrigins = splitList(cfg.AllowedOrigins)

	// With no explicit driver, a database URL selects Postgres and nothing
	// selects the in-memory store.
	if cfg.Store.Driver == "" {
		if cfg.Store.DatabaseURL != "" {
			cfg.Store.Driver = DriverPostgres
		} else {
			cfg.Store.Driver = DriverMemory
		}
	}
	cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitList flattens comma-separated entries and drops blanks.
func splitList(in []string) []string {
	out := []string{}
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return errors.New("MONGODB_URI is required for the mongo store")
		}
		if c.Store.MongoDatabase == "" {
			return errors.New("MONGODB_DATABASE is required for the mongo store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Round.MinDelayMs < 0 || c.Round.MaxDelayMs <= c.Round.MinDelayMs {
		return fmt.Errorf("invalid round delay range [%d, %d)", c.Round.MinDelayMs, c.Round.MaxDelayMs)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}
