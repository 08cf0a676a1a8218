package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	configName = "amqp-publish"
	envPrefix  = "AMQPPUB"

	defaultPoolSize = 5
)

type Settings struct {
	Broker        BrokerSettings   `mapstructure:"broker"`
	Producer      ProducerSettings `mapstructure:"producer"`
	Log           Log              `mapstructure:"log"`
	Observability Observability    `mapstructure:"observability"`
}

func (c *Settings) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// Load reads amqp-publish.yaml from path (or the working directory), merges
// amqp-publish.<ENVIRONMENT>.yaml on top when present, applies AMQPPUB_*
// environment variables and validates the result.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName(configName)
	v.AddConfigPath(path)
	v.AddConfigPath(".")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	env := getEnvWithDefaultLookup("ENVIRONMENT", "development")
	v.SetConfigName(configName + "." + env)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to merge %s config: %w", env, err)
		}
	}

	return decode(v)
}

// LoadFromReader is Load for an in-memory YAML document, without the
// per-environment overlay.
func LoadFromReader(r io.Reader) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Settings, error) {
	bindEnv(v)

	cfg := &Settings{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("broker.type", "rabbitmq")
	v.SetDefault("broker.pool_size", defaultPoolSize)
	v.SetDefault("log.level", "info")
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // AMQPPUB_BROKER_URL
	v.AutomaticEnv()

	// Unmarshal only sees env vars for keys viper already knows about.
	for _, key := range []string{
		"broker.type",
		"broker.url",
		"broker.project_id",
		"broker.pool_size",
		"broker.reconnect_interval",
		"producer.priority",
		"producer.time_to_live",
		"producer.delivery_delay",
		"producer.trace_propagation",
		"log.level",
		"log.development",
		"observability.enabled",
		"observability.service_name",
		"observability.tracing_url",
	} {
		_ = v.BindEnv(key)
	}
}

func getEnvWithDefaultLookup(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}
