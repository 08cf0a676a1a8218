package config

type Observability struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name" validate:"required_if=Enabled true"`
	TracingURL  string `mapstructure:"tracing_url" validate:"required_if=Enabled true"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}
