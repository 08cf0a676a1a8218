package config

import "time"

// BrokerSettings holds configuration for connecting to a message broker.
type BrokerSettings struct {
	Type      string `mapstructure:"type" validate:"required,oneof=rabbitmq gcp-pubsub"`
	URL       string `mapstructure:"url" validate:"required_if=Type rabbitmq"`
	ProjectID string `mapstructure:"project_id" validate:"required_if=Type gcp-pubsub"`

	// PoolSize bounds the number of idle AMQP channels kept open. RabbitMQ only.
	PoolSize int `mapstructure:"pool_size" validate:"omitempty,min=1"`
	// ReconnectInterval is how often a closed connection is redialed; 0 disables recovery.
	ReconnectInterval time.Duration `mapstructure:"reconnect_interval"`
}
