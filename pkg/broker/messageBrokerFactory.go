package broker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zoff-tech/go-amqp-interop/pkg/config"
)

// NewChannel opens the channel for the configured broker type.
func NewChannel(ctx context.Context, cfg *config.BrokerSettings, logger *zap.Logger) (Channel, error) {
	switch cfg.Type {
	case "rabbitmq":
		return NewRabbitMQChannel(ctx, cfg, logger)
	case "gcp-pubsub":
		return NewPubSubChannel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported broker type: %s", cfg.Type)
	}
}
