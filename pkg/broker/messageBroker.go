package broker

import (
	"github.com/zoff-tech/go-amqp-interop/pkg/amqplib"
)

// Channel is a publish channel that owns its transport resources.
type Channel interface {
	amqplib.Channel
	// Close cleans up any resources (connections).
	Close() error
}
