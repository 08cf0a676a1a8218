package amqplib

import (
	"context"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/zoff-tech/go-amqp-interop/pkg/interop"
)

// DelayStrategy postpones delivery of a message to destination.
type DelayStrategy interface {
	DelayMessage(ctx context.Context, c *Context, destination interop.Destination, message *Message, delay time.Duration) error
}

// DLXDelayStrategy parks messages in a per-destination queue whose TTL equals
// the delay. On expiry the broker dead-letters them to the real destination.
type DLXDelayStrategy struct{}

func (DLXDelayStrategy) DelayMessage(ctx context.Context, c *Context, destination interop.Destination, message *Message, delay time.Duration) error {
	delayed := message.Clone()
	delayed.DelHeader("x-death")

	ms := delay.Milliseconds()

	var queue *Queue
	switch d := destination.(type) {
	case *Topic:
		name := "enqueue." + d.Name()
		if message.RoutingKey() != "" {
			name += "." + message.RoutingKey()
		}
		queue = c.CreateQueue(fmt.Sprintf("%s.%d.x.delay", name, ms))
		queue.Arguments = amqp.Table{
			"x-message-ttl":             ms,
			"x-dead-letter-exchange":    d.Name(),
			"x-dead-letter-routing-key": message.RoutingKey(),
		}
	case *Queue:
		queue = c.CreateQueue(fmt.Sprintf("enqueue.%s.%d.delayed", d.Name(), ms))
		queue.Arguments = amqp.Table{
			"x-message-ttl":             ms,
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": d.Name(),
		}
	default:
		return interop.NewInvalidDestinationError(destinationTypes, destination)
	}
	queue.Durable = true

	if _, err := c.DeclareQueue(queue); err != nil {
		return err
	}

	// A plain producer: the delayed copy must not be delayed again.
	return NewProducer(c.Channel(), c).Send(ctx, queue, delayed)
}
