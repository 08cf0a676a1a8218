package amqplib

import (
	"errors"

	"github.com/streadway/amqp"
)

// ErrTopologyNotSupported is returned by Context topology calls when the
// underlying channel cannot declare exchanges or queues.
var ErrTopologyNotSupported = errors.New("channel does not support topology declaration")

// Channel is the publish primitive the producer writes to.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Declarer manages exchanges, queues and bindings.
type Declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	ExchangeDelete(name string, ifUnused, noWait bool) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueDelete(name string, ifUnused, ifEmpty, noWait bool) (int, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	QueueUnbind(name, key, exchange string, args amqp.Table) error
	QueuePurge(name string, noWait bool) (int, error)
}

var (
	_ Channel  = (*amqp.Channel)(nil)
	_ Declarer = (*amqp.Channel)(nil)
)
