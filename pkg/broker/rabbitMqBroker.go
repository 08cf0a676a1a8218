package broker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/zoff-tech/go-amqp-interop/pkg/amqplib"
	"github.com/zoff-tech/go-amqp-interop/pkg/config"
)

// ErrChannelClosed is returned by calls made after Close.
var ErrChannelClosed = errors.New("rabbitmq channel is closed")

type RabbitMQChannelCreator func(ctx context.Context, settings *config.BrokerSettings, logger *zap.Logger) (Channel, error)

// NewRabbitMQChannel dials the broker and fills the channel pool.
var NewRabbitMQChannel RabbitMQChannelCreator = func(ctx context.Context, settings *config.BrokerSettings, logger *zap.Logger) (Channel, error) {
	return newRabbitMQChannel(settings, logger)
}

// RabbitMQChannel spreads publishes and topology calls over a pool of AMQP
// channels sharing one connection. It satisfies amqplib.Channel and
// amqplib.Declarer, so it can back an amqplib.Context directly.
type RabbitMQChannel struct {
	connection      amqpConnection
	channelPool     chan *pooledChannel
	mu              sync.Mutex
	closed          bool
	settings        *config.BrokerSettings
	logger          *zap.Logger
	reconnectTicker *time.Ticker
	stopReconnect   chan struct{}
}

var (
	_ amqplib.Channel  = (*RabbitMQChannel)(nil)
	_ amqplib.Declarer = (*RabbitMQChannel)(nil)
)

func newRabbitMQChannel(settings *config.BrokerSettings, logger *zap.Logger) (*RabbitMQChannel, error) {
	if settings.PoolSize <= 0 {
		return nil, errors.New("poolSize must be greater than 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &RabbitMQChannel{
		settings:      settings,
		logger:        logger.Named("rabbitmq"),
		stopReconnect: make(chan struct{}),
	}

	if err := r.connectAndInitialize(); err != nil {
		return nil, err
	}

	if settings.ReconnectInterval > 0 {
		r.reconnectTicker = time.NewTicker(settings.ReconnectInterval)
		go r.recoverConnection()
	}

	return r, nil
}

func (r *RabbitMQChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return r.withChannel(func(ch amqpChannel) error {
		return ch.Publish(exchange, key, mandatory, immediate, msg)
	})
}

func (r *RabbitMQChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return r.withChannel(func(ch amqpChannel) error {
		return ch.ExchangeDeclare(name, kind, durable, autoDelete, internal, noWait, args)
	})
}

func (r *RabbitMQChannel) ExchangeDelete(name string, ifUnused, noWait bool) error {
	return r.withChannel(func(ch amqpChannel) error {
		return ch.ExchangeDelete(name, ifUnused, noWait)
	})
}

func (r *RabbitMQChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	var q amqp.Queue
	err := r.withChannel(func(ch amqpChannel) error {
		var err error
		q, err = ch.QueueDeclare(name, durable, autoDelete, exclusive, noWait, args)
		return err
	})
	return q, err
}

func (r *RabbitMQChannel) QueueDelete(name string, ifUnused, ifEmpty, noWait bool) (int, error) {
	var n int
	err := r.withChannel(func(ch amqpChannel) error {
		var err error
		n, err = ch.QueueDelete(name, ifUnused, ifEmpty, noWait)
		return err
	})
	return n, err
}

func (r *RabbitMQChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	return r.withChannel(func(ch amqpChannel) error {
		return ch.QueueBind(name, key, exchange, noWait, args)
	})
}

func (r *RabbitMQChannel) QueueUnbind(name, key, exchange string, args amqp.Table) error {
	return r.withChannel(func(ch amqpChannel) error {
		return ch.QueueUnbind(name, key, exchange, args)
	})
}

func (r *RabbitMQChannel) QueuePurge(name string, noWait bool) (int, error) {
	var n int
	err := r.withChannel(func(ch amqpChannel) error {
		var err error
		n, err = ch.QueuePurge(name, noWait)
		return err
	})
	return n, err
}

func (r *RabbitMQChannel) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	// Stop the connection recovery goroutine
	close(r.stopReconnect)
	if r.reconnectTicker != nil {
		r.reconnectTicker.Stop()
	}

	drainPool(r.channelPool)

	if r.connection != nil {
		return r.connection.Close()
	}
	return nil
}

// withChannel runs fn on a pooled channel and hands the channel back afterwards.
func (r *RabbitMQChannel) withChannel(fn func(ch amqpChannel) error) error {
	pooledChan, err := r.getChannel()
	if err != nil {
		return err
	}
	defer r.releaseChannel(pooledChan)

	return fn(pooledChan.channel)
}
