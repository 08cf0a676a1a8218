package broker

import (
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/zoff-tech/go-amqp-interop/pkg/amqplib"
)

type amqpConnection interface {
	Channel() (amqpChannel, error)
	Close() error
	IsClosed() bool
}

type amqpChannel interface {
	amqplib.Channel
	amqplib.Declarer
	Close() error
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
}

// streadwayConnection narrows *amqp.Connection to amqpConnection.
type streadwayConnection struct {
	*amqp.Connection
}

func (c streadwayConnection) Channel() (amqpChannel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

type pooledChannel struct {
	channel     amqpChannel
	notifyClose chan *amqp.Error
}

func newPooledChannel(ch amqpChannel) *pooledChannel {
	// Buffered: the library blocks on an unread close notification.
	return &pooledChannel{
		channel:     ch,
		notifyClose: ch.NotifyClose(make(chan *amqp.Error, 1)),
	}
}

// isClosed reports a close notification without blocking.
func (p *pooledChannel) isClosed() (bool, *amqp.Error) {
	select {
	case err := <-p.notifyClose:
		return true, err
	default:
		return false, nil
	}
}

var newConnection = func(url string, logger *zap.Logger) (amqpConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	// Set up a channel to handle connection close notifications
	notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		for err := range notifyClose {
			logger.Warn("connection closed", zap.Error(err))
		}
	}()

	return streadwayConnection{conn}, nil
}

func (r *RabbitMQChannel) connectAndInitialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrChannelClosed
	}

	// Close existing connection if it exists
	if r.connection != nil && !r.connection.IsClosed() {
		r.connection.Close()
	}

	connection, err := newConnection(r.settings.URL, r.logger)
	if err != nil {
		return err
	}

	pool := make(chan *pooledChannel, r.settings.PoolSize)
	for i := 0; i < r.settings.PoolSize; i++ {
		channel, err := connection.Channel()
		if err != nil {
			connection.Close()
			return fmt.Errorf("failed to open channel: %w", err)
		}
		pool <- newPooledChannel(channel)
	}

	// Channels of the previous connection are already dead; they are
	// discarded here or on release.
	drainPool(r.channelPool)
	r.connection = connection
	r.channelPool = pool

	r.logger.Info("connection and channel pool initialized", zap.Int("pool_size", r.settings.PoolSize))
	return nil
}

func (r *RabbitMQChannel) recoverConnection() {
	for {
		select {
		case <-r.reconnectTicker.C:
			if r.connectionClosed() {
				r.logger.Info("attempting to reconnect")
				if err := r.connectAndInitialize(); err != nil {
					r.logger.Error("failed to reconnect", zap.Error(err))
				} else {
					r.logger.Info("reconnected")
				}
			}
		case <-r.stopReconnect:
			r.logger.Debug("stopping connection recovery")
			return
		}
	}
}

func (r *RabbitMQChannel) connectionClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connection == nil || r.connection.IsClosed()
}

func (r *RabbitMQChannel) getChannel() (*pooledChannel, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrChannelClosed
	}
	pool, connection := r.channelPool, r.connection
	r.mu.Unlock()

	for {
		select {
		case pooledChan := <-pool:
			if closed, err := pooledChan.isClosed(); closed {
				r.logger.Debug("discarding closed channel", zap.Error(err))
				continue
			}
			return pooledChan, nil
		default:
			r.logger.Debug("channel pool empty, opening new channel")
			channel, err := connection.Channel()
			if err != nil {
				return nil, err
			}
			return newPooledChannel(channel), nil
		}
	}
}

func (r *RabbitMQChannel) releaseChannel(pooledChan *pooledChannel) {
	if closed, err := pooledChan.isClosed(); closed {
		r.logger.Debug("discarding closed channel", zap.Error(err))
		return
	}

	r.mu.Lock()
	pool, shutdown := r.channelPool, r.closed
	r.mu.Unlock()

	if shutdown {
		pooledChan.channel.Close()
		return
	}

	select {
	case pool <- pooledChan:
	default:
		r.logger.Debug("channel pool full, closing channel")
		pooledChan.channel.Close()
	}
}

func drainPool(pool chan *pooledChannel) {
	for {
		select {
		case pooledChan := <-pool:
			pooledChan.channel.Close()
		default:
			return
		}
	}
}
