package amqplib

import (
	"fmt"
)

// Context creates destinations, messages and producers bound to one channel
// and manages topology when the channel supports it.
type Context struct {
	channel         Channel
	producerOptions []ProducerOption
}

// NewContext wraps channel. opts are applied to every producer from CreateProducer.
func NewContext(channel Channel, opts ...ProducerOption) *Context {
	return &Context{channel: channel, producerOptions: opts}
}

func (c *Context) Channel() Channel {
	return c.channel
}

func (c *Context) CreateTopic(name string) *Topic {
	return NewTopic(name)
}

func (c *Context) CreateQueue(name string) *Queue {
	return NewQueue(name)
}

func (c *Context) CreateMessage(body []byte, headers map[string]interface{}, properties Properties) *Message {
	return NewMessage(body, headers, properties)
}

func (c *Context) CreateProducer() *Producer {
	return NewProducer(c.channel, c, c.producerOptions...)
}

// DeclareTopic declares the exchange. Redeclaring with the same attributes is a no-op on the broker.
func (c *Context) DeclareTopic(t *Topic) error {
	d, err := c.declarer()
	if err != nil {
		return err
	}
	if err := d.ExchangeDeclare(t.Name(), t.Type, t.Durable, t.AutoDelete, t.Internal, t.NoWait, t.Arguments); err != nil {
		return fmt.Errorf("failed to declare exchange %q: %w", t.Name(), err)
	}
	return nil
}

func (c *Context) DeleteTopic(t *Topic) error {
	d, err := c.declarer()
	if err != nil {
		return err
	}
	if err := d.ExchangeDelete(t.Name(), false, t.NoWait); err != nil {
		return fmt.Errorf("failed to delete exchange %q: %w", t.Name(), err)
	}
	return nil
}

// DeclareQueue declares q and returns the number of messages it holds.
func (c *Context) DeclareQueue(q *Queue) (int, error) {
	d, err := c.declarer()
	if err != nil {
		return 0, err
	}
	res, err := d.QueueDeclare(q.Name(), q.Durable, q.AutoDelete, q.Exclusive, q.NoWait, q.Arguments)
	if err != nil {
		return 0, fmt.Errorf("failed to declare queue %q: %w", q.Name(), err)
	}
	return res.Messages, nil
}

func (c *Context) DeleteQueue(q *Queue) error {
	d, err := c.declarer()
	if err != nil {
		return err
	}
	if _, err := d.QueueDelete(q.Name(), false, false, q.NoWait); err != nil {
		return fmt.Errorf("failed to delete queue %q: %w", q.Name(), err)
	}
	return nil
}

func (c *Context) PurgeQueue(q *Queue) error {
	d, err := c.declarer()
	if err != nil {
		return err
	}
	if _, err := d.QueuePurge(q.Name(), q.NoWait); err != nil {
		return fmt.Errorf("failed to purge queue %q: %w", q.Name(), err)
	}
	return nil
}

func (c *Context) Bind(b Binding) error {
	d, err := c.declarer()
	if err != nil {
		return err
	}
	if err := d.QueueBind(b.Queue.Name(), b.RoutingKey, b.Topic.Name(), b.NoWait, b.Arguments); err != nil {
		return fmt.Errorf("failed to bind queue %q to exchange %q: %w", b.Queue.Name(), b.Topic.Name(), err)
	}
	return nil
}

func (c *Context) Unbind(b Binding) error {
	d, err := c.declarer()
	if err != nil {
		return err
	}
	if err := d.QueueUnbind(b.Queue.Name(), b.RoutingKey, b.Topic.Name(), b.Arguments); err != nil {
		return fmt.Errorf("failed to unbind queue %q from exchange %q: %w", b.Queue.Name(), b.Topic.Name(), err)
	}
	return nil
}

func (c *Context) declarer() (Declarer, error) {
	if c == nil {
		return nil, ErrTopologyNotSupported
	}
	d, ok := c.channel.(Declarer)
	if !ok {
		return nil, ErrTopologyNotSupported
	}
	return d, nil
}
