package amqplib

import "github.com/streadway/amqp"

// Topic addresses an exchange. Messages sent to it are routed by the
// message's routing key.
type Topic struct {
	name string

	// Type is the exchange kind used when the topic is declared.
	Type       string
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  amqp.Table
}

// NewTopic returns a reference to a direct exchange.
func NewTopic(name string) *Topic {
	return &Topic{name: name, Type: amqp.ExchangeDirect}
}

// Name returns the exchange name.
func (t *Topic) Name() string { return t.name }

// Queue addresses a queue through the default exchange.
type Queue struct {
	name string

	Durable    bool
	AutoDelete bool
	Exclusive  bool
	NoWait     bool
	Arguments  amqp.Table
}

// NewQueue returns a queue named name with all declaration flags off.
func NewQueue(name string) *Queue {
	return &Queue{name: name}
}

// Name returns the queue name, which doubles as the routing key on publish.
func (q *Queue) Name() string { return q.name }

// Binding routes messages published to Topic into Queue.
type Binding struct {
	Topic      *Topic
	Queue      *Queue
	RoutingKey string
	NoWait     bool
	Arguments  amqp.Table
}
