package amqplib

import (
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/mock"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, mandatory, immediate, msg).Error(0)
}

// mockSession is a channel that can also manage topology.
type mockSession struct {
	mockChannel
}

func (m *mockSession) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind, durable, autoDelete, internal, noWait, args).Error(0)
}

func (m *mockSession) ExchangeDelete(name string, ifUnused, noWait bool) error {
	return m.Called(name, ifUnused, noWait).Error(0)
}

func (m *mockSession) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	ret := m.Called(name, durable, autoDelete, exclusive, noWait, args)
	return ret.Get(0).(amqp.Queue), ret.Error(1)
}

func (m *mockSession) QueueDelete(name string, ifUnused, ifEmpty, noWait bool) (int, error) {
	ret := m.Called(name, ifUnused, ifEmpty, noWait)
	return ret.Int(0), ret.Error(1)
}

func (m *mockSession) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	return m.Called(name, key, exchange, noWait, args).Error(0)
}

func (m *mockSession) QueueUnbind(name, key, exchange string, args amqp.Table) error {
	return m.Called(name, key, exchange, args).Error(0)
}

func (m *mockSession) QueuePurge(name string, noWait bool) (int, error) {
	ret := m.Called(name, noWait)
	return ret.Int(0), ret.Error(1)
}

// fooDestination and fooMessage are interop values of no amqplib type.
type fooDestination struct{}

func (fooDestination) Name() string { return "foo" }

type fooMessage struct{}

func (fooMessage) Body() []byte                    { return []byte("body") }
func (fooMessage) Headers() map[string]interface{} { return nil }

// capturePublish records the Publishing passed to the next Publish call.
func capturePublish(call *mock.Call, into *amqp.Publishing) *mock.Call {
	return call.Run(func(args mock.Arguments) {
		*into = args.Get(4).(amqp.Publishing)
	})
}
