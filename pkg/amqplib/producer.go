package amqplib

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/zoff-tech/go-amqp-interop/pkg/interop"
)

const (
	destinationTypes = "*amqplib.Topic or *amqplib.Queue"
	messageType      = "*amqplib.Message"
)

// ProducerOption configures a Producer.
type ProducerOption func(*Producer)

// WithPriority sets the priority applied to messages that carry none.
func WithPriority(priority uint8) ProducerOption {
	return func(p *Producer) {
		p.priority = priority
	}
}

// WithTimeToLive sets the expiration applied to messages that carry none.
func WithTimeToLive(ttl time.Duration) ProducerOption {
	return func(p *Producer) {
		p.timeToLive = ttl
	}
}

// WithDeliveryDelay delays every send by d. It needs a DelayStrategy.
func WithDeliveryDelay(d time.Duration) ProducerOption {
	return func(p *Producer) {
		p.deliveryDelay = d
	}
}

func WithDelayStrategy(s DelayStrategy) ProducerOption {
	return func(p *Producer) {
		p.delayStrategy = s
	}
}

// WithTracePropagation injects the span context of each send into the
// outgoing application headers.
func WithTracePropagation() ProducerOption {
	return func(p *Producer) {
		p.propagate = true
	}
}

// Producer publishes interop messages over an AMQP channel. It keeps no
// per-send state and adds no locking of its own.
type Producer struct {
	channel Channel
	context *Context
	tracer  trace.Tracer

	priority      uint8
	timeToLive    time.Duration
	deliveryDelay time.Duration
	delayStrategy DelayStrategy
	propagate     bool
}

var _ interop.Producer = (*Producer)(nil)

// NewProducer creates a producer publishing on channel. c is used for
// auxiliary work such as declaring delay queues; when nil, a context over
// channel is used.
func NewProducer(channel Channel, c *Context, opts ...ProducerOption) *Producer {
	if c == nil {
		c = NewContext(channel)
	}
	p := &Producer{
		channel: channel,
		context: c,
		tracer:  otel.Tracer("go-amqp-interop"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Send publishes message to destination. The destination must be a *Topic or
// a *Queue and the message a *Message; anything else fails before the channel
// is touched. Errors from the channel are returned as is.
func (p *Producer) Send(ctx context.Context, destination interop.Destination, message interop.Message) error {
	if err := validateDestination(destination); err != nil {
		return err
	}
	msg, err := validateMessage(message)
	if err != nil {
		return err
	}
	if p.deliveryDelay > 0 && p.delayStrategy == nil {
		return interop.ErrDeliveryDelayNotSupported
	}

	exchange, key := route(destination, msg)

	ctx, span := p.tracer.Start(ctx, "Send",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKey.String("rabbitmq"),
			destinationKind(destination),
			semconv.MessagingDestinationKey.String(destination.Name()),
			semconv.MessagingRabbitmqRoutingKeyKey.String(key),
		),
	)
	defer span.End()

	msg = p.prepare(ctx, msg)

	if p.deliveryDelay > 0 {
		span.SetAttributes(attribute.Int64("messaging.delivery_delay_ms", p.deliveryDelay.Milliseconds()))
		err = p.delayStrategy.DelayMessage(ctx, p.context, destination, msg, p.deliveryDelay)
	} else {
		err = p.channel.Publish(exchange, key, msg.HasFlag(FlagMandatory), msg.HasFlag(FlagImmediate), ToPublishing(msg))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(
		attribute.Int("messaging.message_payload_size_bytes", len(msg.body)),
	)

	return nil
}

// prepare applies producer defaults and trace headers. The caller's message
// is cloned before any change.
func (p *Producer) prepare(ctx context.Context, m *Message) *Message {
	props := m.properties
	changed := false

	if p.priority != 0 && props.Priority == 0 {
		props.Priority = p.priority
		changed = true
	}
	if p.timeToLive > 0 && props.Expiration == "" {
		props.Expiration = strconv.FormatInt(p.timeToLive.Milliseconds(), 10)
		changed = true
	}

	carrier := propagation.MapCarrier{}
	if p.propagate {
		otel.GetTextMapPropagator().Inject(ctx, carrier)
	}

	if !changed && len(carrier) == 0 {
		return m
	}

	out := m.Clone()
	out.properties = props
	for k, v := range carrier {
		out.headers[k] = v
	}
	return out
}

func validateDestination(destination interop.Destination) error {
	switch d := destination.(type) {
	case *Topic:
		if d != nil {
			return nil
		}
	case *Queue:
		if d != nil {
			return nil
		}
	}
	return interop.NewInvalidDestinationError(destinationTypes, destination)
}

func validateMessage(message interop.Message) (*Message, error) {
	if m, ok := message.(*Message); ok && m != nil {
		return m, nil
	}
	return nil, interop.NewInvalidMessageError(messageType, message)
}

func destinationKind(destination interop.Destination) attribute.KeyValue {
	if _, ok := destination.(*Queue); ok {
		return semconv.MessagingDestinationKindQueue
	}
	return semconv.MessagingDestinationKindTopic
}
