package broker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"

	"github.com/zoff-tech/go-amqp-interop/pkg/config"
)

// PubSubChannelCreator defines a function type for creating Pub/Sub channels.
type PubSubChannelCreator func(ctx context.Context, settings *config.BrokerSettings, opts ...option.ClientOption) (Channel, error)

// NewPubSubChannel is the default implementation of PubSubChannelCreator.
var NewPubSubChannel PubSubChannelCreator = func(ctx context.Context, settings *config.BrokerSettings, opts ...option.ClientOption) (Channel, error) {
	client, err := pubsub.NewClient(ctx, settings.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Pub/Sub: %w", err)
	}
	return newPubSubChannel(client), nil
}

// PubSubChannel carries AMQP publishes over Google Cloud Pub/Sub. The
// exchange names the topic; a send to the default exchange uses the routing
// key (the queue name) as topic instead. Headers and basic properties travel
// as string attributes.
type PubSubChannel struct {
	client *pubsub.Client
	tracer trace.Tracer

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

func newPubSubChannel(client *pubsub.Client) *PubSubChannel {
	return &PubSubChannel{
		client: client,
		tracer: otel.Tracer("go-amqp-interop"),
		topics: make(map[string]*pubsub.Topic),
	}
}

// Publish blocks until the server acknowledges the message. mandatory and
// immediate have no Pub/Sub counterpart and are ignored.
func (p *PubSubChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	topicID, orderingKey := exchange, key
	if exchange == "" {
		topicID, orderingKey = key, ""
	}

	ctx, span := p.tracer.Start(context.Background(), "Publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKey.String("pubsub"),
			semconv.MessagingDestinationKindKey.String("topic"),
			semconv.MessagingDestinationKey.String(topicID),
		),
	)
	defer span.End()

	topic := p.topic(topicID)
	res := topic.Publish(ctx, &pubsub.Message{
		Data:        msg.Body,
		Attributes:  Attributes(msg),
		OrderingKey: orderingKey,
	})
	if _, err := res.Get(ctx); err != nil {
		if orderingKey != "" {
			// A failed ordered publish pauses the key until resumed.
			topic.ResumePublish(orderingKey)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(
		attribute.Int("messaging.message_payload_size_bytes", len(msg.Body)),
	)

	return nil
}

func (p *PubSubChannel) Close() error {
	p.mu.Lock()
	for id, t := range p.topics {
		t.Stop()
		delete(p.topics, id)
	}
	p.mu.Unlock()

	return p.client.Close()
}

func (p *PubSubChannel) topic(id string) *pubsub.Topic {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.topics[id]
	if !ok {
		t = p.client.Topic(id)
		t.EnableMessageOrdering = true
		p.topics[id] = t
	}
	return t
}

// PropertyPrefix marks attributes carrying basic properties.
const PropertyPrefix = "amqp."

// Attributes flattens the headers table and the set basic properties into
// Pub/Sub string attributes. Headers keep their names; properties use their
// AMQP field names under PropertyPrefix so the two never collide.
func Attributes(msg amqp.Publishing) map[string]string {
	attrs := make(map[string]string, len(msg.Headers)+4)
	for k, v := range msg.Headers {
		switch val := v.(type) {
		case string:
			attrs[k] = val
		case []byte:
			attrs[k] = string(val)
		case time.Time:
			attrs[k] = val.UTC().Format(time.RFC3339Nano)
		default:
			attrs[k] = fmt.Sprint(val)
		}
	}

	set := func(name, value string) {
		if value != "" {
			attrs[PropertyPrefix+name] = value
		}
	}
	set("content_type", msg.ContentType)
	set("content_encoding", msg.ContentEncoding)
	set("correlation_id", msg.CorrelationId)
	set("reply_to", msg.ReplyTo)
	set("expiration", msg.Expiration)
	set("message_id", msg.MessageId)
	set("type", msg.Type)
	set("user_id", msg.UserId)
	set("app_id", msg.AppId)
	if msg.DeliveryMode != 0 {
		set("delivery_mode", strconv.Itoa(int(msg.DeliveryMode)))
	}
	if msg.Priority != 0 {
		set("priority", strconv.Itoa(int(msg.Priority)))
	}
	if !msg.Timestamp.IsZero() {
		set("timestamp", msg.Timestamp.UTC().Format(time.RFC3339Nano))
	}

	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
