package amqplib

import (
	"maps"

	"github.com/streadway/amqp"

	"github.com/zoff-tech/go-amqp-interop/pkg/interop"
)

// ToPublishing translates m into the frame handed to basic.publish. Reserved
// properties map onto their own fields; application headers go into the
// headers table, which is left nil when there are none. Go int header values
// are stored as int64, the type they decode back to.
func ToPublishing(m *Message) amqp.Publishing {
	p := m.properties
	pub := amqp.Publishing{
		ContentType:     p.ContentType,
		ContentEncoding: p.ContentEncoding,
		DeliveryMode:    p.DeliveryMode,
		Priority:        p.Priority,
		CorrelationId:   p.CorrelationID,
		ReplyTo:         p.ReplyTo,
		Expiration:      p.Expiration,
		MessageId:       p.MessageID,
		Timestamp:       p.Timestamp,
		Type:            p.Type,
		UserId:          p.UserID,
		AppId:           p.AppID,
		Body:            m.body,
	}

	if len(m.headers) > 0 {
		pub.Headers = make(amqp.Table, len(m.headers))
		maps.Copy(pub.Headers, m.headers)
		for k, v := range pub.Headers {
			if i, ok := v.(int); ok {
				pub.Headers[k] = int64(i)
			}
		}
	}

	return pub
}

// route resolves the exchange and routing key for an already validated destination.
func route(destination interop.Destination, m *Message) (exchange, key string) {
	switch d := destination.(type) {
	case *Topic:
		return d.Name(), m.routingKey
	case *Queue:
		// Default exchange; a routing key set on the message is ignored.
		return "", d.Name()
	}
	return "", ""
}
