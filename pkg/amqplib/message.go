package amqplib

import (
	"maps"
	"strconv"
	"time"
)

// Flag carries basic.publish bits on a message.
type Flag int

const (
	FlagMandatory Flag = 1 << iota
	FlagImmediate

	FlagNone Flag = 0
)

const (
	DeliveryModeTransient  uint8 = 1
	DeliveryModePersistent uint8 = 2
)

// Properties are the AMQP basic properties with a dedicated slot in the
// content header. A zero field is absent on the wire.
type Properties struct {
	ContentType     string
	ContentEncoding string
	DeliveryMode    uint8
	Priority        uint8
	CorrelationID   string
	ReplyTo         string
	Expiration      string
	MessageID       string
	Timestamp       time.Time
	Type            string
	UserID          string
	AppID           string
}

// Message is an AMQP message before translation. Application headers and
// reserved properties are kept apart and only merged by ToPublishing.
type Message struct {
	body       []byte
	headers    map[string]interface{}
	properties Properties
	routingKey string
	flags      Flag
}

// NewMessage copies headers; later changes to the map do not affect the message.
func NewMessage(body []byte, headers map[string]interface{}, properties Properties) *Message {
	m := &Message{
		body:       body,
		headers:    make(map[string]interface{}, len(headers)),
		properties: properties,
	}
	maps.Copy(m.headers, headers)
	return m
}

func (m *Message) Body() []byte {
	return m.body
}

func (m *Message) SetBody(body []byte) {
	m.body = body
}

// Headers returns a copy of the application headers.
func (m *Message) Headers() map[string]interface{} {
	return maps.Clone(m.headers)
}

// SetHeaders replaces all application headers with a copy of headers.
func (m *Message) SetHeaders(headers map[string]interface{}) {
	m.headers = make(map[string]interface{}, len(headers))
	maps.Copy(m.headers, headers)
}

func (m *Message) Header(name string) (interface{}, bool) {
	v, ok := m.headers[name]
	return v, ok
}

func (m *Message) SetHeader(name string, value interface{}) {
	if m.headers == nil {
		m.headers = make(map[string]interface{})
	}
	m.headers[name] = value
}

func (m *Message) DelHeader(name string) {
	delete(m.headers, name)
}

func (m *Message) Properties() Properties {
	return m.properties
}

func (m *Message) SetProperties(properties Properties) {
	m.properties = properties
}

func (m *Message) ContentType() string {
	return m.properties.ContentType
}

func (m *Message) SetContentType(contentType string) {
	m.properties.ContentType = contentType
}

func (m *Message) CorrelationID() string {
	return m.properties.CorrelationID
}

func (m *Message) SetCorrelationID(id string) {
	m.properties.CorrelationID = id
}

func (m *Message) MessageID() string {
	return m.properties.MessageID
}

func (m *Message) SetMessageID(id string) {
	m.properties.MessageID = id
}

func (m *Message) ReplyTo() string {
	return m.properties.ReplyTo
}

func (m *Message) SetReplyTo(replyTo string) {
	m.properties.ReplyTo = replyTo
}

func (m *Message) Timestamp() time.Time {
	return m.properties.Timestamp
}

func (m *Message) SetTimestamp(ts time.Time) {
	m.properties.Timestamp = ts
}

func (m *Message) Priority() uint8 {
	return m.properties.Priority
}

func (m *Message) SetPriority(priority uint8) {
	m.properties.Priority = priority
}

// SetPersistent toggles the delivery mode between persistent and transient.
func (m *Message) SetPersistent(persistent bool) {
	if persistent {
		m.properties.DeliveryMode = DeliveryModePersistent
		return
	}
	m.properties.DeliveryMode = DeliveryModeTransient
}

// SetExpiration sets the per-message TTL, encoded as milliseconds.
func (m *Message) SetExpiration(ttl time.Duration) {
	m.properties.Expiration = strconv.FormatInt(ttl.Milliseconds(), 10)
}

func (m *Message) Expiration() string {
	return m.properties.Expiration
}

// RoutingKey is honoured for topic sends only; queue sends always route by queue name.
func (m *Message) RoutingKey() string {
	return m.routingKey
}

func (m *Message) SetRoutingKey(key string) {
	m.routingKey = key
}

func (m *Message) Flags() Flag {
	return m.flags
}

func (m *Message) SetFlags(flags Flag) {
	m.flags = flags
}

func (m *Message) AddFlag(flag Flag) {
	m.flags |= flag
}

func (m *Message) HasFlag(flag Flag) bool {
	return m.flags&flag == flag
}

// Clone copies the message. The header map is duplicated, the body slice is shared.
func (m *Message) Clone() *Message {
	c := *m
	c.headers = make(map[string]interface{}, len(m.headers))
	maps.Copy(c.headers, m.headers)
	return &c
}
