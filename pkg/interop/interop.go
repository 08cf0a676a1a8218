// Package interop holds the transport-agnostic queueing abstractions that
// concrete adapters such as amqplib implement.
package interop

import "context"

// Destination is the address a message is sent to.
type Destination interface {
	// Name returns the topic or queue name.
	Name() string
}

// Message is a payload plus caller-defined headers.
type Message interface {
	Body() []byte
	Headers() map[string]interface{}
}

// Producer sends messages to destinations.
type Producer interface {
	// Send publishes the message to the destination. Implementations reject
	// destination and message types they do not recognize.
	Send(ctx context.Context, destination Destination, message Message) error
}
