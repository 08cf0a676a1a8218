package config

import "time"

// ProducerSettings are defaults applied by every producer created from the context.
type ProducerSettings struct {
	Priority         uint8         `mapstructure:"priority"`
	TimeToLive       time.Duration `mapstructure:"time_to_live"`
	DeliveryDelay    time.Duration `mapstructure:"delivery_delay"`
	TracePropagation bool          `mapstructure:"trace_propagation"`
}
