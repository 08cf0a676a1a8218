package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/zoff-tech/go-amqp-interop/pkg/amqplib"
	"github.com/zoff-tech/go-amqp-interop/pkg/broker"
	"github.com/zoff-tech/go-amqp-interop/pkg/config"
	"github.com/zoff-tech/go-amqp-interop/pkg/interop"
	"github.com/zoff-tech/go-amqp-interop/pkg/telemetry"
)

type options struct {
	configPath  string
	topic       string
	queue       string
	routingKey  string
	body        string
	contentType string
	headers     map[string]string
	declare     bool
	mandatory   bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("amqp-publish", pflag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "./cmd/amqp-publish", "directory holding amqp-publish.yaml")
	fs.StringVar(&opts.topic, "topic", "", "exchange to publish to")
	fs.StringVar(&opts.queue, "queue", "", "queue to publish to through the default exchange")
	fs.StringVar(&opts.routingKey, "routing-key", "", "routing key (topic sends only)")
	fs.StringVar(&opts.body, "body", "", "message body")
	fs.StringVar(&opts.contentType, "content-type", "", "content_type property")
	fs.StringToStringVar(&opts.headers, "header", nil, "application header key=value, repeatable")
	fs.BoolVar(&opts.declare, "declare", false, "declare the destination before publishing")
	fs.BoolVar(&opts.mandatory, "mandatory", false, "set the mandatory publish flag")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if (opts.topic == "") == (opts.queue == "") {
		return nil, errors.New("exactly one of --topic or --queue is required")
	}
	return opts, nil
}

// producerOptions maps configured defaults onto producer options.
func producerOptions(cfg config.ProducerSettings) []amqplib.ProducerOption {
	var opts []amqplib.ProducerOption
	if cfg.Priority > 0 {
		opts = append(opts, amqplib.WithPriority(cfg.Priority))
	}
	if cfg.TimeToLive > 0 {
		opts = append(opts, amqplib.WithTimeToLive(cfg.TimeToLive))
	}
	if cfg.DeliveryDelay > 0 {
		opts = append(opts, amqplib.WithDeliveryDelay(cfg.DeliveryDelay), amqplib.WithDelayStrategy(amqplib.DLXDelayStrategy{}))
	}
	if cfg.TracePropagation {
		opts = append(opts, amqplib.WithTracePropagation())
	}
	return opts
}

// buildSend resolves the destination and message described by opts.
func buildSend(c *amqplib.Context, opts *options) (interop.Destination, *amqplib.Message) {
	headers := make(map[string]interface{}, len(opts.headers))
	for k, v := range opts.headers {
		headers[k] = v
	}
	message := c.CreateMessage([]byte(opts.body), headers, amqplib.Properties{ContentType: opts.contentType})
	message.SetRoutingKey(opts.routingKey)
	if opts.mandatory {
		message.AddFlag(amqplib.FlagMandatory)
	}

	if opts.topic != "" {
		return c.CreateTopic(opts.topic), message
	}
	return c.CreateQueue(opts.queue), message
}

func declare(c *amqplib.Context, destination interop.Destination) error {
	switch d := destination.(type) {
	case *amqplib.Topic:
		return c.DeclareTopic(d)
	case *amqplib.Queue:
		_, err := c.DeclareQueue(d)
		return err
	}
	return nil
}

func run(ctx context.Context, opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	logger, err := telemetry.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Observability)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Warn("error shutting down tracer provider", zap.Error(err))
		}
	}()

	channel, err := broker.NewChannel(ctx, &cfg.Broker, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}
	defer channel.Close()

	c := amqplib.NewContext(channel, producerOptions(cfg.Producer)...)
	destination, message := buildSend(c, opts)

	if opts.declare {
		if err := declare(c, destination); err != nil {
			return err
		}
	}

	if err := c.CreateProducer().Send(ctx, destination, message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	logger.Info("message sent",
		zap.String("destination", destination.Name()),
		zap.String("routing_key", message.RoutingKey()),
		zap.Int("body_size", len(message.Body())),
	)
	return nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		stop()
		log.Fatal(err)
	}
}
