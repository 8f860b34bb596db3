package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the subset of *amqp.Channel the forwarder needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPForwarder relays every event published on the bus to a RabbitMQ
// exchange, using the event type as routing key.
type AMQPForwarder struct {
	log        hclog.Logger
	bus        *EventBus[any]
	publisher  Publisher
	exchange   string
	subscriber Subscriber[any]
	wg         sync.WaitGroup
	once       sync.Once
}

// ExchangeDeclarer is the subset of *amqp.Channel DeclareExchange needs.
type ExchangeDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
}

// DeclareExchange declares the durable fanout exchange events are sent to.
func DeclareExchange(ch ExchangeDeclarer, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeFanout,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("unable to declare exchange %q: %w", exchange, err)
	}
	return nil
}

func NewAMQPForwarder(log hclog.Logger, bus *EventBus[any], publisher Publisher, exchange string) *AMQPForwarder {
	f := &AMQPForwarder{
		log:        log,
		bus:        bus,
		publisher:  publisher,
		exchange:   exchange,
		subscriber: bus.Subscribe(),
	}

	f.wg.Add(1)
	go f.run()

	return f
}

func (f *AMQPForwarder) run() {
	defer f.wg.Done()
	for event := range f.subscriber {
		if err := f.forward(event); err != nil {
			f.log.Error("Unable to forward event", "error", err)
		}
	}
}

func (f *AMQPForwarder) forward(event any) error {
	message, err := NewMessage(event)
	if err != nil {
		return err
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("unable to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = f.publisher.PublishWithContext(ctx, f.exchange, message.EventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("unable to publish %s: %w", message.EventType, err)
	}

	f.log.Debug("Forwarded event", "event_type", message.EventType)
	return nil
}

// Close unsubscribes from the bus and waits for in-flight events to be sent.
func (f *AMQPForwarder) Close() error {
	f.once.Do(func() {
		f.bus.Unsubscribe(f.subscriber)
		f.wg.Wait()
	})
	return nil
}
