package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakePublisher struct {
	mu       sync.Mutex
	sent     []published
	declared []declaredExchange
	err      error
}

func (p *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

type declaredExchange struct {
	name       string
	kind       string
	durable    bool
	autoDelete bool
	internal   bool
}

func (p *fakePublisher) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.declared = append(p.declared, declaredExchange{
		name:       name,
		kind:       kind,
		durable:    durable,
		autoDelete: autoDelete,
		internal:   internal,
	})
	return nil
}

func TestDeclareExchange(t *testing.T) {
	t.Run("declares a durable fanout exchange", func(t *testing.T) {
		ch := &fakePublisher{}

		require.NoError(t, DeclareExchange(ch, "product-events"))
		assert.Equal(t, []declaredExchange{{name: "product-events", kind: "fanout", durable: true}}, ch.declared)
	})

	t.Run("wraps broker errors", func(t *testing.T) {
		boom := errors.New("access refused")
		ch := &fakePublisher{err: boom}

		err := DeclareExchange(ch, "product-events")
		assert.ErrorIs(t, err, boom)
		assert.EqualError(t, err, `unable to declare exchange "product-events": access refused`)
	})
}

func TestAMQPForwarderPublishesEvents(t *testing.T) {
	bus := NewEventBus[any]()
	pub := &fakePublisher{}
	f := NewAMQPForwarder(hclog.NewNullLogger(), bus, pub, "products")

	bus.Publish(ProductCreated{Product: domain.Product{ID: 1, Name: "Scratcher", Maker: "Codesoom", Price: 5000}})
	bus.Publish(ProductDeleted{ProductID: 1})
	bus.Publish("ignored")

	// Close drains the subscriber before returning
	require.NoError(t, f.Close())

	require.Len(t, pub.sent, 2)
	assert.Equal(t, "products", pub.sent[0].exchange)
	assert.Equal(t, "product_created", pub.sent[0].key)
	assert.Equal(t, "application/json", pub.sent[0].msg.ContentType)
	assert.Equal(t, "product_deleted", pub.sent[1].key)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(pub.sent[1].msg.Body, &body))
	assert.Equal(t, "product_deleted", body["event-type"])
	assert.Equal(t, map[string]interface{}{"product_id": float64(1)}, body["data"])
}

func TestAMQPForwarderSurvivesPublishErrors(t *testing.T) {
	bus := NewEventBus[any]()
	pub := &fakePublisher{err: errors.New("channel closed")}
	f := NewAMQPForwarder(hclog.NewNullLogger(), bus, pub, "products")

	bus.Publish(ProductDeleted{ProductID: 1})

	require.NoError(t, f.Close())
	assert.Empty(t, pub.sent)
}
