package events

import (
	"fmt"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

type ProductCreated struct {
	Product domain.Product `json:"product"`
}

type ProductUpdated struct {
	Product domain.Product `json:"product"`
}

type ProductDeleted struct {
	ProductID int64 `json:"product_id"`
}

// Message is the envelope used wherever events leave the process.
type Message struct {
	EventType string      `json:"event-type"`
	Data      interface{} `json:"data"`
}

// NewMessage wraps a known event in its envelope.
func NewMessage(event any) (Message, error) {
	switch e := event.(type) {
	case ProductCreated:
		return Message{EventType: "product_created", Data: e}, nil
	case ProductUpdated:
		return Message{EventType: "product_updated", Data: e}, nil
	case ProductDeleted:
		return Message{EventType: "product_deleted", Data: e}, nil
	default:
		return Message{}, fmt.Errorf("unknown event type %T", event)
	}
}
