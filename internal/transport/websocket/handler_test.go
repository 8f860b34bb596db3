package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahvecikaan/product-catalog/internal/events"
)

func TestHandleWebSocketStreamsEvents(t *testing.T) {
	bus := events.NewEventBus[any]()
	h := NewHandler(hclog.NewNullLogger(), bus)

	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	// the subscription is registered after the upgrade completes, so keep
	// publishing until the first message arrives
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				bus.Publish(events.ProductDeleted{ProductID: 7})
			case <-stop:
				return
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg struct {
		EventType string `json:"event-type"`
		Data      struct {
			ProductID int64 `json:"product_id"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, "product_deleted", msg.EventType)
	assert.Equal(t, int64(7), msg.Data.ProductID)
}

func TestCheckOrigin(t *testing.T) {
	check := checkOrigin([]string{"http://localhost:3000"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(r), "requests without an origin are allowed")

	r.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, check(r))

	r.Header.Set("Origin", "http://evil.example.com")
	assert.False(t, check(r))

	assert.True(t, checkOrigin(nil)(r))
}
