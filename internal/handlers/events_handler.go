package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/azurescope/explorer/config"
	"github.com/azurescope/explorer/pkg/event"
	"github.com/azurescope/explorer/pkg/logger"
)

// wsConn wraps a WebSocket connection with a write mutex. The scanner
// and the read loop's pong replies may write concurrently, which would
// otherwise corrupt the stream.
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.Close()
}

// Broadcaster fans scanner events out to every connected WebSocket
// client. It satisfies the dispatcher contract so the scanner can feed
// it alongside the configured notification channel.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*wsConn]struct{}

	upgrader websocket.Upgrader
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[*wsConn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// broadcaster is shared by the HTTP routes and the scanner.
var broadcaster = NewBroadcaster()

// EventBroadcaster returns the broadcaster events are published to.
func EventBroadcaster() *Broadcaster {
	return broadcaster
}

// Init initializes handler configuration
// Do nothing: the broadcaster has no configuration of its own
func (b *Broadcaster) Init(c *config.Config) error {
	return nil
}

// Handle sends an event to every connected client, dropping clients
// whose connection has gone away.
func (b *Broadcaster) Handle(e event.Event) {
	b.mu.RLock()
	clients := make([]*wsConn, 0, len(b.clients))
	for client := range b.clients {
		clients = append(clients, client)
	}
	b.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteJSON(e); err != nil {
			b.remove(client)
		}
	}
}

// ClientCount returns the number of connected event stream clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.clients)
}

func (b *Broadcaster) add(client *wsConn) {
	b.mu.Lock()
	b.clients[client] = struct{}{}
	b.mu.Unlock()
}

func (b *Broadcaster) remove(client *wsConn) {
	b.mu.Lock()
	_, ok := b.clients[client]
	delete(b.clients, client)
	b.mu.Unlock()

	if ok {
		client.Close()
	}
}

// EventStreamHandler upgrades the request to a WebSocket and streams
// scanner events until the client disconnects.
func EventStreamHandler(c *gin.Context) {
	conn, err := broadcaster.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log(logger.LevelError, nil, err, "upgrading event stream connection")
		return
	}

	client := &wsConn{conn: conn}
	broadcaster.add(client)

	logger.Log(logger.LevelInfo, map[string]string{
		"remoteAddr": conn.RemoteAddr().String(),
	}, nil, "event stream client connected")

	// The read loop only exists to notice the client going away.
	// Control frames are handled by gorilla internally during reads.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	broadcaster.remove(client)

	logger.Log(logger.LevelInfo, map[string]string{
		"remoteAddr": conn.RemoteAddr().String(),
	}, nil, "event stream client disconnected")
}
