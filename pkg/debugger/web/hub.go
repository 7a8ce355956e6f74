package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thelolagemann/dmgcore/pkg/emulator"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

// infoPeriod is how often the connected clients are broadcast.
const infoPeriod = time.Second

type hub struct {
	clients map[*Client]bool
	emu     emulator.Controller

	register, unregister chan *Client
	done                 chan struct{}

	compression      bool
	compressionLevel int
	currentID        uint32

	log log.Logger
	mu  sync.Mutex
}

func newHub(emu emulator.Controller, s *Server) *hub {
	return &hub{
		clients:          make(map[*Client]bool),
		emu:              emu,
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		done:             make(chan struct{}),
		compression:      s.Compression,
		compressionLevel: s.CompressionLevel,
		log:              s.Logger,
	}
}

// run registers clients and broadcasts emulator events until ctx is
// done or the emulator closes.
func (h *hub) run(ctx context.Context) {
	ticker := time.NewTicker(infoPeriod)
	defer func() {
		ticker.Stop()
		close(h.done)
		for c := range h.clients {
			c.conn.Close()
		}
	}()

	events := h.emu.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = true
			h.log.Infof("web: client %d connected from %s", c.ID, c.Metadata.RemoteAddr)
		case c := <-h.unregister:
			// is this client still registered
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.Send)
				h.log.Infof("web: client %d disconnected", c.ID)
			}
		case ev, ok := <-events:
			if !ok {
				// the emulator has closed
				return
			}
			for c := range h.clients {
				if !c.queue(Event, ev) {
					h.drop(c)
				}
			}
		case <-ticker.C:
			if len(h.clients) == 0 {
				continue
			}
			h.broadcastInfo()
		}
	}
}

// drop disconnects a client that can no longer keep up. Closing the
// connection ends its read pump, which unregisters it.
func (h *hub) drop(c *Client) {
	h.log.Warnf("web: client %d is not keeping up, disconnecting", c.ID)
	c.conn.Close()
}

func (h *hub) broadcastInfo() {
	m := Message{Type: ServerInfo}
	for c := range h.clients {
		m.Clients = append(m.Clients, c.info())
	}
	sort.Slice(m.Clients, func(i, j int) bool { return m.Clients[i].ID < m.Clients[j].ID })

	b, err := json.Marshal(m)
	if err != nil {
		h.log.Errorf("web: %v", err)
		return
	}
	for c := range h.clients {
		select {
		case c.Send <- b:
		default:
		}
	}
}

// newClient creates a new client and registers it to the hub
func (h *hub) newClient(conn *websocket.Conn, r *http.Request) *Client {
	h.mu.Lock()
	h.currentID++
	id := h.currentID
	h.mu.Unlock()

	c := &Client{
		hub:         h,
		conn:        conn,
		Send:        make(chan []byte, 256),
		ID:          id,
		connectedAt: time.Now(),
		dumps:       newCache(dumpSlots),
	}
	c.Metadata.RemoteAddr = r.RemoteAddr
	c.Metadata.UserAgent = r.Header.Get("User-Agent")

	return c
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 4,
	WriteBufferSize: 1024 * 16,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeHTTP upgrades the connection to a websocket and starts the
// client's read and write pumps.
func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("web: upgrade: %v", err)
		return
	}

	c := h.newClient(conn, r)
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	// send initial information before any response
	hello, _ := json.Marshal(Message{Type: Hello, Client: c.ID})
	c.Send <- hello

	go c.ReadPump()
	go c.WritePump()
}
