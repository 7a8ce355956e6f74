package web

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thelolagemann/dmgcore/pkg/emulator"
)

const (
	// dumpSlots is the number of dumps a client is expected to keep.
	dumpSlots = 16

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Client is a websocket connection sending commands to the emulator.
type Client struct {
	mu       sync.Mutex
	hub      *hub
	conn     *websocket.Conn
	Send     chan []byte
	ID       uint32
	Metadata struct {
		RemoteAddr string
		UserAgent  string
	}
	avgLatency  uint16
	connectedAt time.Time

	dumps         *cache
	lastRegisters uint64
	hasRegisters  bool
}

// ReadPump reads commands from the connection, forwarding each to
// the emulator and queueing its response. Commands are either a
// line of text, as understood by emulator.ParseCommand, or a JSON
// encoded emulator.CommandPacket.
func (c *Client) ReadPump() {
	// deferred function to handle unregistering client
	// and closing connection
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warnf("web: client %d: %v", c.ID, err)
			}
			return // connection closed
		}

		cmd, err := decodeCommand(message)
		if err != nil {
			c.queue(Response, emulator.ResponsePacket{Error: err})
			continue
		}

		resp := c.hub.emu.SendCommand(cmd)
		if !c.queue(Response, resp) {
			return
		}
	}
}

func decodeCommand(message []byte) (emulator.CommandPacket, error) {
	message = bytes.TrimSpace(message)
	if len(message) > 0 && message[0] == '{' {
		var cmd emulator.CommandPacket
		err := json.Unmarshal(message, &cmd)
		return cmd, err
	}
	return emulator.ParseCommand(string(message))
}

// queue encodes a response for this client and queues it, reporting
// false if the client can no longer keep up.
func (c *Client) queue(typ Type, resp emulator.ResponsePacket) bool {
	msg, err := c.encode(typ, resp)
	if err != nil {
		c.hub.log.Errorf("web: client %d: %v", c.ID, err)
		return true
	}

	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// WritePump writes queued messages to the connection, and keeps it
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	// deferred function to handle unregistering client
	// and closing connection
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			// connection hub closed the connection
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// try to write message to client
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// update average latency
			if rtt, ok := roundTrip(c.conn.UnderlyingConn()); ok {
				c.mu.Lock()
				c.avgLatency = ((c.avgLatency * 9) + uint16(rtt.Milliseconds())) / 10
				c.mu.Unlock()
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.hub.done:
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}
	}
}

func (c *Client) info() clientInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clientInfo{
		ID:         c.ID,
		RemoteAddr: c.Metadata.RemoteAddr,
		UserAgent:  c.Metadata.UserAgent,
		LatencyMS:  c.avgLatency,
	}
}
