package web

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/andybalholm/brotli"
	"github.com/cespare/xxhash"
	"github.com/thelolagemann/dmgcore/pkg/emulator"
)

// Type is the type of message sent to a client.
type Type = string

const (
	// Hello is sent once, when a client connects.
	Hello Type = "hello"
	// Response answers a command sent by the client.
	Response Type = "response"
	// Event is broadcast to every client when the emulator stops
	// running on its own.
	Event Type = "event"
	// ServerInfo is broadcast periodically with the connected
	// clients.
	ServerInfo Type = "info"
)

// Message is a JSON message sent to a client.
type Message struct {
	Type    Type             `json:"type"`
	ID      uint64           `json:"id,omitempty"`
	Command emulator.Command `json:"command"`
	Status  emulator.Status  `json:"status"`
	Error   string           `json:"error,omitempty"`

	Address   uint16              `json:"address,omitempty"`
	Lines     []string            `json:"lines,omitempty"`
	Registers *emulator.Registers `json:"registers,omitempty"`
	// Unchanged is set instead of Registers when the snapshot is
	// identical to the last one sent to the client.
	Unchanged bool `json:"unchanged,omitempty"`

	// Data is brotli compressed when Encoding is "br". Data sent
	// with a Slot should be kept by the client under that slot;
	// when Cached is set, Data is omitted and the client already
	// holds it.
	Data     []byte `json:"data,omitempty"`
	Encoding string `json:"encoding,omitempty"`
	Slot     *int   `json:"slot,omitempty"`
	Cached   bool   `json:"cached,omitempty"`

	Client  uint32       `json:"client,omitempty"`
	Clients []clientInfo `json:"clients,omitempty"`
}

type clientInfo struct {
	ID         uint32 `json:"id"`
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent"`
	LatencyMS  uint16 `json:"latency_ms"`
}

// encode builds the message for a response, deduplicating the
// register snapshot and compressing data for this client.
func (c *Client) encode(typ Type, resp emulator.ResponsePacket) ([]byte, error) {
	m := Message{
		Type:    typ,
		ID:      resp.ID,
		Command: resp.Command,
		Status:  resp.Status,
		Address: resp.Address,
		Lines:   resp.Lines,
	}
	if resp.Error != nil {
		m.Error = resp.Error.Error()
	}

	if resp.Registers != nil {
		b, err := json.Marshal(resp.Registers)
		if err != nil {
			return nil, err
		}
		hash := xxhash.Sum64(b)

		c.mu.Lock()
		if c.hasRegisters && hash == c.lastRegisters {
			m.Unchanged = true
		} else {
			m.Registers = resp.Registers
		}
		c.lastRegisters, c.hasRegisters = hash, true
		c.mu.Unlock()
	}

	if len(resp.Data) > 0 {
		if err := c.encodeData(&m, resp.Data); err != nil {
			return nil, err
		}
	}

	return json.Marshal(m)
}

func (c *Client) encodeData(m *Message, data []byte) error {
	if !c.hub.compression {
		m.Data = data
		return nil
	}

	hash := xxhash.Sum64(data)
	if slot := c.dumps.index(hash); slot >= 0 {
		m.Slot, m.Cached = &slot, true
		return nil
	}

	compressed, err := compress(data, c.hub.compressionLevel)
	if err != nil {
		return fmt.Errorf("web: compressing %d bytes: %w", len(data), err)
	}
	slot := c.dumps.add(hash)
	m.Data, m.Encoding, m.Slot = compressed, "br", &slot

	return nil
}

func compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, level)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
