package emulator

import (
	"errors"
	"sync"
)

// Controller defines the interface contract for the emulator to
// implement in order for a front-end to be able to control it.
type Controller interface {
	// SendCommand sends a command packet to the emulator and
	// waits for its response.
	SendCommand(command CommandPacket) ResponsePacket
	// Events returns the unsolicited responses sent by the
	// emulator, such as a breakpoint being hit whilst running.
	Events() <-chan ResponsePacket
}

// ErrClosed is returned in the response to any command sent
// once the emulator has stopped serving commands.
var ErrClosed = errors.New("emulator: closed")

// eventBuffer is the number of events held for a slow reader
// before further events are dropped.
const eventBuffer = 64

// Client is a Controller over a command and response channel
// pair, as served by gameboy.GameBoy.Serve. It is safe for
// concurrent use: each command is tagged with an ID and its
// response is routed back to the caller that sent it.
type Client struct {
	commands chan<- CommandPacket

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan ResponsePacket
	closed  bool

	events chan ResponsePacket
	done   chan struct{}
}

// NewClient returns a Client sending to commands, and starts
// routing responses until the responses channel is closed.
func NewClient(commands chan<- CommandPacket, responses <-chan ResponsePacket) *Client {
	c := &Client{
		commands: commands,
		pending:  make(map[uint64]chan ResponsePacket),
		events:   make(chan ResponsePacket, eventBuffer),
		done:     make(chan struct{}),
	}
	go c.route(responses)

	return c
}

func (c *Client) route(responses <-chan ResponsePacket) {
	for resp := range responses {
		if resp.ID == 0 {
			select {
			case c.events <- resp:
			default:
				// nobody is listening
			}
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}

	// fail anything still waiting
	c.mu.Lock()
	c.closed = true
	for id, ch := range c.pending {
		ch <- ResponsePacket{ID: id, Status: Closed, Error: ErrClosed}
		delete(c.pending, id)
	}
	c.mu.Unlock()

	close(c.events)
	close(c.done)
}

// SendCommand implements Controller.
func (c *Client) SendCommand(command CommandPacket) ResponsePacket {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ResponsePacket{Command: command.Command, Status: Closed, Error: ErrClosed}
	}
	c.nextID++
	command.ID = c.nextID
	ch := make(chan ResponsePacket, 1)
	c.pending[command.ID] = ch
	c.mu.Unlock()

	select {
	case c.commands <- command:
	case <-c.done:
	}

	return <-ch
}

// Events implements Controller. The channel is closed once the
// emulator stops serving commands.
func (c *Client) Events() <-chan ResponsePacket {
	return c.events
}

// Done is closed once the emulator stops serving commands.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
