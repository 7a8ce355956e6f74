package emulator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CommandPacket is a command packet that is sent to the
// emulator to control it. Address and Count are only
// meaningful for the commands that take them.
type CommandPacket struct {
	ID      uint64  `json:"id,omitempty"`
	Command Command `json:"command"`
	Address uint16  `json:"address,omitempty"`
	Count   int     `json:"count,omitempty"`
	FromPC  bool    `json:"from_pc,omitempty"` // disassemble from PC, ignoring Address
	Data    []byte  `json:"data,omitempty"`
}

// Command is a command that is sent to the emulator to
// control it.
type Command int

// ResponsePacket is a response packet that is sent
// from the emulator to the client. A response carries
// the ID of the command it answers; responses with an
// ID of 0 are events, such as a breakpoint being hit
// whilst running.
type ResponsePacket struct {
	ID        uint64     `json:"id,omitempty"`
	Command   Command    `json:"command"`
	Address   uint16     `json:"address,omitempty"`
	Data      []byte     `json:"data,omitempty"`
	Lines     []string   `json:"lines,omitempty"`
	Registers *Registers `json:"registers,omitempty"`
	Status    Status     `json:"status"`
	Error     error      `json:"-"`
}

const (
	// CommandStep executes Count instructions (at least 1).
	CommandStep Command = iota
	// CommandContinue runs until a breakpoint, an error or
	// CommandPause.
	CommandContinue
	// CommandPause pauses the emulator.
	CommandPause
	// CommandBreak sets a breakpoint at Address.
	CommandBreak
	// CommandClear clears the breakpoint at Address.
	CommandClear
	// CommandBreakpoints lists the breakpoints.
	CommandBreakpoints
	// CommandPeek reads the byte at Address.
	CommandPeek
	// CommandRegisters returns a register snapshot.
	CommandRegisters
	// CommandDump reads Count bytes starting at Address.
	CommandDump
	// CommandDisassemble disassembles Count instructions
	// starting at Address.
	CommandDisassemble
	// CommandReset resets the emulator.
	CommandReset
	// CommandClose closes the emulator.
	CommandClose
)

var commandNames = map[Command]string{
	CommandStep:        "step",
	CommandContinue:    "continue",
	CommandPause:       "pause",
	CommandBreak:       "break",
	CommandClear:       "clear",
	CommandBreakpoints: "breakpoints",
	CommandPeek:        "peek",
	CommandRegisters:   "registers",
	CommandDump:        "dump",
	CommandDisassemble: "disasm",
	CommandReset:       "reset",
	CommandClose:       "quit",
}

// aliases accepted by ParseCommand, in addition to the
// command names themselves.
var aliases = map[string]Command{
	"s":    CommandStep,
	"c":    CommandContinue,
	"run":  CommandContinue,
	"b":    CommandBreak,
	"bp":   CommandBreakpoints,
	"p":    CommandPeek,
	"r":    CommandRegisters,
	"regs": CommandRegisters,
	"x":    CommandDump,
	"d":    CommandDisassemble,
	"q":    CommandClose,
	"exit": CommandClose,
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Command) MarshalText() ([]byte, error) {
	if _, ok := commandNames[c]; !ok {
		return nil, fmt.Errorf("emulator: unknown command %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Command) UnmarshalText(text []byte) error {
	cmd, ok := LookupCommand(string(text))
	if !ok {
		return fmt.Errorf("emulator: unknown command %q", text)
	}
	*c = cmd
	return nil
}

// LookupCommand returns the command with the given name
// or alias.
func LookupCommand(name string) (Command, bool) {
	name = strings.ToLower(name)
	for c, n := range commandNames {
		if n == name {
			return c, true
		}
	}
	c, ok := aliases[name]
	return c, ok
}

// Upper bounds on the counts a single command may carry.
const (
	// MaxStep is the most instructions executed by one step.
	MaxStep = 0x100000
	// MaxDump is the most bytes returned by one dump.
	MaxDump = 0x10000
	// MaxDisassemble is the most instructions returned by one
	// disassembly.
	MaxDisassemble = 0x400
)

// ErrEmptyCommand is returned by ParseCommand for a blank line.
var ErrEmptyCommand = errors.New("emulator: empty command")

// ParseCommand parses a single line of text into a
// CommandPacket. Addresses are hexadecimal, with or
// without a 0x or $ prefix, and counts are decimal.
//
//	step [n]
//	continue
//	pause
//	break <addr>
//	clear <addr>
//	breakpoints
//	peek <addr>
//	registers
//	dump <addr> [n]
//	disasm [addr] [n]
//	reset
//	quit
func ParseCommand(line string) (CommandPacket, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return CommandPacket{}, ErrEmptyCommand
	}

	cmd, ok := LookupCommand(fields[0])
	if !ok {
		return CommandPacket{}, fmt.Errorf("emulator: unknown command %q", fields[0])
	}
	args := fields[1:]
	p := CommandPacket{Command: cmd}

	var err error
	switch cmd {
	case CommandStep:
		p.Count = 1
		if len(args) > 0 {
			p.Count, err = parseCount(args[0], MaxStep)
		}
	case CommandBreak, CommandClear, CommandPeek:
		if len(args) != 1 {
			return p, fmt.Errorf("emulator: %s requires an address", cmd)
		}
		p.Address, err = ParseAddress(args[0])
	case CommandDump:
		if len(args) == 0 {
			return p, fmt.Errorf("emulator: %s requires an address", cmd)
		}
		p.Count = 16
		if p.Address, err = ParseAddress(args[0]); err == nil && len(args) > 1 {
			p.Count, err = parseCount(args[1], MaxDump)
		}
	case CommandDisassemble:
		// with no address, disassemble from PC
		p.Count = 8
		p.FromPC = len(args) == 0
		if len(args) > 0 {
			if p.Address, err = ParseAddress(args[0]); err == nil && len(args) > 1 {
				p.Count, err = parseCount(args[1], MaxDisassemble)
			}
		}
	}
	return p, err
}

// ParseAddress parses a 16-bit hexadecimal address.
func ParseAddress(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "0x"), "$")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("emulator: invalid address %q: %w", s, err)
	}
	return uint16(v), nil
}

// parseCount parses a decimal count in the range 1 to limit.
func parseCount(s string, limit int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > limit {
		return 0, fmt.Errorf("emulator: invalid count %q, expected 1-%d", s, limit)
	}
	return n, nil
}
