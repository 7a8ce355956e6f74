package gameboy

import (
	"context"
	"fmt"

	"github.com/thelolagemann/dmgcore/pkg/emulator"
)

// Serve executes commands until CommandClose is received, the
// commands channel is closed or ctx is done. Every command is
// answered on responses with a packet carrying the same ID, and
// responses is closed when Serve returns.
//
// Commands are only ever handled between two instruction steps, so
// no component is observed or modified mid-instruction. While paused
// Serve blocks on commands; while running it checks for a command
// before every step, and stops when PC reaches a breakpoint or a step
// fails. Stopping is announced with an event, a response with an ID
// of 0.
func (g *GameBoy) Serve(ctx context.Context, commands <-chan emulator.CommandPacket, responses chan<- emulator.ResponsePacket) error {
	defer close(responses)

	send := func(resp emulator.ResponsePacket) bool {
		select {
		case responses <- resp:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if g.status == emulator.Running {
		g.status = emulator.Paused
	}

	for {
		if g.status == emulator.Running {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case cmd, ok := <-commands:
				if !ok {
					return nil
				}
				resp := g.execute(ctx, cmd)
				if !send(resp) {
					return ctx.Err()
				}
				if cmd.Command == emulator.CommandClose {
					return nil
				}
			default:
				if event, stopped := g.run(); stopped && !send(event) {
					return ctx.Err()
				}
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-commands:
			if !ok {
				return nil
			}
			resp := g.execute(ctx, cmd)
			if !send(resp) {
				return ctx.Err()
			}
			if cmd.Command == emulator.CommandClose {
				return nil
			}
		}
	}
}

// run executes a single step whilst running, returning the event
// to send if execution stopped.
func (g *GameBoy) run() (emulator.ResponsePacket, bool) {
	if _, err := g.Step(); err != nil {
		g.Errorf("gameboy: %v", err)
		return g.event(err), true
	}

	if g.AtBreakpoint() {
		g.status = emulator.Paused
		g.Infof("gameboy: breakpoint hit at 0x%04X", g.CPU.PC)
		return g.event(nil), true
	}

	return emulator.ResponsePacket{}, false
}

func (g *GameBoy) event(err error) emulator.ResponsePacket {
	regs := g.Snapshot()
	resp := emulator.ResponsePacket{
		Command:   emulator.CommandContinue,
		Registers: &regs,
		Status:    g.Status(),
		Error:     err,
	}
	if err == nil {
		resp.Lines = []string{fmt.Sprintf("breakpoint 0x%04X", g.CPU.PC)}
	}
	return resp
}

// execute handles a single command, returning its response. Counts
// are clamped to the limits in package emulator, and a multi-step
// stops early once ctx is done.
func (g *GameBoy) execute(ctx context.Context, cmd emulator.CommandPacket) emulator.ResponsePacket {
	resp := emulator.ResponsePacket{ID: cmd.ID, Command: cmd.Command, Address: cmd.Address}

	switch cmd.Command {
	case emulator.CommandStep:
		g.status = emulator.Paused
		n := clamp(cmd.Count, 1, emulator.MaxStep)
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				resp.Error = err
				break
			}
			if _, err := g.Step(); err != nil {
				resp.Error = err
				break
			}
			if i < n-1 && g.AtBreakpoint() {
				resp.Lines = append(resp.Lines, fmt.Sprintf("breakpoint 0x%04X", g.CPU.PC))
				break
			}
		}
		resp.Lines = append(resp.Lines, g.Disassemble(g.CPU.PC, 1)...)
		resp.Registers = g.registers()
	case emulator.CommandContinue:
		if g.status != emulator.Errored {
			g.status = emulator.Running
		} else {
			resp.Error = fmt.Errorf("gameboy: cannot continue after an error, reset first")
		}
	case emulator.CommandPause:
		if g.status == emulator.Running {
			g.status = emulator.Paused
		}
		resp.Registers = g.registers()
	case emulator.CommandBreak:
		g.SetBreakpoint(cmd.Address)
		resp.Lines = []string{fmt.Sprintf("breakpoint set at 0x%04X", cmd.Address)}
	case emulator.CommandClear:
		if g.ClearBreakpoint(cmd.Address) {
			resp.Lines = []string{fmt.Sprintf("breakpoint cleared at 0x%04X", cmd.Address)}
		} else {
			resp.Error = fmt.Errorf("gameboy: no breakpoint at 0x%04X", cmd.Address)
		}
	case emulator.CommandBreakpoints:
		for _, a := range g.Breakpoints() {
			resp.Lines = append(resp.Lines, fmt.Sprintf("0x%04X", a))
		}
	case emulator.CommandPeek:
		resp.Data = []byte{g.Peek(cmd.Address)}
	case emulator.CommandRegisters:
		resp.Registers = g.registers()
	case emulator.CommandDump:
		n := clamp(cmd.Count, emulator.MaxDump, emulator.MaxDump)
		resp.Data = g.MMU.Range(cmd.Address, n)
	case emulator.CommandDisassemble:
		address := cmd.Address
		if cmd.FromPC {
			address = g.CPU.PC
		}
		resp.Lines = g.Disassemble(address, clamp(cmd.Count, 1, emulator.MaxDisassemble))
	case emulator.CommandReset:
		g.Reset()
		resp.Registers = g.registers()
	case emulator.CommandClose:
		g.status = emulator.Closed
	default:
		resp.Error = fmt.Errorf("gameboy: unknown command %v", cmd.Command)
	}

	resp.Status = g.Status()
	return resp
}

// clamp bounds a requested count to limit, substituting def when
// none was given.
func clamp(n, def, limit int) int {
	switch {
	case n < 1:
		return def
	case n > limit:
		return limit
	}
	return n
}

func (g *GameBoy) registers() *emulator.Registers {
	r := g.Snapshot()
	return &r
}
