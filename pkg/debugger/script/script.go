// Package script provides a debugger front-end driven by a Lua
// script. The script controls the emulator through a set of global
// functions:
//
//	step([n])            execute n instructions, returns registers
//	run()                run until a breakpoint, returns registers and
//	                     the reason execution stopped
//	pause()              stop running
//	breakpoint(addr)     set a breakpoint
//	clear(addr)          clear a breakpoint, returns whether one was set
//	breakpoints()        returns the breakpoints
//	peek(addr)           returns the byte at addr
//	dump(addr, n)        returns n bytes from addr as a string
//	registers()          returns registers
//	disasm([addr], [n])  returns n disassembled instructions
//	reset()              reset the emulator
//	print(...)           write to the front-end output
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thelolagemann/dmgcore/pkg/debugger"
	"github.com/thelolagemann/dmgcore/pkg/emulator"
	lua "github.com/yuin/gopher-lua"
)

func init() {
	s := New(os.Stdout)
	debugger.Install("script", s, []debugger.FrontendOption{
		{
			Name:        "file",
			Default:     "",
			Value:       &s.Path,
			Description: "The Lua script to run",
			Type:        "string",
		},
	})
}

// ErrNoScript is returned by Start when neither a path nor a source
// has been set.
var ErrNoScript = errors.New("script: no script given")

// Script runs a Lua script against the emulator.
type Script struct {
	// Path is the script file to run.
	Path string
	// Source, if set, is run instead of Path.
	Source string

	out io.Writer
}

// New returns a Script printing to out.
func New(out io.Writer) *Script {
	return &Script{out: out}
}

// Start implements debugger.Frontend.
func (s *Script) Start(ctx context.Context, emu emulator.Controller) error {
	if s.Path == "" && s.Source == "" {
		return ErrNoScript
	}

	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)

	b := &binding{ctx: ctx, emu: emu, out: s.out}
	for name, fn := range map[string]lua.LGFunction{
		"step":        b.step,
		"run":         b.run,
		"pause":       b.pause,
		"breakpoint":  b.breakpoint,
		"clear":       b.clear,
		"breakpoints": b.breakpoints,
		"peek":        b.peek,
		"dump":        b.dump,
		"registers":   b.registers,
		"disasm":      b.disasm,
		"reset":       b.reset,
		"print":       b.print,
	} {
		L.SetGlobal(name, L.NewFunction(fn))
	}

	var err error
	if s.Source != "" {
		err = L.DoString(s.Source)
	} else {
		err = L.DoFile(s.Path)
	}
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}

	return nil
}

// binding holds the state shared by the Lua globals.
type binding struct {
	ctx context.Context
	emu emulator.Controller
	out io.Writer
}

// send sends a command, raising a Lua error if it failed.
func (b *binding) send(L *lua.LState, cmd emulator.CommandPacket) emulator.ResponsePacket {
	resp := b.emu.SendCommand(cmd)
	if resp.Error != nil {
		L.RaiseError("%s: %v", cmd.Command, resp.Error)
	}
	return resp
}

func checkAddress(L *lua.LState, n int) uint16 {
	v := L.CheckInt(n)
	if v < 0 || v > 0xFFFF {
		L.ArgError(n, "address out of range")
	}
	return uint16(v)
}

func (b *binding) step(L *lua.LState) int {
	resp := b.send(L, emulator.CommandPacket{Command: emulator.CommandStep, Count: L.OptInt(1, 1)})
	L.Push(registersTable(L, resp.Registers))
	return 1
}

func (b *binding) run(L *lua.LState) int {
	b.send(L, emulator.CommandPacket{Command: emulator.CommandContinue})

	select {
	case ev, ok := <-b.emu.Events():
		if !ok {
			L.RaiseError("run: %v", emulator.ErrClosed)
		}
		reason := "breakpoint"
		if ev.Error != nil {
			reason = ev.Error.Error()
		}
		L.Push(registersTable(L, ev.Registers))
		L.Push(lua.LString(reason))
		return 2
	case <-b.ctx.Done():
		L.RaiseError("run: %v", b.ctx.Err())
	}
	return 0
}

func (b *binding) pause(L *lua.LState) int {
	b.send(L, emulator.CommandPacket{Command: emulator.CommandPause})
	return 0
}

func (b *binding) breakpoint(L *lua.LState) int {
	b.send(L, emulator.CommandPacket{Command: emulator.CommandBreak, Address: checkAddress(L, 1)})
	return 0
}

func (b *binding) clear(L *lua.LState) int {
	resp := b.emu.SendCommand(emulator.CommandPacket{Command: emulator.CommandClear, Address: checkAddress(L, 1)})
	L.Push(lua.LBool(resp.Error == nil))
	return 1
}

func (b *binding) breakpoints(L *lua.LState) int {
	resp := b.send(L, emulator.CommandPacket{Command: emulator.CommandBreakpoints})
	t := L.NewTable()
	for _, l := range resp.Lines {
		a, err := emulator.ParseAddress(l)
		if err != nil {
			L.RaiseError("breakpoints: %v", err)
		}
		t.Append(lua.LNumber(a))
	}
	L.Push(t)
	return 1
}

func (b *binding) peek(L *lua.LState) int {
	resp := b.send(L, emulator.CommandPacket{Command: emulator.CommandPeek, Address: checkAddress(L, 1)})
	L.Push(lua.LNumber(resp.Data[0]))
	return 1
}

func (b *binding) dump(L *lua.LState) int {
	resp := b.send(L, emulator.CommandPacket{
		Command: emulator.CommandDump,
		Address: checkAddress(L, 1),
		Count:   L.CheckInt(2),
	})
	L.Push(lua.LString(resp.Data))
	return 1
}

func (b *binding) registers(L *lua.LState) int {
	resp := b.send(L, emulator.CommandPacket{Command: emulator.CommandRegisters})
	L.Push(registersTable(L, resp.Registers))
	return 1
}

func (b *binding) disasm(L *lua.LState) int {
	cmd := emulator.CommandPacket{Command: emulator.CommandDisassemble, Count: L.OptInt(2, 1)}
	if L.GetTop() == 0 || L.Get(1) == lua.LNil {
		cmd.FromPC = true
	} else {
		cmd.Address = checkAddress(L, 1)
	}

	resp := b.send(L, cmd)
	t := L.NewTable()
	for _, l := range resp.Lines {
		t.Append(lua.LString(l))
	}
	L.Push(t)
	return 1
}

func (b *binding) reset(L *lua.LState) int {
	b.send(L, emulator.CommandPacket{Command: emulator.CommandReset})
	return 0
}

func (b *binding) print(L *lua.LState) int {
	args := make([]string, L.GetTop())
	for i := range args {
		args[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	fmt.Fprintln(b.out, strings.Join(args, "\t"))
	return 0
}

func registersTable(L *lua.LState, r *emulator.Registers) *lua.LTable {
	t := L.NewTable()
	if r == nil {
		return t
	}

	for k, v := range map[string]uint64{
		"a": uint64(r.A), "f": uint64(r.F),
		"b": uint64(r.B), "c": uint64(r.C),
		"d": uint64(r.D), "e": uint64(r.E),
		"h": uint64(r.H), "l": uint64(r.L),
		"af": uint64(r.AF()), "bc": uint64(r.BC()),
		"de": uint64(r.DE()), "hl": uint64(r.HL()),
		"sp": uint64(r.SP), "pc": uint64(r.PC),
		"ie": uint64(r.IE), "if": uint64(r.IF),
		"ly": uint64(r.LY), "dots": uint64(r.Dots),
		"frames": r.Frames, "cycles": r.Cycles,
	} {
		t.RawSetString(k, lua.LNumber(v))
	}
	t.RawSetString("ime", lua.LBool(r.IME))
	t.RawSetString("halted", lua.LBool(r.Halted))
	t.RawSetString("mode", lua.LString(r.Mode))

	flags := L.NewTable()
	flags.RawSetString("z", lua.LBool(r.Flags.Zero))
	flags.RawSetString("n", lua.LBool(r.Flags.Subtract))
	flags.RawSetString("h", lua.LBool(r.Flags.HalfCarry))
	flags.RawSetString("c", lua.LBool(r.Flags.Carry))
	t.RawSetString("flags", flags)

	return t
}
