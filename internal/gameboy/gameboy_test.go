package gameboy

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/dmgcore/internal/boot"
	"github.com/thelolagemann/dmgcore/internal/cpu"
	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/ppu"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/emulator"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

// programStart is where newROM places the program, just past the
// cartridge header.
const programStart = 0x0150

// newROM returns a 32kB ROM image that jumps from the entry point
// to program.
func newROM(program ...uint8) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], []byte{0xC3, programStart & 0xFF, programStart >> 8}) // JP 0x0150
	copy(rom[0x0134:], "TESTROM")
	copy(rom[programStart:], program)
	return rom
}

// newGameBoy returns a GameBoy with PC already at programStart.
func newGameBoy(t *testing.T, program []uint8, opts ...Opt) *GameBoy {
	t.Helper()
	g, err := NewGameBoy(newROM(program...), append([]Opt{NoBios()}, opts...)...)
	require.NoError(t, err)

	_, err = g.Step()
	require.NoError(t, err)
	require.Equal(t, uint16(programStart), g.CPU.PC)

	return g
}

func TestNewGameBoy(t *testing.T) {
	t.Run("short rom", func(t *testing.T) {
		_, err := NewGameBoy(make([]byte, 0x10))
		assert.Error(t, err)
	})
	t.Run("bad boot rom", func(t *testing.T) {
		_, err := NewGameBoy(newROM(), WithBootROM(make([]byte, 10)))
		assert.Error(t, err)
	})
	t.Run("no bios", func(t *testing.T) {
		g, err := NewGameBoy(newROM())
		require.NoError(t, err)

		assert.Equal(t, uint16(0x0100), g.CPU.PC)
		assert.Equal(t, uint16(0xFFFE), g.CPU.SP)
		assert.Equal(t, uint16(0x01B0), g.CPU.AF.Uint16())
		assert.Equal(t, uint16(0x014D), g.CPU.HL.Uint16())
		assert.Equal(t, uint8(0x91), g.Peek(types.LCDC))
		assert.Equal(t, emulator.Paused, g.Status())
	})
}

func TestGameBoy_BootROM(t *testing.T) {
	raw := make([]byte, boot.Size)
	copy(raw, []byte{
		0x3E, 0x01, // LD A, 0x01
		0xE0, 0x50, // LDH (0xFF50), A
	})

	g, err := NewGameBoy(newROM(), WithBootROM(raw))
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0000), g.CPU.PC)
	assert.True(t, g.MMU.BootROMActive())
	assert.Equal(t, uint8(0x3E), g.Peek(0x0000))

	for i := 0; i < 2; i++ {
		_, err = g.Step()
		require.NoError(t, err)
	}

	assert.False(t, g.MMU.BootROMActive())
	assert.Equal(t, uint16(0x0004), g.CPU.PC)
	assert.Equal(t, uint8(0x00), g.Peek(0x0000), "cartridge is visible once the boot rom is disabled")

	// NoBios ignores the boot rom
	g, err = NewGameBoy(newROM(), WithBootROM(raw), NoBios())
	require.NoError(t, err)
	assert.False(t, g.MMU.BootROMActive())
	assert.Equal(t, uint16(0x0100), g.CPU.PC)
}

func TestGameBoy_Step(t *testing.T) {
	g := newGameBoy(t, []uint8{
		0x3E, 0x10, // LD A, 0x10
		0x06, 0x10, // LD B, 0x10
		0x80, // ADD A, B
	})

	dots := g.ppu.Dots()
	cycles, err := g.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(2), cycles)
	assert.Equal(t, dots+8, g.ppu.Dots(), "the ppu advances 4 dots per cycle")

	for i := 0; i < 2; i++ {
		_, err = g.Step()
		require.NoError(t, err)
	}

	assert.Equal(t, uint8(0x20), g.CPU.A)
	assert.False(t, g.CPU.FlagSet(cpu.FlagCarry))
	assert.False(t, g.CPU.FlagSet(cpu.FlagHalfCarry))
	assert.Equal(t, uint64(4+2+2+1), g.Snapshot().Cycles)
}

func TestGameBoy_InterruptDispatch(t *testing.T) {
	g := newGameBoy(t, []uint8{0x00}) // NOP

	g.Interrupts.Enable = 0x1F
	g.Interrupts.Flag = 0x1F
	g.Interrupts.IME = true

	cycles, err := g.Step()
	require.NoError(t, err)

	assert.Equal(t, uint8(1+cpu.InterruptServiceCycles), cycles)
	assert.Equal(t, uint16(0x0040), g.CPU.PC)
	assert.False(t, g.Interrupts.IME)
	assert.Zero(t, g.Interrupts.Flag&interrupts.VBlankFlag)
	assert.Equal(t, uint8(0x1E), g.Interrupts.Flag, "lower priority sources remain pending")
	assert.Equal(t, uint16(0xFFFC), g.CPU.SP)
	assert.Equal(t, uint16(programStart+1), g.MMU.Read16(g.CPU.SP))
}

func TestGameBoy_RunFrame(t *testing.T) {
	g := newGameBoy(t, []uint8{0x18, 0xFE}) // JR -2

	require.NoError(t, g.RunFrame())

	assert.Equal(t, uint64(1), g.ppu.Frames())
	assert.Equal(t, ppu.ModeVBlank, g.ppu.Mode())
	assert.Equal(t, uint8(ppu.VBlankLine), g.ppu.LY())
	assert.NotZero(t, g.Interrupts.Flag&interrupts.VBlankFlag)
	assert.Equal(t, uint16(programStart), g.CPU.PC)

	require.NoError(t, g.RunFrame())
	assert.Equal(t, uint64(2), g.ppu.Frames())
}

func TestGameBoy_HaltWake(t *testing.T) {
	g := newGameBoy(t, []uint8{
		0x76, // HALT
		0x00, // NOP
	})
	g.Interrupts.Enable = interrupts.VBlankFlag

	_, err := g.Step()
	require.NoError(t, err)
	require.True(t, g.CPU.Halted())
	assert.Equal(t, uint16(programStart+1), g.CPU.PC)

	require.NoError(t, g.RunFrame())
	assert.Equal(t, uint16(programStart+1), g.CPU.PC, "no instruction runs while halted")

	// the pending VBlank wakes the cpu without IME
	_, err = g.Step()
	require.NoError(t, err)
	assert.False(t, g.CPU.Halted())
	assert.Equal(t, uint16(programStart+1), g.CPU.PC)

	_, err = g.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(programStart+2), g.CPU.PC)
}

func TestGameBoy_UnimplementedOpcode(t *testing.T) {
	g := newGameBoy(t, []uint8{0xD3})

	_, err := g.Step()
	require.ErrorIs(t, err, cpu.ErrUnimplementedOpcode)

	var opErr *cpu.UnimplementedOpcodeError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, uint8(0xD3), opErr.Opcode)
	assert.Equal(t, uint16(programStart), opErr.PC)

	assert.Equal(t, uint16(programStart), g.CPU.PC)
	assert.Equal(t, emulator.Errored, g.Status())

	g.Reset()
	assert.Equal(t, emulator.Paused, g.Status())
}

func TestGameBoy_Breakpoints(t *testing.T) {
	g := newGameBoy(t, nil, WithBreakpoints(0x0200, 0x0150))

	g.SetBreakpoint(0x0100)
	assert.Equal(t, []uint16{0x0100, 0x0150, 0x0200}, g.Breakpoints())
	assert.True(t, g.AtBreakpoint())

	assert.True(t, g.ClearBreakpoint(0x0150))
	assert.False(t, g.ClearBreakpoint(0x0150))
	assert.False(t, g.AtBreakpoint())
	assert.Equal(t, []uint16{0x0100, 0x0200}, g.Breakpoints())
}

func TestGameBoy_Disassemble(t *testing.T) {
	g := newGameBoy(t, []uint8{
		0x3E, 0x10, // LD A, 0x10
		0xCB, 0x7C, // BIT 7, H
		0x00, // NOP
	})

	lines := g.Disassemble(programStart, 3)
	require.Len(t, lines, 3)
	assert.Equal(t, "0x0150: LD A, 0x10", lines[0])
	assert.Contains(t, lines[1], "0x0152: BIT 7")
	assert.Equal(t, "0x0154: NOP", lines[2])
}

func TestGameBoy_Trace(t *testing.T) {
	buf := &bytes.Buffer{}
	g, err := NewGameBoy(newROM(0x00), NoBios(), Trace(), WithLogger(log.NewWithWriter(buf)))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = g.Step()
		require.NoError(t, err)
	}

	assert.Contains(t, buf.String(), "0x0100: JP 0x0150")
	assert.Contains(t, buf.String(), "0x0150: NOP")
}

func TestGameBoy_Serve(t *testing.T) {
	g := newGameBoy(t, []uint8{
		0x00,       // NOP
		0x00,       // NOP
		0x18, 0xFC, // JR -4
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	commands := make(chan emulator.CommandPacket)
	responses := make(chan emulator.ResponsePacket)
	done := make(chan error, 1)
	go func() { done <- g.Serve(ctx, commands, responses) }()

	client := emulator.NewClient(commands, responses)

	resp := client.SendCommand(emulator.CommandPacket{Command: emulator.CommandBreak, Address: 0x0151})
	require.NoError(t, resp.Error)

	resp = client.SendCommand(emulator.CommandPacket{Command: emulator.CommandBreakpoints})
	assert.Equal(t, []string{"0x0151"}, resp.Lines)

	resp = client.SendCommand(emulator.CommandPacket{Command: emulator.CommandContinue})
	require.NoError(t, resp.Error)
	assert.Equal(t, emulator.Running, resp.Status)

	select {
	case ev := <-client.Events():
		assert.Equal(t, emulator.Paused, ev.Status)
		require.NotNil(t, ev.Registers)
		assert.Equal(t, uint16(0x0151), ev.Registers.PC)
	case <-ctx.Done():
		t.Fatal("timed out waiting for breakpoint")
	}

	resp = client.SendCommand(emulator.CommandPacket{Command: emulator.CommandStep, Count: 2})
	require.NoError(t, resp.Error)
	require.NotNil(t, resp.Registers)
	assert.Equal(t, uint16(0x0150), resp.Registers.PC)
	assert.Equal(t, []string{"0x0150: NOP"}, resp.Lines)

	resp = client.SendCommand(emulator.CommandPacket{Command: emulator.CommandPeek, Address: 0x0152})
	assert.Equal(t, []byte{0x18}, resp.Data)

	resp = client.SendCommand(emulator.CommandPacket{Command: emulator.CommandDump, Address: 0x0150, Count: 4})
	assert.Equal(t, []byte{0x00, 0x00, 0x18, 0xFC}, resp.Data)

	resp = client.SendCommand(emulator.CommandPacket{Command: emulator.CommandDisassemble, FromPC: true, Count: 3})
	assert.Equal(t, []string{"0x0150: NOP", "0x0151: NOP", "0x0152: JR -4"}, resp.Lines)

	resp = client.SendCommand(emulator.CommandPacket{Command: emulator.CommandClear, Address: 0x0151})
	require.NoError(t, resp.Error)
	resp = client.SendCommand(emulator.CommandPacket{Command: emulator.CommandClear, Address: 0x0151})
	assert.Error(t, resp.Error)

	// pausing a running emulator
	resp = client.SendCommand(emulator.CommandPacket{Command: emulator.CommandContinue})
	require.NoError(t, resp.Error)
	resp = client.SendCommand(emulator.CommandPacket{Command: emulator.CommandPause})
	assert.Equal(t, emulator.Paused, resp.Status)

	resp = client.SendCommand(emulator.CommandPacket{Command: emulator.CommandReset})
	require.NotNil(t, resp.Registers)
	assert.Equal(t, uint16(0x0100), resp.Registers.PC)

	resp = client.SendCommand(emulator.CommandPacket{Command: emulator.CommandClose})
	assert.Equal(t, emulator.Closed, resp.Status)

	require.NoError(t, <-done)
	<-client.Done()

	resp = client.SendCommand(emulator.CommandPacket{Command: emulator.CommandRegisters})
	assert.ErrorIs(t, resp.Error, emulator.ErrClosed)
}

func TestGameBoy_ServeError(t *testing.T) {
	g := newGameBoy(t, []uint8{0x00, 0xDB})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	commands := make(chan emulator.CommandPacket)
	responses := make(chan emulator.ResponsePacket)
	done := make(chan error, 1)
	go func() { done <- g.Serve(ctx, commands, responses) }()
	client := emulator.NewClient(commands, responses)

	client.SendCommand(emulator.CommandPacket{Command: emulator.CommandContinue})

	select {
	case ev := <-client.Events():
		assert.Equal(t, emulator.Errored, ev.Status)
		assert.ErrorIs(t, ev.Error, cpu.ErrUnimplementedOpcode)
	case <-ctx.Done():
		t.Fatal("timed out waiting for error")
	}

	resp := client.SendCommand(emulator.CommandPacket{Command: emulator.CommandContinue})
	assert.Error(t, resp.Error)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestGameBoy_ExecuteLimits(t *testing.T) {
	// JR -2, 3 cycles per step
	g := newGameBoy(t, []uint8{0x18, 0xFE})
	start := g.cycles

	resp := g.execute(context.Background(), emulator.CommandPacket{Command: emulator.CommandStep, Count: 2000000000})
	require.NoError(t, resp.Error)
	assert.Equal(t, uint64(3*emulator.MaxStep), g.cycles-start)

	resp = g.execute(context.Background(), emulator.CommandPacket{Command: emulator.CommandDisassemble, Count: 2000000000})
	assert.Len(t, resp.Lines, emulator.MaxDisassemble)

	resp = g.execute(context.Background(), emulator.CommandPacket{Command: emulator.CommandDump, Count: 2000000000})
	assert.Len(t, resp.Data, emulator.MaxDump)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start = g.cycles
	resp = g.execute(ctx, emulator.CommandPacket{Command: emulator.CommandStep, Count: 10})
	assert.ErrorIs(t, resp.Error, context.Canceled)
	assert.Equal(t, start, g.cycles)
}

func TestGameBoy_ServeCancelDuringStep(t *testing.T) {
	g := newGameBoy(t, []uint8{0x18, 0xFE})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	commands := make(chan emulator.CommandPacket)
	responses := make(chan emulator.ResponsePacket)
	done := make(chan error, 1)
	go func() { done <- g.Serve(ctx, commands, responses) }()

	commands <- emulator.CommandPacket{ID: 1, Command: emulator.CommandStep, Count: 2000000000}
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
