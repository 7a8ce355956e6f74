// Package gameboy provides the top-level aggregate of the core. A
// GameBoy exclusively owns the CPU, the bus, the PPU and the interrupt
// controller, and is the only thing that steps them.
package gameboy

import (
	"fmt"
	"sort"

	"github.com/thelolagemann/dmgcore/internal/boot"
	"github.com/thelolagemann/dmgcore/internal/cartridge"
	"github.com/thelolagemann/dmgcore/internal/cpu"
	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/mmu"
	"github.com/thelolagemann/dmgcore/internal/ppu"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/emulator"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

const (
	// ClockSpeed is the clock speed of the Game Boy.
	ClockSpeed = cpu.ClockSpeed
	// CyclesPerFrame is the number of machine cycles per frame.
	CyclesPerFrame = ppu.FrameDots / 4
)

// GameBoy represents a Game Boy. It contains all the components of the Game Boy.
// It is the main entry point for the emulator.
type GameBoy struct {
	CPU        *cpu.CPU
	MMU        *mmu.MMU
	Interrupts *interrupts.Service
	Cartridge  *cartridge.Cartridge
	ppu        *ppu.PPU

	bootData []byte
	bootROM  *boot.ROM
	noBios   bool
	trace    bool

	breakpoints map[uint16]struct{}
	cycles      uint64
	status      emulator.Status

	log.Logger
}

// NewGameBoy returns a new GameBoy running the given ROM image.
func NewGameBoy(rom []byte, opts ...Opt) (*GameBoy, error) {
	cart, err := cartridge.New(rom)
	if err != nil {
		return nil, fmt.Errorf("gameboy: %w", err)
	}

	irq := interrupts.NewService()
	g := &GameBoy{
		Interrupts:  irq,
		Cartridge:   cart,
		ppu:         ppu.New(irq),
		breakpoints: make(map[uint16]struct{}),
		Logger:      log.NewNullLogger(),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.bootData != nil {
		if g.bootROM, err = boot.LoadBootROM(g.bootData); err != nil {
			return nil, fmt.Errorf("gameboy: %w", err)
		}
		g.Debugf("gameboy: boot rom %s (%s)", g.bootROM.Model(), g.bootROM.Checksum())
	}

	g.MMU = mmu.NewMMU(cart, g.ppu, irq, g.Logger)
	g.CPU = cpu.NewCPU(g.MMU, irq)
	g.Reset()

	g.Infof("gameboy: loaded %s [%016x]", cart.Header(), cart.Fingerprint())

	return g, nil
}

// Reset puts every component back into its power-on state. With a
// boot ROM (and without NoBios) execution starts at 0x0000 in the
// boot ROM, otherwise at 0x0100 with the post-boot register state.
func (g *GameBoy) Reset() {
	g.CPU.Reset()
	g.ppu.Reset()
	g.Interrupts.Reset()
	g.MMU.Reset()

	if g.bootROM != nil && !g.noBios {
		g.MMU.SetBootROM(g.bootROM)
	} else {
		g.MMU.SetBootROM(nil)
		g.CPU.SkipBoot()
		g.MMU.Write(types.LCDC, 0x91)
	}

	g.cycles = 0
	g.status = emulator.Paused
}

// Step executes a single instruction, advances the PPU by the cycles
// it took, and then services any pending interrupt. It returns the
// total number of machine cycles spent.
//
// Errors from the CPU stop the step before anything is advanced.
func (g *GameBoy) Step() (uint8, error) {
	if g.trace && !g.CPU.Halted() {
		s, _ := cpu.DisassembleAt(g.MMU, g.CPU.PC)
		g.Debugf("0x%04X: %s", g.CPU.PC, s)
	}

	cycles, err := g.CPU.Step()
	if err != nil {
		g.status = emulator.Errored
		return 0, err
	}
	g.ppu.Tick(cycles)

	if c := g.CPU.HandleInterrupts(); c > 0 {
		g.ppu.Tick(c)
		cycles += c
	}

	g.cycles += uint64(cycles)
	return cycles, nil
}

// RunFrame steps until the PPU enters VBlank.
func (g *GameBoy) RunFrame() error {
	frame := g.ppu.Frames()
	for g.ppu.Frames() == frame {
		if _, err := g.Step(); err != nil {
			return err
		}
	}
	return nil
}

// SetBreakpoint sets a breakpoint at the given address.
func (g *GameBoy) SetBreakpoint(address uint16) {
	g.breakpoints[address] = struct{}{}
}

// ClearBreakpoint clears the breakpoint at the given address,
// reporting whether one was set.
func (g *GameBoy) ClearBreakpoint(address uint16) bool {
	_, ok := g.breakpoints[address]
	delete(g.breakpoints, address)
	return ok
}

// Breakpoints returns the breakpoints in ascending order.
func (g *GameBoy) Breakpoints() []uint16 {
	addresses := make([]uint16, 0, len(g.breakpoints))
	for a := range g.breakpoints {
		addresses = append(addresses, a)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i] < addresses[j] })
	return addresses
}

// AtBreakpoint reports whether PC is on a breakpoint.
func (g *GameBoy) AtBreakpoint() bool {
	_, ok := g.breakpoints[g.CPU.PC]
	return ok
}

// Peek reads a byte from the bus.
func (g *GameBoy) Peek(address uint16) uint8 {
	return g.MMU.Read(address)
}

// Disassemble disassembles n instructions starting at address.
func (g *GameBoy) Disassemble(address uint16, n int) []string {
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, op := cpu.DisassembleAt(g.MMU, address)
		lines = append(lines, fmt.Sprintf("0x%04X: %s", address, s))
		address += uint16(op.Length)
	}
	return lines
}

// Snapshot returns the current state of the registers, along
// with the interrupt and PPU state.
func (g *GameBoy) Snapshot() emulator.Registers {
	c := g.CPU
	return emulator.Registers{
		A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		SP: c.SP,
		PC: c.PC,
		Flags: emulator.Flags{
			Zero:      c.FlagSet(cpu.FlagZero),
			Subtract:  c.FlagSet(cpu.FlagSubtract),
			HalfCarry: c.FlagSet(cpu.FlagHalfCarry),
			Carry:     c.FlagSet(cpu.FlagCarry),
		},
		IME:    g.Interrupts.IME,
		IE:     g.Interrupts.Enable,
		IF:     g.Interrupts.Flag,
		Halted: c.Halted(),
		Mode:   ppu.ModeName(g.ppu.Mode()),
		LY:     g.ppu.LY(),
		Dots:   g.ppu.Dots(),
		Frames: g.ppu.Frames(),
		Cycles: g.cycles,
	}
}

// Status returns the status of the emulator.
func (g *GameBoy) Status() emulator.Status {
	if g.status == emulator.Running && g.CPU.Halted() {
		return emulator.Halted
	}
	return g.status
}
