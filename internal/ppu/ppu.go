// Package ppu provides the timing model of the Game Boy's (P)ixel
// (P)rocessing (U)nit. No pixels are produced: the PPU only walks the
// mode state machine, maintains LY and raises the VBlank and STAT
// interrupts at the moments the hardware would.
package ppu

import (
	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/bits"
)

const (
	// ScreenWidth is the width of the screen in pixels.
	ScreenWidth = 160
	// ScreenHeight is the height of the screen in pixels.
	ScreenHeight = 144
)

// Mode is the state reported in the lower two bits of STAT.
type Mode = uint8

const (
	// ModeHBlank (Mode 0) - Horizontal Blanking Period
	//
	// 	Duration 204 dots
	//	- Allows CPU access to VRAM/OAM
	// 	- STAT interrupt available if enabled via STAT.3
	ModeHBlank Mode = iota

	// ModeVBlank (Mode 1) - Vertical Blanking Period
	//
	//	Duration 456 dots per line
	//	- Allows full CPU access to VRAM/OAM
	//	- VBlank interrupt requested on entry
	//	- STAT interrupt available if enabled via STAT.4
	//	- Active from LY 143 until LY wraps back to 0
	ModeVBlank

	// ModeOAM (Mode 2) - OAM Scan
	//
	//	Duration: 80 dots
	//	- Locks OAM bus
	//	- STAT interrupt available if enabled via STAT.5
	//	- Occurs at start of each line
	ModeOAM

	// ModeVRAM (Mode 3) - Pixel Transfer
	//
	//	Duration: 172 dots
	//	- Locks both OAM and VRAM buses
	//	- No STAT interrupts available
	ModeVRAM
)

const (
	// OAMDots is the length of ModeOAM.
	OAMDots = 80
	// VRAMDots is the length of ModeVRAM.
	VRAMDots = 172
	// HBlankDots is the length of ModeHBlank.
	HBlankDots = 204
	// ScanlineDots is the length of a single scanline, and of each
	// line spent in ModeVBlank.
	ScanlineDots = OAMDots + VRAMDots + HBlankDots

	// VBlankLine is the scanline on which ModeVBlank is entered.
	VBlankLine = 143
	// LastLine is the final scanline of a frame.
	LastLine = 153
	// Lines is the number of scanlines in a frame.
	Lines = LastLine + 1

	// FrameDots is the number of dots in a full frame.
	FrameDots = Lines * ScanlineDots
)

var modeNames = [4]string{"HBLANK", "VBLANK", "OAM", "VRAM"}

// ModeName returns the mnemonic of the mode.
func ModeName(m Mode) string {
	return modeNames[m&0b11]
}

var budgets = [4]uint16{
	ModeHBlank: HBlankDots,
	ModeVBlank: ScanlineDots,
	ModeOAM:    OAMDots,
	ModeVRAM:   VRAMDots,
}

// PPU implements the Game Boy's (P)ixel (P)rocessing (U)nit.
//
// References:
//   - [Pan Docs](https://gbdev.io/pandocs/Graphics.html)
//   - [Hacktix GBEDG](https://hacktix.github.io/GBEDG/ppu/)
type PPU struct {
	lcdc uint8 // LCDC register, stored but not interpreted

	// Rendering state
	mode   Mode   // Mode reported to STAT register
	dots   uint16 // Dots elapsed in the current mode
	ly     uint8  // Current line (0-153)
	status uint8  // Local copy of STAT register (bits 2-6)
	frames uint64 // VBlank entries since reset

	// Scroll registers
	scy, scx uint8

	lyCompare uint8 // LYC register value

	statInt bool // Current STAT interrupt line

	irq *interrupts.Service
}

// New returns a new PPU that raises its interrupts through irq.
func New(irq *interrupts.Service) *PPU {
	p := &PPU{irq: irq}
	p.Reset()
	return p
}

// Reset returns the PPU to the start of line 0 in ModeOAM. The frame
// counter is cleared.
func (p *PPU) Reset() {
	p.lcdc = 0
	p.mode = ModeOAM
	p.dots = 0
	p.ly = 0
	p.status = 0
	p.frames = 0
	p.scy, p.scx = 0, 0
	p.lyCompare = 0
	p.statInt = false
	p.statUpdate()
}

// Tick advances the PPU by the given number of machine cycles. Each
// cycle is 4 dots. A single tick may cross any number of mode
// boundaries; leftover dots carry into the next mode.
func (p *PPU) Tick(cycles uint8) {
	p.dots += uint16(cycles) * 4

	for p.dots >= budgets[p.mode] {
		p.dots -= budgets[p.mode]
		p.transition()
	}
}

func (p *PPU) transition() {
	switch p.mode {
	case ModeOAM:
		p.setMode(ModeVRAM)
	case ModeVRAM:
		p.setMode(ModeHBlank)
	case ModeHBlank:
		p.ly++
		if p.ly == VBlankLine {
			p.frames++
			p.irq.Request(interrupts.VBlankFlag)
			p.setMode(ModeVBlank)
		} else {
			p.setMode(ModeOAM)
		}
	case ModeVBlank:
		p.ly++
		if p.ly > LastLine {
			p.ly = 0
			p.setMode(ModeOAM)
		} else {
			p.statUpdate()
		}
	}
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	p.statUpdate()
}

// statUpdate refreshes the coincidence flag and raises the LCD
// interrupt on a rising edge of the STAT line.
func (p *PPU) statUpdate() {
	p.status = bits.SetTo(p.status, 2, p.ly == p.lyCompare)

	statINT := (p.mode == ModeHBlank && p.status&types.Bit3 != 0) ||
		(p.mode == ModeVBlank && p.status&types.Bit4 != 0) ||
		(p.mode == ModeOAM && p.status&types.Bit5 != 0) ||
		(p.status&types.Bit2 != 0 && p.status&types.Bit6 != 0)

	// did STAT go low -> high
	if !p.statInt && statINT {
		p.irq.Request(interrupts.LCDFlag)
	}

	p.statInt = statINT
}

// Read returns the value of an LCD register.
func (p *PPU) Read(address uint16) uint8 {
	switch address {
	case types.LCDC:
		return p.lcdc
	case types.STAT:
		return types.Bit7 | p.status | p.mode
	case types.SCY:
		return p.scy
	case types.SCX:
		return p.scx
	case types.LY:
		return p.ly
	case types.LYC:
		return p.lyCompare
	}
	return 0xFF
}

// Write writes to an LCD register. Writing LY resets it to 0, and
// only bits 3-6 of STAT are writable.
func (p *PPU) Write(address uint16, v uint8) {
	switch address {
	case types.LCDC:
		p.lcdc = v
	case types.STAT:
		p.status = p.status&0b1000_0111 | v&0b0111_1000
		p.statUpdate()
	case types.SCY:
		p.scy = v
	case types.SCX:
		p.scx = v
	case types.LY:
		p.ly = 0
		p.statUpdate()
	case types.LYC:
		p.lyCompare = v
		p.statUpdate()
	}
}

// Mode returns the current mode.
func (p *PPU) Mode() Mode { return p.mode }

// Dots returns the dots elapsed in the current mode.
func (p *PPU) Dots() uint16 { return p.dots }

// LY returns the current scanline.
func (p *PPU) LY() uint8 { return p.ly }

// Frames returns the number of times ModeVBlank has been entered
// since the last reset.
func (p *PPU) Frames() uint64 { return p.frames }
