package gameboy

import (
	"github.com/thelolagemann/dmgcore/pkg/log"
)

// Opt is a function that modifies a GameBoy
// instance.
type Opt func(gb *GameBoy)

// WithBootROM sets the boot ROM for the emulator. The CPU
// will start at 0x0000 with every register cleared, and the
// boot ROM is responsible for handing over to the cartridge.
func WithBootROM(rom []byte) Opt {
	return func(gb *GameBoy) {
		gb.bootData = rom
	}
}

// NoBios starts the emulator with the register state the
// boot ROM would have left behind, at the cartridge entry
// point 0x0100. Any boot ROM is ignored.
func NoBios() Opt {
	return func(gb *GameBoy) {
		gb.noBios = true
	}
}

// WithLogger sets the logger used by the emulator and its bus.
func WithLogger(log log.Logger) Opt {
	return func(gb *GameBoy) {
		gb.Logger = log
	}
}

// Trace logs every executed instruction at debug level.
func Trace() Opt {
	return func(gb *GameBoy) {
		gb.trace = true
	}
}

// WithBreakpoints sets the initial breakpoints.
func WithBreakpoints(addresses ...uint16) Opt {
	return func(gb *GameBoy) {
		for _, a := range addresses {
			gb.breakpoints[a] = struct{}{}
		}
	}
}
