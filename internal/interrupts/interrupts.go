package interrupts

import (
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/bits"
)

const (
	// VBlankFlag is the VBlank interrupt flag (bit 0),
	// which is requested every time the PPU enters
	// VBlank mode.
	VBlankFlag = types.Bit0
	// LCDFlag is the LCD interrupt flag (bit 1), which
	// is requested by the LCD STAT register (types.STAT),
	// when certain conditions are met.
	LCDFlag = types.Bit1
	// TimerFlag is the Timer interrupt flag (bit 2).
	TimerFlag = types.Bit2
	// SerialFlag is the Serial interrupt flag (bit 3).
	SerialFlag = types.Bit3
	// JoypadFlag is the Joypad interrupt flag (bit 4).
	JoypadFlag = types.Bit4

	// mask covers the five interrupt sources.
	mask = 0x1F
)

// Vectors holds the service routine address of each source, in
// priority order.
var Vectors = [5]uint16{0x0040, 0x0048, 0x0050, 0x0058, 0x0060}

// Names holds a readable name for each source, in priority order.
var Names = [5]string{"VBlank", "LCDSTAT", "Timer", "Serial", "Joypad"}

// Service is the interrupt controller. It holds the
// master enable (IME), the enable mask (IE) and the
// pending mask (IF).
//
// When an interrupt is requested, the corresponding bit
// in the Flag register is set. When an interrupt is
// enabled, the corresponding bit in the Enable register
// is set. When an interrupt is requested and enabled,
// and the IME is set, the CPU will jump to the interrupt
// vector, and the corresponding bit in the Flag register
// will be cleared.
//
// The IME is set by the EI and RETI instructions, and
// cleared by DI and by servicing an interrupt.
type Service struct {
	Flag   uint8 // interrupt Flag (types.IF)
	Enable uint8 // interrupt Enable (types.IE)
	IME    bool  // interrupt master enable
}

// NewService returns a new Service.
func NewService() *Service {
	return &Service{}
}

// Reset clears every request, enable and the IME.
func (s *Service) Reset() {
	s.Flag, s.Enable, s.IME = 0, 0, false
}

// Read returns the value of the IF or IE register.
func (s *Service) Read(address uint16) uint8 {
	if address == types.IF {
		return s.Flag | 0xE0 // the upper 3 bits are always set
	}
	return s.Enable
}

// Write writes the value to the IF or IE register.
func (s *Service) Write(address uint16, value uint8) {
	if address == types.IF {
		s.Flag = value & mask // only the first 5 bits are used
		return
	}
	s.Enable = value
}

// HasInterrupts returns true if there are any interrupts
// that are requested and enabled.
func (s *Service) HasInterrupts() bool {
	return s.Enable&s.Flag&mask != 0
}

// CanInterrupt returns true if an interrupt would be
// serviced now.
func (s *Service) CanInterrupt() bool {
	return s.IME && s.HasInterrupts()
}

// Request requests the specified interrupt, by setting
// the corresponding bit in the Flag register.
func (s *Service) Request(flag uint8) {
	s.Flag |= flag & mask
}

// Vector returns the highest priority interrupt vector that
// is both requested and enabled, or 0 if there is none. The
// corresponding bit in the Flag register is cleared.
//
// Interrupts are serviced in the order of priority:
//
//   - VBlank
//   - LCD
//   - Timer
//   - Serial
//   - Joypad
func (s *Service) Vector() uint16 {
	for i := uint8(0); i < 5; i++ {
		// check if the interrupt is requested and enabled
		if bits.Test(s.Flag, i) && bits.Test(s.Enable, i) {
			// clear the interrupt flag and return the vector
			s.Flag = bits.Reset(s.Flag, i)
			return Vectors[i]
		}
	}

	return 0
}
