package cpu

import "github.com/thelolagemann/dmgcore/internal/types"

// Flag is a bitmask selecting one of the flags held in the upper
// nibble of the F register.
type Flag = uint8

const (
	FlagZero      Flag = types.Bit7
	FlagSubtract  Flag = types.Bit6
	FlagHalfCarry Flag = types.Bit5
	FlagCarry     Flag = types.Bit4
)

// clearFlag clears a flag from the F register.
func (r *Registers) clearFlag(flag Flag) {
	r.F &^= flag
}

// setFlag sets a flag in the F register.
func (r *Registers) setFlag(flag Flag) {
	r.F |= flag
}

// isFlagSet returns true if the given flag is set.
func (r *Registers) isFlagSet(flag Flag) bool {
	return r.F&flag != 0
}

// setFlags sets all four flags at once.
func (r *Registers) setFlags(zero, subtract, halfCarry, carry bool) {
	r.F = 0
	r.SetFlag(FlagZero, zero)
	r.SetFlag(FlagSubtract, subtract)
	r.SetFlag(FlagHalfCarry, halfCarry)
	r.SetFlag(FlagCarry, carry)
}

// shouldZeroFlag sets FlagZero if the given value is 0.
func (r *Registers) shouldZeroFlag(value uint8) {
	r.SetFlag(FlagZero, value == 0)
}

// SetFlag sets or clears a single flag, leaving every other bit of
// F untouched.
func (r *Registers) SetFlag(flag Flag, value bool) {
	if value {
		r.setFlag(flag)
	} else {
		r.clearFlag(flag)
	}
}

// FlagSet reports whether the given flag is set.
func (r *Registers) FlagSet(flag Flag) bool {
	return r.isFlagSet(flag)
}
