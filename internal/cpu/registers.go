package cpu

import "fmt"

// Register represents a single 8-bit CPU register.
type Register = uint8

// RegisterPair is a 16-bit view over two 8-bit registers, with the
// high register holding the most significant byte.
type RegisterPair struct {
	High *Register
	Low  *Register

	// lowMask is applied to the low register on writes, so that the
	// unused bits of F always read as zero through AF.
	lowMask uint8
}

// Uint16 returns the value of the RegisterPair as an uint16.
func (r *RegisterPair) Uint16() uint16 {
	return uint16(*r.High)<<8 | uint16(*r.Low)
}

// SetUint16 sets both halves of the RegisterPair.
func (r *RegisterPair) SetUint16(value uint16) {
	*r.High = uint8(value >> 8)
	*r.Low = uint8(value) & r.lowMask
}

// Increment adds one to the RegisterPair, wrapping at 0xFFFF.
func (r *RegisterPair) Increment() {
	r.SetUint16(r.Uint16() + 1)
}

// Decrement subtracts one from the RegisterPair, wrapping at 0x0000.
func (r *RegisterPair) Decrement() {
	r.SetUint16(r.Uint16() - 1)
}

// Registers holds the 8 8-bit registers of the CPU, and the 4 16-bit
// register pairs built on top of them.
type Registers struct {
	A Register
	F Register
	B Register
	C Register
	D Register
	E Register
	H Register
	L Register

	BC *RegisterPair
	DE *RegisterPair
	HL *RegisterPair
	AF *RegisterPair
}

// link creates the register pairs. Registers must not be copied
// after linking, as the pairs point into the struct.
func (r *Registers) link() {
	r.BC = &RegisterPair{High: &r.B, Low: &r.C, lowMask: 0xFF}
	r.DE = &RegisterPair{High: &r.D, Low: &r.E, lowMask: 0xFF}
	r.HL = &RegisterPair{High: &r.H, Low: &r.L, lowMask: 0xFF}
	r.AF = &RegisterPair{High: &r.A, Low: &r.F, lowMask: 0xF0}
}

// Reg8 names an 8-bit register.
type Reg8 uint8

const (
	RegA Reg8 = iota
	RegF
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
)

var reg8Names = [...]string{"A", "F", "B", "C", "D", "E", "H", "L"}

func (r Reg8) String() string {
	if int(r) < len(reg8Names) {
		return reg8Names[r]
	}
	return fmt.Sprintf("Reg8(%d)", uint8(r))
}

// Reg16 names a 16-bit register pair.
type Reg16 uint8

const (
	RegAF Reg16 = iota
	RegBC
	RegDE
	RegHL
)

var reg16Names = [...]string{"AF", "BC", "DE", "HL"}

func (r Reg16) String() string {
	if int(r) < len(reg16Names) {
		return reg16Names[r]
	}
	return fmt.Sprintf("Reg16(%d)", uint8(r))
}

func (r *Registers) reg8(reg Reg8) *Register {
	switch reg {
	case RegA:
		return &r.A
	case RegF:
		return &r.F
	case RegB:
		return &r.B
	case RegC:
		return &r.C
	case RegD:
		return &r.D
	case RegE:
		return &r.E
	case RegH:
		return &r.H
	case RegL:
		return &r.L
	}
	panic(fmt.Sprintf("cpu: invalid register %s", reg))
}

func (r *Registers) pair(reg Reg16) *RegisterPair {
	switch reg {
	case RegAF:
		return r.AF
	case RegBC:
		return r.BC
	case RegDE:
		return r.DE
	case RegHL:
		return r.HL
	}
	panic(fmt.Sprintf("cpu: invalid register pair %s", reg))
}

// Get8 returns the value of the named 8-bit register.
func (r *Registers) Get8(reg Reg8) uint8 {
	return *r.reg8(reg)
}

// Set8 sets the named 8-bit register. The low nibble of F is
// always cleared.
func (r *Registers) Set8(reg Reg8, value uint8) {
	if reg == RegF {
		value &= 0xF0
	}
	*r.reg8(reg) = value
}

// Get16 returns the value of the named register pair.
func (r *Registers) Get16(reg Reg16) uint16 {
	return r.pair(reg).Uint16()
}

// Set16 sets both halves of the named register pair.
func (r *Registers) Set16(reg Reg16, value uint16) {
	r.pair(reg).SetUint16(value)
}
