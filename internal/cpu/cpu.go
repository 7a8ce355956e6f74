package cpu

import (
	"github.com/thelolagemann/dmgcore/internal/interrupts"
)

const (
	// ClockSpeed is the clock speed of the CPU, in dots per second.
	ClockSpeed = 4194304
)

type mode = uint8

const (
	// ModeNormal is the normal CPU mode.
	ModeNormal mode = iota
	// ModeHalt is the halt CPU mode, entered by HALT and left once
	// an enabled interrupt is pending.
	ModeHalt
)

// Bus is the memory the CPU executes from.
type Bus interface {
	Reader
	Write(address uint16, value uint8)
}

// CPU represents the Gameboy CPU. It is responsible for executing instructions.
type CPU struct {
	// PC is the program counter, it points to the next instruction to be executed.
	PC uint16
	// SP is the stack pointer, it points to the top of the stack.
	SP uint16
	// Registers contains the 8-bit registers, as well as the 16-bit register pairs.
	Registers

	bus Bus
	IRQ *interrupts.Service

	mode mode

	// jumped is set by instructions that load PC themselves, and
	// branched by conditional instructions whose branch was taken.
	jumped   bool
	branched bool
}

// NewCPU creates a new CPU instance executing from the given bus.
func NewCPU(bus Bus, irq *interrupts.Service) *CPU {
	c := &CPU{
		bus: bus,
		IRQ: irq,
	}
	c.link()

	return c
}

// Reset zeroes every register and leaves halt mode.
func (c *CPU) Reset() {
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = 0, 0, 0, 0, 0, 0, 0, 0
	c.SP, c.PC = 0, 0
	c.mode = ModeNormal
}

// SkipBoot loads the register pattern left behind by the DMG boot
// ROM, and sets PC to the cartridge entry point.
func (c *CPU) SkipBoot() {
	c.AF.SetUint16(0x01B0)
	c.BC.SetUint16(0x0013)
	c.DE.SetUint16(0x00D8)
	c.HL.SetUint16(0x014D)
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.mode = ModeNormal
}

// Halted reports whether the CPU is waiting for an interrupt.
func (c *CPU) Halted() bool {
	return c.mode == ModeHalt
}

// Step executes a single instruction and returns the number of
// machine cycles it took. While halted, a step only burns
// HaltCycles, until an enabled interrupt becomes pending.
//
// An UnimplementedOpcodeError is returned, with no state changed,
// if the opcode at PC has no behaviour.
func (c *CPU) Step() (uint8, error) {
	if c.mode == ModeHalt {
		// pending interrupts wake the CPU regardless of IME
		if c.IRQ.HasInterrupts() {
			c.mode = ModeNormal
		}
		return HaltCycles, nil
	}

	op := DecodeAt(c.bus, c.PC)

	var instruction Instruction
	if op.Prefixed() {
		instruction = InstructionSetCB[op.Byte()]
	} else {
		instruction = InstructionSet[op.Code]
	}
	if instruction.fn == nil {
		return 0, &UnimplementedOpcodeError{Opcode: op.Code, PC: c.PC}
	}

	c.jumped, c.branched = false, false
	instruction.fn(c, op)
	if !c.jumped {
		c.PC += uint16(op.Length)
	}

	return Cycles(op, c.branched), nil
}

// HandleInterrupts services the highest priority pending interrupt,
// if IME is set. The return address is pushed to the stack, PC is
// set to the interrupt vector and IME is cleared. It returns the
// number of cycles spent, which is 0 if no interrupt was serviced.
func (c *CPU) HandleInterrupts() uint8 {
	if !c.IRQ.CanInterrupt() {
		return 0
	}

	vector := c.IRQ.Vector()
	c.IRQ.IME = false
	c.push(c.PC)
	c.PC = vector
	c.mode = ModeNormal

	return InterruptServiceCycles
}

// push decrements SP by 2 and writes value to the stack.
func (c *CPU) push(value uint16) {
	c.SP--
	c.bus.Write(c.SP, uint8(value>>8))
	c.SP--
	c.bus.Write(c.SP, uint8(value))
}

// pop reads a value from the stack and increments SP by 2.
func (c *CPU) pop() uint16 {
	low := c.bus.Read(c.SP)
	c.SP++
	high := c.bus.Read(c.SP)
	c.SP++
	return uint16(high)<<8 | uint16(low)
}

// readByte reads a byte from memory.
func (c *CPU) readByte(address uint16) uint8 {
	return c.bus.Read(address)
}

// writeByte writes the given value to the given address.
func (c *CPU) writeByte(address uint16, value uint8) {
	c.bus.Write(address, value)
}

// jump loads PC, preventing the step from advancing it.
func (c *CPU) jump(address uint16) {
	c.PC = address
	c.jumped = true
}

// registerIndex returns a Register pointer for the given r table
// index. Index 6 is (HL), which has no register.
func (c *CPU) registerIndex(index uint8) *Register {
	switch index {
	case 0:
		return &c.B
	case 1:
		return &c.C
	case 2:
		return &c.D
	case 3:
		return &c.E
	case 4:
		return &c.H
	case 5:
		return &c.L
	case 7:
		return &c.A
	}
	return nil
}

// readOperand returns the value of the r table operand at index,
// reading memory at HL for index 6.
func (c *CPU) readOperand(index uint8) uint8 {
	if index == 6 {
		return c.readByte(c.HL.Uint16())
	}
	return *c.registerIndex(index)
}

// writeOperand writes the r table operand at index.
func (c *CPU) writeOperand(index uint8, value uint8) {
	if index == 6 {
		c.writeByte(c.HL.Uint16(), value)
		return
	}
	*c.registerIndex(index) = value
}

// registerPair returns the value of the rp table entry at index,
// where index 3 is SP.
func (c *CPU) registerPair(index uint8) uint16 {
	switch index {
	case 0:
		return c.BC.Uint16()
	case 1:
		return c.DE.Uint16()
	case 2:
		return c.HL.Uint16()
	}
	return c.SP
}

// setRegisterPair sets the rp table entry at index.
func (c *CPU) setRegisterPair(index uint8, value uint16) {
	switch index {
	case 0:
		c.BC.SetUint16(value)
	case 1:
		c.DE.SetUint16(value)
	case 2:
		c.HL.SetUint16(value)
	default:
		c.SP = value
	}
}

// stackPair returns the rp2 table entry at index, where index 3
// is AF.
func (c *CPU) stackPair(index uint8) *RegisterPair {
	switch index {
	case 0:
		return c.BC
	case 1:
		return c.DE
	case 2:
		return c.HL
	}
	return c.AF
}

// condition evaluates the cc table entry at index.
func (c *CPU) condition(index uint8) bool {
	switch index {
	case 0:
		return !c.isFlagSet(FlagZero)
	case 1:
		return c.isFlagSet(FlagZero)
	case 2:
		return !c.isFlagSet(FlagCarry)
	}
	return c.isFlagSet(FlagCarry)
}
