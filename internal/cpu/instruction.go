package cpu

import (
	"fmt"
)

// Instruction is the behaviour bound to an opcode. The name uses
// d8, d16, a8, a16 and r8 as placeholders for the immediate.
type Instruction struct {
	name string
	fn   func(*CPU, Opcode)
}

// Name returns the mnemonic of the instruction.
func (i Instruction) Name() string {
	return i.name
}

// Implemented reports whether the instruction has a behaviour.
func (i Instruction) Implemented() bool {
	return i.fn != nil
}

var (
	// InstructionSet holds the 256 unprefixed instructions.
	InstructionSet [256]Instruction
	// InstructionSetCB holds the 256 instructions prefixed by 0xCB.
	InstructionSetCB [256]Instruction
)

// DefineInstruction defines the instruction in the InstructionSet,
// with the provided opcode.
func DefineInstruction(opcode uint8, name string, fn func(*CPU, Opcode)) {
	InstructionSet[opcode] = Instruction{name: name, fn: fn}
}

// DefineInstructionCB defines the instruction in the InstructionSetCB,
// with the provided opcode.
func DefineInstructionCB(opcode uint8, name string, fn func(*CPU, Opcode)) {
	InstructionSetCB[opcode] = Instruction{name: name, fn: fn}
}

// operand tables, indexed by the decoded bit fields
var (
	r   = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	rp  = [4]string{"BC", "DE", "HL", "SP"}
	rp2 = [4]string{"BC", "DE", "HL", "AF"}
	cc  = [4]string{"NZ", "Z", "NC", "C"}
	alu = [8]string{"ADD A,", "ADC A,", "SUB", "SBC A,", "AND", "XOR", "OR", "CP"}
	rot = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}
)

// illegalOpcodes have no behaviour on the DMG. They are named but
// left without a behaviour, as is STOP.
var illegalOpcodes = []uint8{
	0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD,
}

func init() {
	for code := 0; code < 256; code++ {
		op := Decode(uint8(code))
		switch op.X {
		case 0:
			defineBlock0(op)
		case 1:
			defineLoad(op)
		case 2:
			defineALU(op, fmt.Sprintf("%s %s", alu[op.Y], r[op.Z]), func(c *CPU, _ Opcode) uint8 {
				return c.readOperand(op.Z)
			})
		case 3:
			defineBlock3(op)
		}
	}

	for code := 0; code < 256; code++ {
		defineCB(Decode(uint8(code)))
	}

	InstructionSet[0x10] = Instruction{name: "STOP"}
	InstructionSet[0xCB] = Instruction{name: "PREFIX CB"}
	for _, opcode := range illegalOpcodes {
		InstructionSet[opcode] = Instruction{name: fmt.Sprintf("ILLEGAL_%02X", opcode)}
	}
}

// defineBlock0 defines 0x00 - 0x3F.
func defineBlock0(op Opcode) {
	y, z, p, q := op.Y, op.Z, op.P, op.Q
	switch z {
	case 0:
		switch y {
		case 0:
			DefineInstruction(op.Code, "NOP", func(c *CPU, _ Opcode) {})
		case 1:
			DefineInstruction(op.Code, "LD (a16), SP", func(c *CPU, o Opcode) {
				c.writeByte(o.Word(), uint8(c.SP))
				c.writeByte(o.Word()+1, uint8(c.SP>>8))
			})
		case 2:
			// STOP
		case 3:
			DefineInstruction(op.Code, "JR r8", func(c *CPU, o Opcode) {
				c.jumpRelative(o)
			})
		default:
			DefineInstruction(op.Code, fmt.Sprintf("JR %s, r8", cc[y-4]), func(c *CPU, o Opcode) {
				if c.condition(y - 4) {
					c.jumpRelative(o)
					c.branched = true
				}
			})
		}
	case 1:
		if q == 0 {
			DefineInstruction(op.Code, fmt.Sprintf("LD %s, d16", rp[p]), func(c *CPU, o Opcode) {
				c.setRegisterPair(p, o.Word())
			})
		} else {
			DefineInstruction(op.Code, fmt.Sprintf("ADD HL, %s", rp[p]), func(c *CPU, _ Opcode) {
				c.addHL(c.registerPair(p))
			})
		}
	case 2:
		defineIndirectLoad(op)
	case 3:
		if q == 0 {
			DefineInstruction(op.Code, fmt.Sprintf("INC %s", rp[p]), func(c *CPU, _ Opcode) {
				c.setRegisterPair(p, c.registerPair(p)+1)
			})
		} else {
			DefineInstruction(op.Code, fmt.Sprintf("DEC %s", rp[p]), func(c *CPU, _ Opcode) {
				c.setRegisterPair(p, c.registerPair(p)-1)
			})
		}
	case 4:
		DefineInstruction(op.Code, fmt.Sprintf("INC %s", r[y]), func(c *CPU, _ Opcode) {
			c.writeOperand(y, c.increment(c.readOperand(y)))
		})
	case 5:
		DefineInstruction(op.Code, fmt.Sprintf("DEC %s", r[y]), func(c *CPU, _ Opcode) {
			c.writeOperand(y, c.decrement(c.readOperand(y)))
		})
	case 6:
		DefineInstruction(op.Code, fmt.Sprintf("LD %s, d8", r[y]), func(c *CPU, o Opcode) {
			c.writeOperand(y, o.Byte())
		})
	case 7:
		defineAccumulator(op)
	}
}

// defineIndirectLoad defines the loads between A and the memory
// pointed to by BC, DE or HL (with post increment/decrement).
func defineIndirectLoad(op Opcode) {
	p := op.P
	names := [4]string{"(BC)", "(DE)", "(HL+)", "(HL-)"}

	address := func(c *CPU) uint16 {
		switch p {
		case 0:
			return c.BC.Uint16()
		case 1:
			return c.DE.Uint16()
		case 2:
			hl := c.HL.Uint16()
			c.HL.Increment()
			return hl
		}
		hl := c.HL.Uint16()
		c.HL.Decrement()
		return hl
	}

	if op.Q == 0 {
		DefineInstruction(op.Code, fmt.Sprintf("LD %s, A", names[p]), func(c *CPU, _ Opcode) {
			c.writeByte(address(c), c.A)
		})
	} else {
		DefineInstruction(op.Code, fmt.Sprintf("LD A, %s", names[p]), func(c *CPU, _ Opcode) {
			c.A = c.readByte(address(c))
		})
	}
}

// defineAccumulator defines the rotates of A and the flag/BCD
// instructions, 0x07 - 0x3F in steps of 8.
func defineAccumulator(op Opcode) {
	switch op.Y {
	case 0:
		DefineInstruction(op.Code, "RLCA", func(c *CPU, _ Opcode) {
			c.A = c.rotateLeft(c.A)
			c.clearFlag(FlagZero)
		})
	case 1:
		DefineInstruction(op.Code, "RRCA", func(c *CPU, _ Opcode) {
			c.A = c.rotateRight(c.A)
			c.clearFlag(FlagZero)
		})
	case 2:
		DefineInstruction(op.Code, "RLA", func(c *CPU, _ Opcode) {
			c.A = c.rotateLeftThroughCarry(c.A)
			c.clearFlag(FlagZero)
		})
	case 3:
		DefineInstruction(op.Code, "RRA", func(c *CPU, _ Opcode) {
			c.A = c.rotateRightThroughCarry(c.A)
			c.clearFlag(FlagZero)
		})
	case 4:
		DefineInstruction(op.Code, "DAA", func(c *CPU, _ Opcode) { c.daa() })
	case 5:
		DefineInstruction(op.Code, "CPL", func(c *CPU, _ Opcode) { c.complement() })
	case 6:
		DefineInstruction(op.Code, "SCF", func(c *CPU, _ Opcode) { c.setCarry() })
	case 7:
		DefineInstruction(op.Code, "CCF", func(c *CPU, _ Opcode) { c.complementCarry() })
	}
}

// defineLoad defines 0x40 - 0x7F, the register to register loads
// and HALT, which occupies the slot of LD (HL), (HL).
func defineLoad(op Opcode) {
	y, z := op.Y, op.Z
	if y == 6 && z == 6 {
		DefineInstruction(op.Code, "HALT", func(c *CPU, _ Opcode) {
			c.mode = ModeHalt
		})
		return
	}

	DefineInstruction(op.Code, fmt.Sprintf("LD %s, %s", r[y], r[z]), func(c *CPU, _ Opcode) {
		c.writeOperand(y, c.readOperand(z))
	})
}

// defineALU defines an accumulator operation selected by y, with
// the operand provided by operand.
func defineALU(op Opcode, name string, operand func(*CPU, Opcode) uint8) {
	var fn func(c *CPU, n uint8)
	switch op.Y {
	case 0:
		fn = func(c *CPU, n uint8) { c.add(n, false) }
	case 1:
		fn = func(c *CPU, n uint8) { c.add(n, true) }
	case 2:
		fn = func(c *CPU, n uint8) { c.sub(n, false) }
	case 3:
		fn = func(c *CPU, n uint8) { c.sub(n, true) }
	case 4:
		fn = (*CPU).and
	case 5:
		fn = (*CPU).xor
	case 6:
		fn = (*CPU).or
	case 7:
		fn = (*CPU).compare
	}

	DefineInstruction(op.Code, name, func(c *CPU, o Opcode) {
		fn(c, operand(c, o))
	})
}

// defineBlock3 defines 0xC0 - 0xFF.
func defineBlock3(op Opcode) {
	y, z, p, q := op.Y, op.Z, op.P, op.Q
	switch z {
	case 0:
		switch y {
		case 4:
			DefineInstruction(op.Code, "LDH (a8), A", func(c *CPU, o Opcode) {
				c.writeByte(0xFF00+uint16(o.Byte()), c.A)
			})
		case 5:
			DefineInstruction(op.Code, "ADD SP, r8", func(c *CPU, o Opcode) {
				c.SP = c.addSPSigned(o.Byte())
			})
		case 6:
			DefineInstruction(op.Code, "LDH A, (a8)", func(c *CPU, o Opcode) {
				c.A = c.readByte(0xFF00 + uint16(o.Byte()))
			})
		case 7:
			DefineInstruction(op.Code, "LD HL, SP+r8", func(c *CPU, o Opcode) {
				c.HL.SetUint16(c.addSPSigned(o.Byte()))
			})
		default:
			DefineInstruction(op.Code, fmt.Sprintf("RET %s", cc[y]), func(c *CPU, _ Opcode) {
				if c.condition(y) {
					c.ret()
					c.branched = true
				}
			})
		}
	case 1:
		if q == 0 {
			DefineInstruction(op.Code, fmt.Sprintf("POP %s", rp2[p]), func(c *CPU, _ Opcode) {
				c.stackPair(p).SetUint16(c.pop())
			})
			return
		}
		switch p {
		case 0:
			DefineInstruction(op.Code, "RET", func(c *CPU, _ Opcode) { c.ret() })
		case 1:
			DefineInstruction(op.Code, "RETI", func(c *CPU, _ Opcode) {
				c.ret()
				c.IRQ.IME = true
			})
		case 2:
			DefineInstruction(op.Code, "JP HL", func(c *CPU, _ Opcode) {
				c.jump(c.HL.Uint16())
			})
		case 3:
			DefineInstruction(op.Code, "LD SP, HL", func(c *CPU, _ Opcode) {
				c.SP = c.HL.Uint16()
			})
		}
	case 2:
		switch y {
		case 4:
			DefineInstruction(op.Code, "LD (C), A", func(c *CPU, _ Opcode) {
				c.writeByte(0xFF00+uint16(c.C), c.A)
			})
		case 5:
			DefineInstruction(op.Code, "LD (a16), A", func(c *CPU, o Opcode) {
				c.writeByte(o.Word(), c.A)
			})
		case 6:
			DefineInstruction(op.Code, "LD A, (C)", func(c *CPU, _ Opcode) {
				c.A = c.readByte(0xFF00 + uint16(c.C))
			})
		case 7:
			DefineInstruction(op.Code, "LD A, (a16)", func(c *CPU, o Opcode) {
				c.A = c.readByte(o.Word())
			})
		default:
			DefineInstruction(op.Code, fmt.Sprintf("JP %s, a16", cc[y]), func(c *CPU, o Opcode) {
				if c.condition(y) {
					c.jump(o.Word())
					c.branched = true
				}
			})
		}
	case 3:
		switch y {
		case 0:
			DefineInstruction(op.Code, "JP a16", func(c *CPU, o Opcode) {
				c.jump(o.Word())
			})
		case 6:
			DefineInstruction(op.Code, "DI", func(c *CPU, _ Opcode) { c.IRQ.IME = false })
		case 7:
			DefineInstruction(op.Code, "EI", func(c *CPU, _ Opcode) { c.IRQ.IME = true })
		}
		// y == 1 is the 0xCB prefix, dispatched through InstructionSetCB
	case 4:
		if y < 4 {
			DefineInstruction(op.Code, fmt.Sprintf("CALL %s, a16", cc[y]), func(c *CPU, o Opcode) {
				if c.condition(y) {
					c.call(o)
					c.branched = true
				}
			})
		}
	case 5:
		if q == 0 {
			DefineInstruction(op.Code, fmt.Sprintf("PUSH %s", rp2[p]), func(c *CPU, _ Opcode) {
				c.push(c.stackPair(p).Uint16())
			})
		} else if p == 0 {
			DefineInstruction(op.Code, "CALL a16", func(c *CPU, o Opcode) { c.call(o) })
		}
	case 6:
		defineALU(op, fmt.Sprintf("%s d8", alu[y]), func(_ *CPU, o Opcode) uint8 {
			return o.Byte()
		})
	case 7:
		vector := uint16(y) * 8
		DefineInstruction(op.Code, fmt.Sprintf("RST %02XH", vector), func(c *CPU, o Opcode) {
			c.push(c.PC + uint16(o.Length))
			c.jump(vector)
		})
	}
}

// defineCB defines the 0xCB prefixed instruction with the given
// secondary decomposition.
func defineCB(op Opcode) {
	y, z := op.Y, op.Z
	switch op.X {
	case 0:
		var fn func(*CPU, uint8) uint8
		switch y {
		case 0:
			fn = (*CPU).rotateLeft
		case 1:
			fn = (*CPU).rotateRight
		case 2:
			fn = (*CPU).rotateLeftThroughCarry
		case 3:
			fn = (*CPU).rotateRightThroughCarry
		case 4:
			fn = (*CPU).shiftLeftArithmetic
		case 5:
			fn = (*CPU).shiftRightArithmetic
		case 6:
			fn = (*CPU).swap
		case 7:
			fn = (*CPU).shiftRightLogical
		}
		DefineInstructionCB(op.Code, fmt.Sprintf("%s %s", rot[y], r[z]), func(c *CPU, _ Opcode) {
			c.writeOperand(z, fn(c, c.readOperand(z)))
		})
	case 1:
		DefineInstructionCB(op.Code, fmt.Sprintf("BIT %d, %s", y, r[z]), func(c *CPU, _ Opcode) {
			c.testBit(y, c.readOperand(z))
		})
	case 2:
		DefineInstructionCB(op.Code, fmt.Sprintf("RES %d, %s", y, r[z]), func(c *CPU, _ Opcode) {
			c.writeOperand(z, c.readOperand(z)&^(1<<y))
		})
	case 3:
		DefineInstructionCB(op.Code, fmt.Sprintf("SET %d, %s", y, r[z]), func(c *CPU, _ Opcode) {
			c.writeOperand(z, c.readOperand(z)|1<<y)
		})
	}
}

// jumpRelative adds the signed offset to the address of the next
// instruction.
func (c *CPU) jumpRelative(o Opcode) {
	c.jump(c.PC + uint16(o.Length) + uint16(int16(o.Offset())))
}

// call pushes the address of the next instruction and jumps to the
// immediate.
func (c *CPU) call(o Opcode) {
	c.push(c.PC + uint16(o.Length))
	c.jump(o.Word())
}

// ret pops PC from the stack.
func (c *CPU) ret() {
	c.jump(c.pop())
}
