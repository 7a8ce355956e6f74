package cpu

// InterruptServiceCycles is the cost, in machine cycles, of
// dispatching an interrupt: two wait cycles, pushing PC and
// jumping to the vector.
const InterruptServiceCycles = 5

// HaltCycles is the cost of a step spent halted.
const HaltCycles = 1

// cycles holds the cost, in machine cycles, of every opcode. For
// conditional instructions this is the cost when the branch is not
// taken; see branchCycles. A zero entry is an opcode without a
// fixed cost (illegal opcodes, STOP and the 0xCB prefix).
var cycles = [256]uint8{
	1, 3, 2, 2, 1, 1, 2, 1, 5, 2, 2, 2, 1, 1, 2, 1, // 0x00
	0, 3, 2, 2, 1, 1, 2, 1, 3, 2, 2, 2, 1, 1, 2, 1, // 0x10
	2, 3, 2, 2, 1, 1, 2, 1, 2, 2, 2, 2, 1, 1, 2, 1, // 0x20
	2, 3, 2, 2, 3, 3, 3, 1, 2, 2, 2, 2, 1, 1, 2, 1, // 0x30
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, // 0x40
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, // 0x50
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, // 0x60
	2, 2, 2, 2, 2, 2, 1, 2, 1, 1, 1, 1, 1, 1, 2, 1, // 0x70
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, // 0x80
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, // 0x90
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, // 0xA0
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, // 0xB0
	2, 3, 3, 4, 3, 4, 2, 4, 2, 4, 3, 0, 3, 6, 2, 4, // 0xC0
	2, 3, 3, 0, 3, 4, 2, 4, 2, 4, 3, 0, 3, 0, 2, 4, // 0xD0
	3, 3, 2, 0, 0, 4, 2, 4, 4, 1, 4, 0, 0, 0, 2, 4, // 0xE0
	3, 3, 2, 1, 0, 4, 2, 4, 3, 2, 4, 1, 0, 0, 2, 4, // 0xF0
}

// branchCycles holds the additional cost of a conditional
// instruction when its branch is taken.
var branchCycles = map[uint8]uint8{
	0x20: 1, 0x28: 1, 0x30: 1, 0x38: 1, // JR cc
	0xC2: 1, 0xCA: 1, 0xD2: 1, 0xDA: 1, // JP cc
	0xC4: 3, 0xCC: 3, 0xD4: 3, 0xDC: 3, // CALL cc
	0xC0: 3, 0xC8: 3, 0xD0: 3, 0xD8: 3, // RET cc
}

// cbCycles returns the cost of a 0xCB prefixed opcode, including
// the prefix itself.
func cbCycles(op Opcode) uint8 {
	switch {
	case op.Z != 6:
		return 2
	case op.X == 1: // BIT b, (HL)
		return 3
	default:
		return 4
	}
}

// Cycles returns the cost in machine cycles of the given opcode,
// decoded with its immediate, when executed with or without its
// branch being taken.
func Cycles(op Opcode, taken bool) uint8 {
	if op.Prefixed() {
		return cbCycles(op.CB())
	}
	c := cycles[op.Code]
	if taken {
		c += branchCycles[op.Code]
	}
	return c
}
