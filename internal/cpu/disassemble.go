package cpu

import (
	"fmt"
	"strings"
)

// Disassemble returns the mnemonic of a decoded opcode, with its
// immediate filled in.
func Disassemble(op Opcode) string {
	if op.Prefixed() {
		return InstructionSetCB[op.Byte()].name
	}

	name := InstructionSet[op.Code].name
	switch {
	case strings.Contains(name, "d16"):
		return strings.Replace(name, "d16", fmt.Sprintf("0x%04X", op.Word()), 1)
	case strings.Contains(name, "a16"):
		return strings.Replace(name, "a16", fmt.Sprintf("0x%04X", op.Word()), 1)
	case strings.Contains(name, "d8"):
		return strings.Replace(name, "d8", fmt.Sprintf("0x%02X", op.Byte()), 1)
	case strings.Contains(name, "a8"):
		return strings.Replace(name, "a8", fmt.Sprintf("0xFF%02X", op.Byte()), 1)
	case strings.Contains(name, "r8"):
		return strings.Replace(name, "r8", fmt.Sprintf("%d", op.Offset()), 1)
	}
	return name
}

// DisassembleAt decodes and disassembles the instruction at pc.
func DisassembleAt(bus Reader, pc uint16) (string, Opcode) {
	op := DecodeAt(bus, pc)
	return Disassemble(op), op
}
