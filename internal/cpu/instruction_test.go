package cpu

import "testing"

func TestInstruction_Timing(t *testing.T) {
	timings := []uint8{
		1, 3, 2, 2, 1, 1, 2, 1, 5, 2, 2, 2, 1, 1, 2, 1,
		0, 3, 2, 2, 1, 1, 2, 1, 3, 2, 2, 2, 1, 1, 2, 1,
		2, 3, 2, 2, 1, 1, 2, 1, 2, 2, 2, 2, 1, 1, 2, 1,
		2, 3, 2, 2, 3, 3, 3, 1, 2, 2, 2, 2, 1, 1, 2, 1,
		1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
		1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
		1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
		2, 2, 2, 2, 2, 2, 1, 2, 1, 1, 1, 1, 1, 1, 2, 1,
		1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
		1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
		1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
		1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
		2, 3, 3, 4, 3, 4, 2, 4, 2, 4, 3, 0, 3, 6, 2, 4,
		2, 3, 3, 0, 3, 4, 2, 4, 2, 4, 3, 0, 3, 0, 2, 4,
		3, 3, 2, 0, 0, 4, 2, 4, 4, 1, 4, 0, 0, 0, 2, 4,
		3, 3, 2, 1, 0, 4, 2, 4, 3, 2, 4, 1, 0, 0, 2, 4,
	}
	for i, timing := range timings {
		// conditional timings are covered by the jump tests
		if _, conditional := branchCycles[uint8(i)]; timing == 0 || conditional {
			continue
		}

		opcode := uint8(i)
		testInstruction(t, InstructionSet[opcode].Name(), []uint8{opcode, 0x00, 0xC0}, func(t *testing.T) {
			cpu.SP = 0xDFF0
			cpu.HL.SetUint16(0xC100)
			if cycles := step(t); cycles != timing {
				t.Errorf("expected %d cycles, got %d", timing, cycles)
			}
		})
	}

	cbTiming := []uint8{
		2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
		2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
		2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
		2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
		2, 2, 2, 2, 2, 2, 3, 2, 2, 2, 2, 2, 2, 2, 3, 2,
		2, 2, 2, 2, 2, 2, 3, 2, 2, 2, 2, 2, 2, 2, 3, 2,
		2, 2, 2, 2, 2, 2, 3, 2, 2, 2, 2, 2, 2, 2, 3, 2,
		2, 2, 2, 2, 2, 2, 3, 2, 2, 2, 2, 2, 2, 2, 3, 2,
		2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
		2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
		2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
		2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
		2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
		2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
		2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
		2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
	}
	for i, timing := range cbTiming {
		opcode := uint8(i)
		testInstruction(t, InstructionSetCB[opcode].Name(), []uint8{0xCB, opcode}, func(t *testing.T) {
			cpu.HL.SetUint16(0xC100)
			if cycles := step(t); cycles != timing {
				t.Errorf("expected %d cycles, got %d", timing, cycles)
			}
			if cpu.PC != 0x1002 {
				t.Errorf("expected PC to be 0x1002, got 0x%04X", cpu.PC)
			}
		})
	}
}

func TestInstruction_Loads(t *testing.T) {
	// 0x41 - LD B, C
	testInstruction(t, "LD B, C", []uint8{0x41}, func(t *testing.T) {
		cpu.C = 0x42
		step(t)

		if cpu.B != 0x42 {
			t.Errorf("expected B to be 0x42, got 0x%02X", cpu.B)
		}
		if cpu.PC != 0x1001 {
			t.Errorf("expected PC to be 0x1001, got 0x%04X", cpu.PC)
		}
	})
	// 0x36 - LD (HL), d8
	testInstruction(t, "LD (HL), d8", []uint8{0x36, 0x99}, func(t *testing.T) {
		cpu.HL.SetUint16(0xC000)
		step(t)

		if memory.mem[0xC000] != 0x99 {
			t.Errorf("expected (HL) to be 0x99, got 0x%02X", memory.mem[0xC000])
		}
	})
	// 0x22 - LD (HL+), A
	testInstruction(t, "LD (HL+), A", []uint8{0x22}, func(t *testing.T) {
		cpu.A = 0x11
		cpu.HL.SetUint16(0xC0FF)
		step(t)

		if memory.mem[0xC0FF] != 0x11 || cpu.HL.Uint16() != 0xC100 {
			t.Errorf("expected (0xC0FF)=0x11 HL=0xC100, got (0xC0FF)=0x%02X HL=0x%04X", memory.mem[0xC0FF], cpu.HL.Uint16())
		}
	})
	// 0x3A - LD A, (HL-)
	testInstruction(t, "LD A, (HL-)", []uint8{0x3A}, func(t *testing.T) {
		cpu.HL.SetUint16(0xC000)
		memory.mem[0xC000] = 0x77
		step(t)

		if cpu.A != 0x77 || cpu.HL.Uint16() != 0xBFFF {
			t.Errorf("expected A=0x77 HL=0xBFFF, got A=0x%02X HL=0x%04X", cpu.A, cpu.HL.Uint16())
		}
	})
	// 0x12 - LD (DE), A
	testInstruction(t, "LD (DE), A", []uint8{0x12}, func(t *testing.T) {
		cpu.A = 0x5A
		cpu.DE.SetUint16(0xC123)
		step(t)

		if memory.mem[0xC123] != 0x5A {
			t.Errorf("expected (DE) to be 0x5A, got 0x%02X", memory.mem[0xC123])
		}
	})
	// 0x21 - LD HL, d16
	testInstruction(t, "LD HL, d16", []uint8{0x21, 0xEF, 0xBE}, func(t *testing.T) {
		step(t)

		if cpu.HL.Uint16() != 0xBEEF {
			t.Errorf("expected HL to be 0xBEEF, got 0x%04X", cpu.HL.Uint16())
		}
		if cpu.PC != 0x1003 {
			t.Errorf("expected PC to be 0x1003, got 0x%04X", cpu.PC)
		}
	})
	// 0x08 - LD (a16), SP
	testInstruction(t, "LD (a16), SP", []uint8{0x08, 0x00, 0xC0}, func(t *testing.T) {
		cpu.SP = 0xABCD
		step(t)

		if memory.mem[0xC000] != 0xCD || memory.mem[0xC001] != 0xAB {
			t.Errorf("expected 0xABCD at 0xC000, got 0x%02X%02X", memory.mem[0xC001], memory.mem[0xC000])
		}
	})
	// 0xE0 - LDH (a8), A
	testInstruction(t, "LDH (a8), A", []uint8{0xE0, 0x80}, func(t *testing.T) {
		cpu.A = 0x42
		step(t)

		if memory.mem[0xFF80] != 0x42 {
			t.Errorf("expected 0xFF80 to be 0x42, got 0x%02X", memory.mem[0xFF80])
		}
	})
	// 0xF2 - LD A, (C)
	testInstruction(t, "LD A, (C)", []uint8{0xF2}, func(t *testing.T) {
		cpu.C = 0x81
		memory.mem[0xFF81] = 0x24
		step(t)

		if cpu.A != 0x24 {
			t.Errorf("expected A to be 0x24, got 0x%02X", cpu.A)
		}
	})
	// 0xEA - LD (a16), A and 0xFA - LD A, (a16)
	testInstruction(t, "LD (a16), A", []uint8{0xEA, 0x34, 0xC2, 0xFA, 0x35, 0xC2}, func(t *testing.T) {
		cpu.A = 0x66
		memory.mem[0xC235] = 0x67
		step(t)
		step(t)

		if memory.mem[0xC234] != 0x66 || cpu.A != 0x67 {
			t.Errorf("expected (0xC234)=0x66 A=0x67, got (0xC234)=0x%02X A=0x%02X", memory.mem[0xC234], cpu.A)
		}
	})
	// 0xF9 - LD SP, HL
	testInstruction(t, "LD SP, HL", []uint8{0xF9}, func(t *testing.T) {
		cpu.HL.SetUint16(0xCFFF)
		step(t)

		if cpu.SP != 0xCFFF {
			t.Errorf("expected SP to be 0xCFFF, got 0x%04X", cpu.SP)
		}
	})
}

func TestInstruction_Interrupts(t *testing.T) {
	// 0xFB - EI
	testInstruction(t, "EI", []uint8{0xFB}, func(t *testing.T) {
		step(t)
		if !cpu.IRQ.IME {
			t.Errorf("expected IME to be set")
		}
	})
	// 0xF3 - DI
	testInstruction(t, "DI", []uint8{0xF3}, func(t *testing.T) {
		cpu.IRQ.IME = true
		step(t)
		if cpu.IRQ.IME {
			t.Errorf("expected IME to be cleared")
		}
	})
}

func TestInstructionCB(t *testing.T) {
	// 0xCB 0x7C - BIT 7, H
	testInstruction(t, "BIT 7, H", []uint8{0xCB, 0x7C}, func(t *testing.T) {
		cpu.H = 0x7F
		cpu.setFlag(FlagCarry)
		step(t)

		if cpu.F != flagsOf(true, false, true, true) {
			t.Errorf("expected F=10110000, got F=%08b", cpu.F)
		}

		cpu.PC = 0x1000
		cpu.H = 0x80
		step(t)
		if cpu.FlagSet(FlagZero) {
			t.Errorf("expected zero flag to be reset")
		}
	})
	// 0xCB 0x86 - RES 0, (HL)
	testInstruction(t, "RES 0, (HL)", []uint8{0xCB, 0x86}, func(t *testing.T) {
		cpu.HL.SetUint16(0xC000)
		memory.mem[0xC000] = 0xFF
		cpu.F = 0xF0
		step(t)

		if memory.mem[0xC000] != 0xFE || cpu.F != 0xF0 {
			t.Errorf("expected (HL)=0xFE with flags untouched, got 0x%02X F=%08b", memory.mem[0xC000], cpu.F)
		}
	})
	// 0xCB 0xFF - SET 7, A
	testInstruction(t, "SET 7, A", []uint8{0xCB, 0xFF}, func(t *testing.T) {
		step(t)

		if cpu.A != 0x80 || cpu.F != 0 {
			t.Errorf("expected A=0x80 F=00000000, got A=0x%02X F=%08b", cpu.A, cpu.F)
		}
	})
	// 0xCB 0x37 - SWAP A
	testInstruction(t, "SWAP A", []uint8{0xCB, 0x37}, func(t *testing.T) {
		cpu.A = 0xF1
		cpu.F = 0xF0
		step(t)

		if cpu.A != 0x1F || cpu.F != 0 {
			t.Errorf("expected A=0x1F F=00000000, got A=0x%02X F=%08b", cpu.A, cpu.F)
		}
	})
	// 0xCB 0x28 - SRA B
	testInstruction(t, "SRA B", []uint8{0xCB, 0x28}, func(t *testing.T) {
		cpu.B = 0x81
		step(t)

		if cpu.B != 0xC0 || cpu.F != flagsOf(false, false, false, true) {
			t.Errorf("expected B=0xC0 F=00010000, got B=0x%02X F=%08b", cpu.B, cpu.F)
		}
	})
	// 0xCB 0x3F - SRL A
	testInstruction(t, "SRL A", []uint8{0xCB, 0x3F}, func(t *testing.T) {
		cpu.A = 0x01
		step(t)

		if cpu.A != 0x00 || cpu.F != flagsOf(true, false, false, true) {
			t.Errorf("expected A=0x00 F=10010000, got A=0x%02X F=%08b", cpu.A, cpu.F)
		}
	})
	// 0xCB 0x21 - SLA C
	testInstruction(t, "SLA C", []uint8{0xCB, 0x21}, func(t *testing.T) {
		cpu.C = 0xC1
		step(t)

		if cpu.C != 0x82 || cpu.F != flagsOf(false, false, false, true) {
			t.Errorf("expected C=0x82 F=00010000, got C=0x%02X F=%08b", cpu.C, cpu.F)
		}
	})
	// 0xCB 0x12 - RL D
	testInstruction(t, "RL D", []uint8{0xCB, 0x12}, func(t *testing.T) {
		cpu.D = 0x80
		cpu.setFlag(FlagCarry)
		step(t)

		if cpu.D != 0x01 || cpu.F != flagsOf(false, false, false, true) {
			t.Errorf("expected D=0x01 F=00010000, got D=0x%02X F=%08b", cpu.D, cpu.F)
		}
	})
	// 0xCB 0x1B - RR E
	testInstruction(t, "RR E", []uint8{0xCB, 0x1B}, func(t *testing.T) {
		cpu.E = 0x01
		step(t)

		if cpu.E != 0x00 || cpu.F != flagsOf(true, false, false, true) {
			t.Errorf("expected E=0x00 F=10010000, got E=0x%02X F=%08b", cpu.E, cpu.F)
		}
	})
	// 0xCB 0x06 - RLC (HL)
	testInstruction(t, "RLC (HL)", []uint8{0xCB, 0x06}, func(t *testing.T) {
		cpu.HL.SetUint16(0xC000)
		memory.mem[0xC000] = 0x85
		step(t)

		if memory.mem[0xC000] != 0x0B || cpu.F != flagsOf(false, false, false, true) {
			t.Errorf("expected (HL)=0x0B F=00010000, got 0x%02X F=%08b", memory.mem[0xC000], cpu.F)
		}
	})
	// 0xCB 0x0D - RRC L
	testInstruction(t, "RRC L", []uint8{0xCB, 0x0D}, func(t *testing.T) {
		cpu.L = 0x01
		step(t)

		if cpu.L != 0x80 || cpu.F != flagsOf(false, false, false, true) {
			t.Errorf("expected L=0x80 F=00010000, got L=0x%02X F=%08b", cpu.L, cpu.F)
		}
	})
}
