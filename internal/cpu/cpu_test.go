package cpu

import (
	"errors"
	"testing"

	"github.com/thelolagemann/dmgcore/internal/interrupts"
)

var (
	cpu    *CPU
	memory *testBus
)

// testBus is a flat 64KiB memory.
type testBus struct {
	mem [0x10000]uint8
}

func (b *testBus) Read(address uint16) uint8 {
	return b.mem[address]
}

func (b *testBus) Write(address uint16, value uint8) {
	b.mem[address] = value
}

// reset creates a fresh cpu with zeroed registers and memory.
func reset() {
	memory = &testBus{}
	cpu = NewCPU(memory, interrupts.NewService())
}

// load writes program at address and points PC at it.
func load(address uint16, program ...uint8) {
	for i, b := range program {
		memory.mem[address+uint16(i)] = b
	}
	cpu.PC = address
}

// step executes a single instruction, failing the test on error.
func step(t *testing.T) uint8 {
	t.Helper()
	cycles, err := cpu.Step()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return cycles
}

// testInstruction resets the cpu, loads the instruction with its
// immediate at 0x1000 and runs f.
func testInstruction(t *testing.T, name string, program []uint8, f func(t *testing.T)) {
	t.Run(name, func(t *testing.T) {
		reset()
		load(0x1000, program...)
		f(t)
	})
}

func TestCPU_UnimplementedOpcodes(t *testing.T) {
	for _, opcode := range append([]uint8{0x10}, illegalOpcodes...) {
		reset()
		load(0x0200, opcode)

		_, err := cpu.Step()
		if !errors.Is(err, ErrUnimplementedOpcode) {
			t.Errorf("0x%02X: expected ErrUnimplementedOpcode, got %v", opcode, err)
			continue
		}
		var unimplemented *UnimplementedOpcodeError
		if !errors.As(err, &unimplemented) || unimplemented.Opcode != opcode || unimplemented.PC != 0x0200 {
			t.Errorf("0x%02X: unexpected error %#v", opcode, err)
		}
		if cpu.PC != 0x0200 {
			t.Errorf("0x%02X: expected PC to be unchanged, got 0x%04X", opcode, cpu.PC)
		}
	}
}

func TestCPU_EveryOpcodeDefined(t *testing.T) {
	undefined := map[uint8]bool{0x10: true, 0xCB: true}
	for _, opcode := range illegalOpcodes {
		undefined[opcode] = true
	}

	for i, instruction := range InstructionSet {
		if instruction.Name() == "" {
			t.Errorf("0x%02X: expected a name", i)
		}
		if instruction.Implemented() == undefined[uint8(i)] {
			t.Errorf("0x%02X (%s): unexpected implemented state %v", i, instruction.Name(), instruction.Implemented())
		}
	}
	for i, instruction := range InstructionSetCB {
		if !instruction.Implemented() {
			t.Errorf("0xCB 0x%02X: expected an implementation", i)
		}
	}
}

func TestCPU_Halt(t *testing.T) {
	reset()
	load(0x0200, 0x76, 0x00)

	step(t)
	if !cpu.Halted() {
		t.Fatalf("expected CPU to be halted")
	}
	if cpu.PC != 0x0201 {
		t.Errorf("expected PC to be 0x0201, got 0x%04X", cpu.PC)
	}

	// no pending interrupt, stays halted
	if cycles := step(t); cycles != HaltCycles || !cpu.Halted() {
		t.Errorf("expected to remain halted, got %d cycles", cycles)
	}

	// pending interrupt wakes the CPU even when IME is clear
	cpu.IRQ.Enable = interrupts.TimerFlag
	cpu.IRQ.Request(interrupts.TimerFlag)
	step(t)
	if cpu.Halted() {
		t.Errorf("expected CPU to wake up")
	}
	if cycles := cpu.HandleInterrupts(); cycles != 0 {
		t.Errorf("expected no interrupt to be serviced with IME clear")
	}

	step(t) // NOP
	if cpu.PC != 0x0202 {
		t.Errorf("expected PC to be 0x0202, got 0x%04X", cpu.PC)
	}
}

func TestCPU_HandleInterrupts(t *testing.T) {
	reset()
	cpu.PC = 0x1234
	cpu.SP = 0xFFFE
	cpu.IRQ.IME = true
	cpu.IRQ.Enable = 0x1F
	cpu.IRQ.Flag = 0x1F

	if cycles := cpu.HandleInterrupts(); cycles != InterruptServiceCycles {
		t.Errorf("expected %d cycles, got %d", InterruptServiceCycles, cycles)
	}
	if cpu.PC != 0x0040 {
		t.Errorf("expected PC to be 0x0040, got 0x%04X", cpu.PC)
	}
	if cpu.IRQ.IME {
		t.Errorf("expected IME to be cleared")
	}
	if cpu.IRQ.Flag != 0x1E {
		t.Errorf("expected only the VBlank flag to clear, got %05b", cpu.IRQ.Flag)
	}
	if cpu.SP != 0xFFFC {
		t.Errorf("expected SP to be 0xFFFC, got 0x%04X", cpu.SP)
	}
	if ret := uint16(memory.mem[0xFFFD])<<8 | uint16(memory.mem[0xFFFC]); ret != 0x1234 {
		t.Errorf("expected 0x1234 on the stack, got 0x%04X", ret)
	}

	// RETI restores IME and PC
	load(0x0040, 0xD9)
	step(t)
	if cpu.PC != 0x1234 || !cpu.IRQ.IME || cpu.SP != 0xFFFE {
		t.Errorf("expected RETI to return to 0x1234 with IME set, got PC=0x%04X IME=%v SP=0x%04X", cpu.PC, cpu.IRQ.IME, cpu.SP)
	}

	// the next interrupt in priority order is LCDSTAT
	cpu.HandleInterrupts()
	if cpu.PC != 0x0048 {
		t.Errorf("expected PC to be 0x0048, got 0x%04X", cpu.PC)
	}
}

func TestCPU_SkipBoot(t *testing.T) {
	reset()
	cpu.SkipBoot()

	if cpu.AF.Uint16() != 0x01B0 || cpu.BC.Uint16() != 0x0013 || cpu.DE.Uint16() != 0x00D8 || cpu.HL.Uint16() != 0x014D {
		t.Errorf("unexpected post boot registers AF=%04X BC=%04X DE=%04X HL=%04X", cpu.AF.Uint16(), cpu.BC.Uint16(), cpu.DE.Uint16(), cpu.HL.Uint16())
	}
	if cpu.SP != 0xFFFE || cpu.PC != 0x0100 {
		t.Errorf("expected SP=0xFFFE PC=0x0100, got SP=0x%04X PC=0x%04X", cpu.SP, cpu.PC)
	}
}
