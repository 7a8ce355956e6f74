// Package debuggertest provides a running emulator for front-end
// tests.
package debuggertest

import (
	"context"
	"testing"

	"github.com/thelolagemann/dmgcore/internal/gameboy"
	"github.com/thelolagemann/dmgcore/pkg/emulator"
)

// ProgramStart is where ROM places the program.
const ProgramStart = 0x0150

// ROM returns a 32kB ROM image whose entry point jumps to program.
func ROM(program ...uint8) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], []byte{0xC3, ProgramStart & 0xFF, ProgramStart >> 8}) // JP 0x0150
	copy(rom[0x0134:], "DEBUGGER")
	copy(rom[ProgramStart:], program)
	return rom
}

// NewSession starts serving a GameBoy running program, and returns
// a client connected to it. The emulator is stopped when the test
// finishes.
func NewSession(t testing.TB, program ...uint8) *emulator.Client {
	t.Helper()

	g, err := gameboy.NewGameBoy(ROM(program...), gameboy.NoBios())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	commands := make(chan emulator.CommandPacket)
	responses := make(chan emulator.ResponsePacket)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = g.Serve(ctx, commands, responses)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return emulator.NewClient(commands, responses)
}
