package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/dmgcore/pkg/debugger"
	"github.com/thelolagemann/dmgcore/pkg/debugger/debuggertest"
)

func TestREPL(t *testing.T) {
	client := debuggertest.NewSession(t,
		0x3E, 0x42, // LD A, 0x42
		0x00, // NOP
	)

	in := strings.NewReader(strings.Join([]string{
		"help",
		"step 2",
		"peek 0150",
		"",
		"bogus",
		"break 0x0153",
		"breakpoints",
		"dump 0150 3",
		"disasm 0150 2",
		"quit",
		"registers", // never reached
	}, "\n"))
	out := &bytes.Buffer{}

	require.NoError(t, New(in, out).Start(context.Background(), client))

	got := out.String()
	assert.Contains(t, got, debugger.Help)
	assert.Contains(t, got, "0x0152: NOP")
	assert.Contains(t, got, "AF=42B0")
	assert.Equal(t, 2, strings.Count(got, "0x3E\n"), "an empty line repeats the last command")
	assert.Contains(t, got, `error: emulator: unknown command "bogus"`)
	assert.Contains(t, got, "breakpoint set at 0x0153")
	assert.Contains(t, got, "0x0153\n")
	assert.Contains(t, got, "0x0150: 3E 42 00\n")
	assert.Contains(t, got, "0x0150: LD A, 0x42\n0x0152: NOP\n")
	assert.Equal(t, 1, strings.Count(got, "AF="), "nothing runs after quit")
}

func TestREPL_EOF(t *testing.T) {
	client := debuggertest.NewSession(t)

	out := &bytes.Buffer{}
	assert.NoError(t, New(strings.NewReader("registers\n"), out).Start(context.Background(), client))
	assert.Contains(t, out.String(), "PC=0100")
}

func TestInstalled(t *testing.T) {
	assert.NotNil(t, debugger.GetFrontend("repl"))
}
