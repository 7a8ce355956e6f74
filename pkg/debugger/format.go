package debugger

import (
	"fmt"
	"strings"

	"github.com/thelolagemann/dmgcore/pkg/emulator"
)

// Help is the usage text shown by the text front-ends.
const Help = `commands:
  step [n]          execute n instructions (default 1)
  continue          run until a breakpoint or error
  pause             stop running
  break <addr>      set a breakpoint
  clear <addr>      clear a breakpoint
  breakpoints       list breakpoints
  peek <addr>       read a byte
  registers         show registers
  dump <addr> [n]   hex dump n bytes (default 16)
  disasm [addr] [n] disassemble n instructions (default 8, from PC)
  reset             reset the emulator
  quit              close the emulator
addresses are hexadecimal`

// Format renders a response as text for the line based front-ends.
func Format(resp emulator.ResponsePacket) string {
	var b strings.Builder

	if resp.Error != nil {
		fmt.Fprintf(&b, "error: %v\n", resp.Error)
	}

	switch resp.Command {
	case emulator.CommandPeek:
		if len(resp.Data) == 1 {
			fmt.Fprintf(&b, "0x%02X\n", resp.Data[0])
		}
	case emulator.CommandDump:
		dump(&b, resp.Address, resp.Data)
	case emulator.CommandContinue:
		if resp.ID != 0 && resp.Error == nil {
			fmt.Fprintf(&b, "%s\n", resp.Status)
		}
	}

	for _, l := range resp.Lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}

	if resp.Registers != nil {
		b.WriteString(resp.Registers.String())
		b.WriteByte('\n')
	}

	return b.String()
}

// dump writes data as rows of 16 bytes, each prefixed with its
// address.
func dump(b *strings.Builder, address uint16, data []byte) {
	for len(data) > 0 {
		n := 16
		if len(data) < n {
			n = len(data)
		}
		fmt.Fprintf(b, "0x%04X: % X\n", address, data[:n])

		data = data[n:]
		address += uint16(n)
	}
}
