package emulator

import (
	"fmt"
	"strings"
)

// Flags is the decoded upper nibble of the F register.
type Flags struct {
	Zero      bool `json:"z"`
	Subtract  bool `json:"n"`
	HalfCarry bool `json:"h"`
	Carry     bool `json:"c"`
}

func (f Flags) String() string {
	b := []byte("----")
	for i, set := range []bool{f.Zero, f.Subtract, f.HalfCarry, f.Carry} {
		if set {
			b[i] = "ZNHC"[i]
		}
	}
	return string(b)
}

// Registers is a snapshot of the CPU registers and of the
// state of the rest of the core, taken between two steps.
type Registers struct {
	A uint8 `json:"a"`
	F uint8 `json:"f"`
	B uint8 `json:"b"`
	C uint8 `json:"c"`
	D uint8 `json:"d"`
	E uint8 `json:"e"`
	H uint8 `json:"h"`
	L uint8 `json:"l"`

	SP uint16 `json:"sp"`
	PC uint16 `json:"pc"`

	Flags Flags `json:"flags"`

	IME    bool   `json:"ime"`
	IE     uint8  `json:"ie"`
	IF     uint8  `json:"if"`
	Halted bool   `json:"halted"`
	Mode   string `json:"mode"`
	LY     uint8  `json:"ly"`
	Dots   uint16 `json:"dots"`
	Frames uint64 `json:"frames"`
	Cycles uint64 `json:"cycles"`
}

// AF returns the AF register pair.
func (r Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F) }

// BC returns the BC register pair.
func (r Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }

// DE returns the DE register pair.
func (r Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }

// HL returns the HL register pair.
func (r Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

// String formats the snapshot over three lines.
func (r Registers) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X\n",
		r.AF(), r.BC(), r.DE(), r.HL(), r.SP, r.PC)
	fmt.Fprintf(&b, "flags=%s IME=%t IE=%02X IF=%02X halted=%t\n",
		r.Flags, r.IME, r.IE, r.IF, r.Halted)
	fmt.Fprintf(&b, "ppu=%s LY=%d dots=%d frames=%d cycles=%d",
		r.Mode, r.LY, r.Dots, r.Frames, r.Cycles)
	return b.String()
}
