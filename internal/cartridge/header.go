package cartridge

import (
	"fmt"
	"strings"
)

// Type is the cartridge type byte found at 0x0147.
type Type uint8

const (
	ROM        Type = 0x00
	MBC1       Type = 0x01
	MBC1RAM    Type = 0x02
	MBC2       Type = 0x05
	ROMRAM     Type = 0x08
	MBC3       Type = 0x11
	MBC5       Type = 0x19
	HUDSONHUC1 Type = 0xFF
)

// String returns the name of the mapper family.
func (t Type) String() string {
	switch {
	case t == ROM, t == ROMRAM, t == 0x09:
		return "ROM"
	case t >= MBC1 && t <= 0x03:
		return "MBC1"
	case t == MBC2, t == 0x06:
		return "MBC2"
	case t >= 0x0F && t <= 0x13:
		return "MBC3"
	case t >= MBC5 && t <= 0x1E:
		return "MBC5"
	default:
		return fmt.Sprintf("0x%02X", uint8(t))
	}
}

var ramMAP = map[uint8]uint{
	0x00: 0,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Header represents the header of a cartridge, located at the address
// space 0x0100-0x014F. The header contains information about the
// cartridge itself, and the hardware it expects to run on.
type Header struct {
	// 0x0134-0x0143 - Title of the game
	Title         string
	CartridgeType Type
	ROMSize       uint
	RAMSize       uint
	// HeaderChecksum is the value stored at 0x014D.
	HeaderChecksum uint8
	// ChecksumValid reports whether HeaderChecksum matches the
	// checksum computed over 0x0134-0x014C.
	ChecksumValid  bool
	GlobalChecksum uint16
}

// parseHeader parses the 0x50 bytes of a cartridge header.
func parseHeader(header []byte) Header {
	h := Header{}

	// parse the title, which is padded with zeroes
	h.Title = strings.TrimRight(string(header[0x34:0x44]), "\x00")

	h.CartridgeType = Type(header[0x47])

	// parse the ROM size (calculated by 32kB x (1 << n))
	h.ROMSize = (32 * 1024) * (1 << (header[0x48] & 0x0F))
	h.RAMSize = ramMAP[header[0x49]]

	h.HeaderChecksum = header[0x4D]
	var x uint8
	for _, b := range header[0x34:0x4D] {
		x = x - b - 1
	}
	h.ChecksumValid = x == h.HeaderChecksum

	// the global checksum is stored big-endian
	h.GlobalChecksum = uint16(header[0x4E])<<8 | uint16(header[0x4F])

	return h
}

func (h Header) String() string {
	return fmt.Sprintf("%s | Type: %s | ROM Size: %dkB | RAM Size: %dkB", h.Title, h.CartridgeType, h.ROMSize/1024, h.RAMSize/1024)
}
