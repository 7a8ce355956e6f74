// Package cartridge provides the flat ROM cartridge mapped into
// 0x0000 - 0x7FFF. Bank switching is not modelled: the first 32kB
// of the ROM are visible and writes to the ROM area are ignored.
package cartridge

import (
	"fmt"

	"github.com/cespare/xxhash"
)

// headerEnd is the first address past the cartridge header.
const headerEnd = 0x150

// Cartridge represents a read-only game cartridge.
type Cartridge struct {
	rom    []byte
	header Header
	hash   uint64
}

// New returns a new Cartridge for the given ROM image. The ROM must
// at least contain the cartridge header (0x0100 - 0x014F).
func New(rom []byte) (*Cartridge, error) {
	if len(rom) < headerEnd {
		return nil, fmt.Errorf("cartridge: rom too small (%d bytes)", len(rom))
	}

	return &Cartridge{
		rom:    rom,
		header: parseHeader(rom[0x100:headerEnd]),
		hash:   xxhash.Sum64(rom),
	}, nil
}

// NewEmpty returns a cartridge with no ROM, reading 0xFF everywhere.
func NewEmpty() *Cartridge {
	return &Cartridge{}
}

// Read returns the value at the given address. Addresses beyond the
// end of the ROM read as 0xFF.
func (c *Cartridge) Read(address uint16) uint8 {
	if int(address) >= len(c.rom) {
		return 0xFF
	}
	return c.rom[address]
}

// Read16 returns the little-endian word at the given address.
func (c *Cartridge) Read16(address uint16) uint16 {
	return uint16(c.Read(address)) | uint16(c.Read(address+1))<<8
}

// Size returns the size of the ROM in bytes.
func (c *Cartridge) Size() int {
	return len(c.rom)
}

// Header returns the parsed cartridge header.
func (c *Cartridge) Header() Header {
	return c.header
}

// Title returns the cartridge title.
func (c *Cartridge) Title() string {
	return c.header.Title
}

// Fingerprint returns the xxhash of the whole ROM image, which
// identifies a ROM regardless of its header contents.
func (c *Cartridge) Fingerprint() uint64 {
	return c.hash
}
