package mmu

// WRAM is the plain working memory backing every address that is not
// the cartridge or a hardware register. It is addressed directly by
// the bus address.
type WRAM struct {
	raw [0x10000]uint8
}

// NewWRAM returns a cleared working memory.
func NewWRAM() *WRAM {
	return &WRAM{}
}

// Read returns the byte at addr.
func (w *WRAM) Read(addr uint16) uint8 {
	return w.raw[addr]
}

// Write stores v at addr.
func (w *WRAM) Write(addr uint16, v uint8) {
	w.raw[addr] = v
}

// Reset clears the memory.
func (w *WRAM) Reset() {
	w.raw = [0x10000]uint8{}
}
