// Package mmu provides a memory management unit for the Game Boy. The
// MMU is unaware of the other components, and routes every read and
// write of the 64kB address space through a table built once at
// construction.
package mmu

import (
	"fmt"

	"github.com/thelolagemann/dmgcore/internal/boot"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

// IOBus is the interface that the MMU uses to communicate with the other
// components.
type IOBus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Cartridge is the read-only ROM mapped into 0x0000 - 0x7FFF.
type Cartridge interface {
	Read(address uint16) uint8
	Read16(address uint16) uint16
	Size() int
}

// MMU is the memory management unit for the Game Boy. It handles all
// memory reads and writes to the Game Boy's 64kB of memory, and
// delegates to the other components through the IOBus interface.
type MMU struct {
	// 64kB address space
	raw [65536]*types.Address

	// 0x0000 - 0x00FF - BOOT ROM (256B)
	bootROM     *boot.ROM
	bootROMDone bool

	// 0x0000 - 0x7FFF - ROM (32kB)
	Cart Cartridge

	// 0xFF40 - 0xFF45 - LCD registers
	Video IOBus

	// 0xFF0F, 0xFFFF - interrupt flag & enable registers
	IRQ IOBus

	// everything else, including the mirror at 0xE000 - 0xFDFF
	wRAM *WRAM

	// 0xFF46 - OAM DMA
	dma *DMA

	Log log.Logger
}

func (m *MMU) init() {
	addresses := []types.Address{
		{Read: m.readCart, Write: func(uint16, uint8) {}},
		{Read: m.Cart.Read, Write: func(uint16, uint8) {}},
		{Read: m.wRAM.Read, Write: m.wRAM.Write},
		{Read: readOffset(m.wRAM.Read, 0x2000), Write: writeOffset(m.wRAM.Write, 0x2000)},
		{Read: m.Video.Read, Write: m.Video.Write},
		{Read: m.IRQ.Read, Write: m.IRQ.Write},
		{Read: m.dma.Read, Write: m.dma.Write},
		{Read: func(uint16) uint8 { return 0xFF }, Write: func(uint16, uint8) {
			// it's assumed any write to this register will disable the boot rom
			m.DisableBootROM()
		}},
	}

	// 0x0000 - 0x00FF - boot ROM overlay
	for i := 0x0000; i < boot.Size; i++ {
		m.raw[i] = &addresses[0]
	}

	// 0x0100 - 0x7FFF - ROM
	for i := boot.Size; i < 0x8000; i++ {
		m.raw[i] = &addresses[1]
	}

	// 0x8000 - 0xDFFF - VRAM, external RAM, internal RAM
	for i := 0x8000; i < 0xE000; i++ {
		m.raw[i] = &addresses[2]
	}

	// 0xE000 - 0xFDFF - echo RAM (mirror of 0xC000 - 0xDDFF)
	for i := 0xE000; i < 0xFE00; i++ {
		m.raw[i] = &addresses[3]
	}

	// 0xFE00 - 0xFFFF - OAM, I/O, zero page RAM
	for i := 0xFE00; i < 0x10000; i++ {
		m.raw[i] = &addresses[2]
	}

	// hardware registers
	for _, r := range []types.HardwareAddress{types.LCDC, types.STAT, types.SCY, types.SCX, types.LY, types.LYC} {
		m.raw[r] = &addresses[4]
	}
	m.raw[types.IF] = &addresses[5]
	m.raw[types.IE] = &addresses[5]
	m.raw[types.DMA] = &addresses[6]
	m.raw[types.BDIS] = &addresses[7]

	for i := range m.raw {
		if a := m.raw[i]; a == nil || a.Read == nil || a.Write == nil {
			panic(fmt.Sprintf("mmu: address decode gap at 0x%04X", i))
		}
	}
}

func readOffset(read func(uint16) uint8, offset uint16) func(uint16) uint8 {
	return func(addr uint16) uint8 {
		return read(addr - offset)
	}
}

func writeOffset(write func(uint16, uint8), offset uint16) func(uint16, uint8) {
	return func(addr uint16, v uint8) {
		write(addr-offset, v)
	}
}

// NewMMU returns a new MMU, routing the LCD registers to video and
// the interrupt registers to irq.
func NewMMU(cart Cartridge, video, irq IOBus, l log.Logger) *MMU {
	if l == nil {
		l = log.NewNullLogger()
	}
	m := &MMU{
		Cart:  cart,
		Video: video,
		IRQ:   irq,
		wRAM:  NewWRAM(),
		Log:   l,
	}
	m.dma = NewDMA(m, l)

	m.init()

	return m
}

// Reset clears the working memory and the DMA register. The
// cartridge and boot ROM are left as they are.
func (m *MMU) Reset() {
	m.wRAM.Reset()
	m.dma.value = 0
}

// SetBootROM maps the boot ROM over 0x0000 - 0x00FF until it is
// disabled. A nil ROM leaves the cartridge visible.
func (m *MMU) SetBootROM(rom *boot.ROM) {
	m.bootROM = rom
	m.bootROMDone = rom == nil
}

// DisableBootROM unmaps the boot ROM.
func (m *MMU) DisableBootROM() {
	if !m.bootROMDone {
		m.Log.Debugf("mmu: boot rom disabled")
	}
	m.bootROMDone = true
}

// BootROMActive reports whether the boot ROM is mapped.
func (m *MMU) BootROMActive() bool {
	return m.bootROM != nil && !m.bootROMDone
}

func (m *MMU) readCart(address uint16) uint8 {
	// handle the boot ROM (if enabled)
	if m.BootROMActive() {
		return m.bootROM.Read(address)
	}

	return m.Cart.Read(address)
}

// Read returns the value at the given address. It handles all the memory
// banks, mirroring, I/O, etc.
func (m *MMU) Read(address uint16) uint8 {
	return m.raw[address].Read(address)
}

// Write writes the value to the given address.
func (m *MMU) Write(address uint16, value uint8) {
	m.raw[address].Write(address, value)
}

// Read16 returns the little-endian word at the given address. The
// high byte of 0xFFFF is read from 0x0000.
func (m *MMU) Read16(address uint16) uint16 {
	return uint16(m.Read(address)) | uint16(m.Read(address+1))<<8
}

// Write16 writes the value in little-endian order.
func (m *MMU) Write16(address uint16, value uint16) {
	m.Write(address, uint8(value))
	m.Write(address+1, uint8(value>>8))
}

// Range reads length bytes starting at address, wrapping at 0xFFFF.
func (m *MMU) Range(address uint16, length int) []byte {
	b := make([]byte, length)
	for i := range b {
		b[i] = m.Read(address + uint16(i))
	}
	return b
}
