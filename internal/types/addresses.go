// Package types holds the small set of definitions shared by every
// component of the core: memory routing entries, hardware register
// addresses and bit masks.
package types

// Address represents a routed location in the 64KiB address space.
// Every address of the bus resolves to exactly one Address, which
// decides where reads come from and where writes go.
type Address struct {
	// Read is called when the CPU reads from the address.
	Read func(address uint16) uint8
	// Write is called when the CPU writes to the address.
	Write func(address uint16, value uint8)
}

// HardwareAddress represents the address of a memory-mapped hardware
// register. The hardware registers live in 0xFF00 - 0xFF7F & 0xFFFF.
type HardwareAddress = uint16

const (
	// IF is the address of the interrupt flag register. Each of the
	// lower 5 bits represents a pending interrupt request.
	//
	//  Bit 0: V-Blank Interrupt Request (INT 40h)  (1=Request)
	//  Bit 1: LCD STAT Interrupt Request (INT 48h) (1=Request)
	//  Bit 2: Timer Interrupt Request (INT 50h)    (1=Request)
	//  Bit 3: Serial Interrupt Request (INT 58h)   (1=Request)
	//  Bit 4: Joypad Interrupt Request (INT 60h)   (1=Request)
	IF HardwareAddress = 0xFF0F
	// LCDC is the address of the LCD control register.
	//
	//  Bit 7: LCD Enable             (0=Off, 1=On)
	//  Bit 6: Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
	//  Bit 5: Window Display Enable          (0=Off, 1=On)
	//  Bit 4: BG & Window Tile Data Select   (0=8800-97FF, 1=8000-8FFF)
	//  Bit 3: BG Tile Map Display Select     (0=9800-9BFF, 1=9C00-9FFF)
	//  Bit 2: OBJ (Sprite) Size              (0=8x8, 1=8x16)
	//  Bit 1: OBJ (Sprite) Display Enable    (0=Off, 1=On)
	//  Bit 0: BG Display                     (0=Off, 1=On)
	LCDC HardwareAddress = 0xFF40
	// STAT is the address of the LCD status register.
	//
	//  Bit 6: LYC=LY Coincidence Interrupt (1=Enable) (Read/Write)
	//  Bit 5: mode 2 OAM Interrupt         (1=Enable) (Read/Write)
	//  Bit 4: mode 1 V-Blank Interrupt     (1=Enable) (Read/Write)
	//  Bit 3: mode 0 H-Blank Interrupt     (1=Enable) (Read/Write)
	//  Bit 2: Coincidence Flag  (0:LYC<>LY, 1:LYC=LY) (Read Only)
	//  Bit 1-0: mode Flag       (mode 0-3)            (Read Only)
	STAT HardwareAddress = 0xFF41
	// SCY is the address of the background scroll Y register.
	SCY HardwareAddress = 0xFF42
	// SCX is the address of the background scroll X register.
	SCX HardwareAddress = 0xFF43
	// LY is the address of the current scanline register. Reading
	// returns the scanline being processed (0-153), and writing any
	// value resets it to 0.
	LY HardwareAddress = 0xFF44
	// LYC is the address of the scanline compare register.
	LYC HardwareAddress = 0xFF45
	// DMA is the address of the OAM DMA trigger register. Writing a
	// value copies a block of memory from value*0x100 into OAM.
	DMA HardwareAddress = 0xFF46
	// BDIS is the address of the boot ROM disable register. Any write
	// unmaps the boot ROM, exposing the cartridge at 0x0000 - 0x00FF.
	BDIS HardwareAddress = 0xFF50
	// IE is the address of the interrupt enable register, with the
	// same bit layout as IF.
	IE HardwareAddress = 0xFFFF
)

// OAM is the start of the sprite attribute table, the destination of
// every DMA transfer.
const OAM = 0xFE00
