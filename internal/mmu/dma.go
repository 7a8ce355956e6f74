package mmu

import (
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

// DMALength is the number of bytes copied by a single transfer.
const DMALength = 0x9F

// DMA is the OAM DMA controller. Writing a value v to types.DMA
// copies DMALength bytes from v*0x100 to types.OAM through the bus.
// The transfer completes within the write.
type DMA struct {
	value uint8

	bus IOBus
	log log.Logger
}

// NewDMA returns a DMA controller transferring over bus.
func NewDMA(bus IOBus, l log.Logger) *DMA {
	return &DMA{
		bus: bus,
		log: l,
	}
}

// Read returns the last value written to the register.
func (d *DMA) Read(uint16) uint8 {
	return d.value
}

// Write stores the value and performs the transfer, in increasing
// address order.
func (d *DMA) Write(_ uint16, v uint8) {
	d.value = v
	source := uint16(v) << 8

	for i := uint16(0); i < DMALength; i++ {
		d.bus.Write(types.OAM+i, d.bus.Read(source+i))
	}

	d.log.Debugf("mmu: dma 0x%04X -> 0x%04X (%d bytes)", source, types.OAM, DMALength)
}
