package cpu

// Reader is the read side of the bus, used to fetch opcodes and
// their immediates.
type Reader interface {
	Read(address uint16) uint8
}

// Opcode is a decoded instruction: the raw opcode byte, its length
// in bytes, the immediate that follows it (if any), and the x/y/z/p/q
// bit fields used to select its behaviour.
//
//	x = bits 7-6
//	y = bits 5-3
//	z = bits 2-0
//	p = y >> 1
//	q = y & 1
type Opcode struct {
	Code   uint8
	Length uint8
	// Immediate holds the byte or little-endian word following the
	// opcode. Single byte immediates leave the upper byte zero.
	Immediate uint16

	X, Y, Z, P, Q uint8
}

// Decode decomposes an opcode byte without fetching an immediate.
func Decode(code uint8) Opcode {
	y := code >> 3 & 0x7
	return Opcode{
		Code:   code,
		Length: lengths[code],
		X:      code >> 6,
		Y:      y,
		Z:      code & 0x7,
		P:      y >> 1,
		Q:      y & 1,
	}
}

// DecodeAt decodes the instruction at pc, fetching its immediate
// from the bus.
func DecodeAt(bus Reader, pc uint16) Opcode {
	op := Decode(bus.Read(pc))
	switch op.Length {
	case 2:
		op.Immediate = uint16(bus.Read(pc + 1))
	case 3:
		op.Immediate = uint16(bus.Read(pc+1)) | uint16(bus.Read(pc+2))<<8
	}
	return op
}

// Byte returns the immediate as a byte.
func (o Opcode) Byte() uint8 {
	return uint8(o.Immediate)
}

// Word returns the immediate as a word.
func (o Opcode) Word() uint16 {
	return o.Immediate
}

// Offset returns the immediate as a signed 8-bit offset.
func (o Opcode) Offset() int8 {
	return int8(o.Immediate)
}

// Prefixed reports whether the opcode is the 0xCB prefix.
func (o Opcode) Prefixed() bool {
	return o.Code == 0xCB
}

// CB decomposes the byte following the 0xCB prefix. The returned
// opcode has no immediate.
func (o Opcode) CB() Opcode {
	cb := Decode(o.Byte())
	cb.Length = 2
	return cb
}

// lengths holds the length in bytes of every opcode. 0xCB is two
// bytes long, the second byte being the prefixed opcode.
var lengths = [256]uint8{
	1, 3, 1, 1, 1, 1, 2, 1, 3, 1, 1, 1, 1, 1, 2, 1, // 0x00
	2, 3, 1, 1, 1, 1, 2, 1, 2, 1, 1, 1, 1, 1, 2, 1, // 0x10
	2, 3, 1, 1, 1, 1, 2, 1, 2, 1, 1, 1, 1, 1, 2, 1, // 0x20
	2, 3, 1, 1, 1, 1, 2, 1, 2, 1, 1, 1, 1, 1, 2, 1, // 0x30
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x40
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x50
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x60
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x70
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x80
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x90
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0xA0
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0xB0
	1, 1, 3, 3, 3, 1, 2, 1, 1, 1, 3, 2, 3, 3, 2, 1, // 0xC0
	1, 1, 3, 1, 3, 1, 2, 1, 1, 1, 3, 1, 3, 1, 2, 1, // 0xD0
	2, 1, 1, 1, 1, 1, 2, 1, 2, 1, 3, 1, 1, 1, 2, 1, // 0xE0
	2, 1, 1, 1, 1, 1, 2, 1, 2, 1, 3, 1, 1, 1, 2, 1, // 0xF0
}
