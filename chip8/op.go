package chip8

import (
	"fmt"
	"strings"
)

// Instr is a CHIP-8 instruction word, fetched big-endian from memory.
type Instr uint16

// Op returns the top nibble of the instruction.
func (i Instr) Op() byte { return byte(i >> 12) }

// X returns the second nibble, usually a register index.
func (i Instr) X() byte { return byte(i>>8) & 0xf }

// Y returns the third nibble, usually a register index.
func (i Instr) Y() byte { return byte(i>>4) & 0xf }

// N returns the low nibble.
func (i Instr) N() byte { return byte(i) & 0xf }

// NN returns the low byte as an 8-bit immediate.
func (i Instr) NN() byte { return byte(i) }

// NNN returns the low 12 bits as an address.
func (i Instr) NNN() uint16 { return uint16(i) & 0xfff }

// Nibbles returns the four nibbles of the instruction, most significant first.
func (i Instr) Nibbles() (op, x, y, n byte) {
	return i.Op(), i.X(), i.Y(), i.N()
}

// Kind identifies which of the documented instructions a word encodes.
type Kind byte

const (
	Illegal Kind = iota
	Op00E0
	Op00EE
	Op1NNN
	Op2NNN
	Op3XNN
	Op4XNN
	Op5XY0
	Op6XNN
	Op7XNN
	Op8XY0
	Op8XY1
	Op8XY2
	Op8XY3
	Op8XY4
	Op8XY5
	Op8XY6
	Op8XY7
	Op8XYE
	Op9XY0
	OpANNN
	OpBNNN
	OpCXNN
	OpDXYN
	OpEX9E
	OpEXA1
	OpFX07
	OpFX0A
	OpFX15
	OpFX18
	OpFX1E
	OpFX29
	OpFX33
	OpFX55
	OpFX65
)

func (k Kind) String() string {
	if int(k) < len(kindStrings) {
		return kindStrings[k]
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

var kindStrings = strings.Fields(`
	Illegal
	00E0 00EE
	1NNN 2NNN 3XNN 4XNN 5XY0 6XNN 7XNN
	8XY0 8XY1 8XY2 8XY3 8XY4 8XY5 8XY6 8XY7 8XYE
	9XY0 ANNN BNNN CXNN DXYN
	EX9E EXA1
	FX07 FX0A FX15 FX18 FX1E FX29 FX33 FX55 FX65
`)

// simpleKinds maps top nibbles that encode exactly one instruction.
var simpleKinds = [16]Kind{
	0x1: Op1NNN,
	0x2: Op2NNN,
	0x3: Op3XNN,
	0x4: Op4XNN,
	0x6: Op6XNN,
	0x7: Op7XNN,
	0xa: OpANNN,
	0xb: OpBNNN,
	0xc: OpCXNN,
	0xd: OpDXYN,
}

// aluKinds is indexed by the low nibble of an 8XYN word.
var aluKinds = [16]Kind{
	0x0: Op8XY0,
	0x1: Op8XY1,
	0x2: Op8XY2,
	0x3: Op8XY3,
	0x4: Op8XY4,
	0x5: Op8XY5,
	0x6: Op8XY6,
	0x7: Op8XY7,
	0xe: Op8XYE,
}

// miscKinds is indexed by the low byte of an FXNN word.
var miscKinds = map[byte]Kind{
	0x07: OpFX07,
	0x0a: OpFX0A,
	0x15: OpFX15,
	0x18: OpFX18,
	0x1e: OpFX1E,
	0x29: OpFX29,
	0x33: OpFX33,
	0x55: OpFX55,
	0x65: OpFX65,
}

// Kind decodes the instruction. Words outside the instruction set
// decode to Illegal.
func (i Instr) Kind() Kind {
	switch op := i.Op(); op {
	case 0x0:
		switch i {
		case 0x00e0:
			return Op00E0
		case 0x00ee:
			return Op00EE
		}
	case 0x5:
		if i.N() == 0 {
			return Op5XY0
		}
	case 0x8:
		return aluKinds[i.N()]
	case 0x9:
		if i.N() == 0 {
			return Op9XY0
		}
	case 0xe:
		switch i.NN() {
		case 0x9e:
			return OpEX9E
		case 0xa1:
			return OpEXA1
		}
	case 0xf:
		return miscKinds[i.NN()]
	default:
		return simpleKinds[op]
	}
	return Illegal
}

// String returns the assembly mnemonic for the instruction.
func (i Instr) String() string {
	x, y := i.X(), i.Y()
	switch i.Kind() {
	case Op00E0:
		return "CLS"
	case Op00EE:
		return "RET"
	case Op1NNN:
		return fmt.Sprintf("JP $%03X", i.NNN())
	case Op2NNN:
		return fmt.Sprintf("CALL $%03X", i.NNN())
	case Op3XNN:
		return fmt.Sprintf("SE V%X, $%02X", x, i.NN())
	case Op4XNN:
		return fmt.Sprintf("SNE V%X, $%02X", x, i.NN())
	case Op5XY0:
		return fmt.Sprintf("SE V%X, V%X", x, y)
	case Op6XNN:
		return fmt.Sprintf("LD V%X, $%02X", x, i.NN())
	case Op7XNN:
		return fmt.Sprintf("ADD V%X, $%02X", x, i.NN())
	case Op8XY0:
		return fmt.Sprintf("LD V%X, V%X", x, y)
	case Op8XY1:
		return fmt.Sprintf("OR V%X, V%X", x, y)
	case Op8XY2:
		return fmt.Sprintf("AND V%X, V%X", x, y)
	case Op8XY3:
		return fmt.Sprintf("XOR V%X, V%X", x, y)
	case Op8XY4:
		return fmt.Sprintf("ADD V%X, V%X", x, y)
	case Op8XY5:
		return fmt.Sprintf("SUB V%X, V%X", x, y)
	case Op8XY6:
		return fmt.Sprintf("SHR V%X", x)
	case Op8XY7:
		return fmt.Sprintf("SUBN V%X, V%X", x, y)
	case Op8XYE:
		return fmt.Sprintf("SHL V%X", x)
	case Op9XY0:
		return fmt.Sprintf("SNE V%X, V%X", x, y)
	case OpANNN:
		return fmt.Sprintf("LD I, $%03X", i.NNN())
	case OpBNNN:
		return fmt.Sprintf("JP V0, $%03X", i.NNN())
	case OpCXNN:
		return fmt.Sprintf("RND V%X, $%02X", x, i.NN())
	case OpDXYN:
		return fmt.Sprintf("DRW V%X, V%X, $%X", x, y, i.N())
	case OpEX9E:
		return fmt.Sprintf("SKP V%X", x)
	case OpEXA1:
		return fmt.Sprintf("SKNP V%X", x)
	case OpFX07:
		return fmt.Sprintf("LD V%X, DT", x)
	case OpFX0A:
		return fmt.Sprintf("LD V%X, K", x)
	case OpFX15:
		return fmt.Sprintf("LD DT, V%X", x)
	case OpFX18:
		return fmt.Sprintf("LD ST, V%X", x)
	case OpFX1E:
		return fmt.Sprintf("ADD I, V%X", x)
	case OpFX29:
		return fmt.Sprintf("LD F, V%X", x)
	case OpFX33:
		return fmt.Sprintf("LD B, V%X", x)
	case OpFX55:
		return fmt.Sprintf("LD [I], V%X", x)
	case OpFX65:
		return fmt.Sprintf("LD V%X, [I]", x)
	}
	return fmt.Sprintf("DW $%04X", uint16(i))
}
