package cpu

import (
	"fmt"
	"strings"
)

// MemoryReader is the read side of MemoryInterface, enough to disassemble
type MemoryReader interface {
	Read(address uint16) uint8
}

// DisassembledLine is one decoded instruction
type DisassembledLine struct {
	Address  uint16
	Bytes    []uint8
	HexBytes string
	Mnemonic string
	Size     int
}

// String formats the line as "1000  A2 22     LDX #$22"
func (l DisassembledLine) String() string {
	return fmt.Sprintf("%04X  %-8s  %s", l.Address, l.HexBytes, l.Mnemonic)
}

// Disassemble decodes the instruction at address. Relative branch targets
// are shown as absolute addresses; illegal opcodes become ".db $xx".
func Disassemble(mem MemoryReader, address uint16) DisassembledLine {
	op := mem.Read(address)
	inst := Lookup(op)
	size := int(inst.Bytes)

	data := make([]uint8, size)
	hexParts := make([]string, size)
	for i := range data {
		data[i] = mem.Read(address + uint16(i))
		hexParts[i] = fmt.Sprintf("%02X", data[i])
	}

	var byteOperand uint8
	var wordOperand uint16
	if size >= 2 {
		byteOperand = data[1]
		wordOperand = uint16(data[1])
	}
	if size >= 3 {
		wordOperand |= uint16(data[2]) << 8
	}

	var mnemonic string
	if inst.Illegal {
		mnemonic = fmt.Sprintf(".db $%02X", op)
	} else {
		switch inst.Mode {
		case Implied:
			mnemonic = inst.Name
		case Accumulator:
			mnemonic = inst.Name + " A"
		case Immediate:
			mnemonic = fmt.Sprintf("%s #$%02X", inst.Name, byteOperand)
		case ZeroPage:
			mnemonic = fmt.Sprintf("%s $%02X", inst.Name, byteOperand)
		case ZeroPageX:
			mnemonic = fmt.Sprintf("%s $%02X,X", inst.Name, byteOperand)
		case ZeroPageY:
			mnemonic = fmt.Sprintf("%s $%02X,Y", inst.Name, byteOperand)
		case Absolute:
			mnemonic = fmt.Sprintf("%s $%04X", inst.Name, wordOperand)
		case AbsoluteX:
			mnemonic = fmt.Sprintf("%s $%04X,X", inst.Name, wordOperand)
		case AbsoluteY:
			mnemonic = fmt.Sprintf("%s $%04X,Y", inst.Name, wordOperand)
		case Indirect:
			mnemonic = fmt.Sprintf("%s ($%04X)", inst.Name, wordOperand)
		case IndexedIndirect:
			mnemonic = fmt.Sprintf("%s ($%02X,X)", inst.Name, byteOperand)
		case IndirectIndexed:
			mnemonic = fmt.Sprintf("%s ($%02X),Y", inst.Name, byteOperand)
		case Relative:
			target := address + 2 + uint16(int8(byteOperand))
			mnemonic = fmt.Sprintf("%s $%04X", inst.Name, target)
		default:
			mnemonic = inst.Name
		}
	}

	return DisassembledLine{
		Address:  address,
		Bytes:    data,
		HexBytes: strings.Join(hexParts, " "),
		Mnemonic: mnemonic,
		Size:     size,
	}
}

// DisassembleRange decodes count consecutive instructions from address
func DisassembleRange(mem MemoryReader, address uint16, count int) []DisassembledLine {
	lines := make([]DisassembledLine, 0, count)
	for i := 0; i < count; i++ {
		line := Disassemble(mem, address)
		lines = append(lines, line)
		address += uint16(line.Size)
	}
	return lines
}
