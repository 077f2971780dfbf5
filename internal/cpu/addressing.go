package cpu

// Operand is the decoded operand of the instruction at PC
type Operand struct {
	Byte    uint8  // byte at PC+1
	Word    uint16 // little-endian word at PC+1
	Address uint16 // effective address
	Size    uint8  // total instruction length in bytes
}

// InstructionSize returns the encoded length of an instruction using mode
func InstructionSize(mode AddressingMode) uint8 {
	switch mode {
	case Implied, Accumulator:
		return 1
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 3
	default:
		return 2
	}
}

// resolveOperand decodes the operand of the instruction whose opcode is at
// PC. The operand bytes are always read, even for one-byte instructions.
func (cpu *CPU) resolveOperand(mode AddressingMode) Operand {
	op := Operand{
		Byte: cpu.memory.Read(cpu.PC + 1),
		Word: cpu.memory.ReadWord(cpu.PC + 1),
		Size: InstructionSize(mode),
	}

	switch mode {
	case Immediate:
		op.Address = cpu.PC + 1

	case ZeroPage:
		op.Address = uint16(op.Byte)

	case ZeroPageX:
		op.Address = uint16(op.Byte + cpu.X)

	case ZeroPageY:
		op.Address = uint16(op.Byte + cpu.Y)

	case Absolute:
		op.Address = op.Word

	case AbsoluteX:
		op.Address = op.Word + uint16(cpu.X)

	case AbsoluteY:
		op.Address = op.Word + uint16(cpu.Y)

	case Indirect:
		op.Address = cpu.memory.ReadWord(op.Word)

	case IndexedIndirect:
		op.Address = cpu.zeroPageWord(op.Byte + cpu.X)

	case IndirectIndexed:
		op.Address = cpu.zeroPageWord(op.Byte) + uint16(cpu.Y)

	case Relative:
		op.Address = cpu.PC + uint16(op.Size) + uint16(int8(op.Byte))
	}

	return op
}

// zeroPageWord reads a pointer from the zero page; the high byte wraps
// to $00 when the pointer sits at $FF
func (cpu *CPU) zeroPageWord(address uint8) uint16 {
	low := cpu.memory.Read(uint16(address))
	high := cpu.memory.Read(uint16(address + 1))
	return uint16(high)<<8 | uint16(low)
}
