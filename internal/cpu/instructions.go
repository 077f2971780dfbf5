package cpu

// executeInstruction runs a decoded instruction. PC already points past
// the instruction, so control flow only has to overwrite it.
func (cpu *CPU) executeInstruction(inst *Instruction, op Operand) {
	switch inst.Opcode {
	// Load/Store Operations
	case LDAImm, LDAZp, LDAZpX, LDAAbs, LDAAbsX, LDAAbsY, LDAIndX, LDAIndY:
		cpu.A = cpu.apply(inst.Effect, cpu.memory.Read(op.Address))
	case LDXImm, LDXZp, LDXZpY, LDXAbs, LDXAbsY:
		cpu.X = cpu.apply(inst.Effect, cpu.memory.Read(op.Address))
	case LDYImm, LDYZp, LDYZpX, LDYAbs, LDYAbsX:
		cpu.Y = cpu.apply(inst.Effect, cpu.memory.Read(op.Address))
	case STAZp, STAZpX, STAAbs, STAAbsX, STAAbsY, STAIndX, STAIndY:
		cpu.memory.Write(op.Address, cpu.A)
	case STXZp, STXZpY, STXAbs:
		cpu.memory.Write(op.Address, cpu.X)
	case STYZp, STYZpX, STYAbs:
		cpu.memory.Write(op.Address, cpu.Y)

	// Arithmetic Operations
	case ADCImm, ADCZp, ADCZpX, ADCAbs, ADCAbsX, ADCAbsY, ADCIndX, ADCIndY:
		cpu.adc(cpu.memory.Read(op.Address))
	case SBCImm, SBCZp, SBCZpX, SBCAbs, SBCAbsX, SBCAbsY, SBCIndX, SBCIndY:
		cpu.sbc(cpu.memory.Read(op.Address))

	// Logical Operations
	case ANDImm, ANDZp, ANDZpX, ANDAbs, ANDAbsX, ANDAbsY, ANDIndX, ANDIndY:
		cpu.A &= cpu.memory.Read(op.Address)
		cpu.setZN(cpu.A)
	case ORAImm, ORAZp, ORAZpX, ORAAbs, ORAAbsX, ORAAbsY, ORAIndX, ORAIndY:
		cpu.A |= cpu.memory.Read(op.Address)
		cpu.setZN(cpu.A)
	case EORImm, EORZp, EORZpX, EORAbs, EORAbsX, EORAbsY, EORIndX, EORIndY:
		cpu.A ^= cpu.memory.Read(op.Address)
		cpu.setZN(cpu.A)
	case BITZp, BITAbs:
		cpu.bit(cpu.memory.Read(op.Address))

	// Shift and Rotate Operations
	case ASLAcc:
		cpu.A = cpu.asl(cpu.A)
	case ASLZp, ASLZpX, ASLAbs, ASLAbsX:
		cpu.memory.Write(op.Address, cpu.asl(cpu.memory.Read(op.Address)))
	case LSRAcc:
		cpu.A = cpu.lsr(cpu.A)
	case LSRZp, LSRZpX, LSRAbs, LSRAbsX:
		cpu.memory.Write(op.Address, cpu.lsr(cpu.memory.Read(op.Address)))
	case ROLAcc:
		cpu.A = cpu.rol(cpu.A)
	case ROLZp, ROLZpX, ROLAbs, ROLAbsX:
		cpu.memory.Write(op.Address, cpu.rol(cpu.memory.Read(op.Address)))
	case RORAcc:
		cpu.A = cpu.ror(cpu.A)
	case RORZp, RORZpX, RORAbs, RORAbsX:
		cpu.memory.Write(op.Address, cpu.ror(cpu.memory.Read(op.Address)))

	// Compare Operations
	case CMPImm, CMPZp, CMPZpX, CMPAbs, CMPAbsX, CMPAbsY, CMPIndX, CMPIndY:
		cpu.compare(cpu.A, cpu.memory.Read(op.Address))
	case CPXImm, CPXZp, CPXAbs:
		cpu.compare(cpu.X, cpu.memory.Read(op.Address))
	case CPYImm, CPYZp, CPYAbs:
		cpu.compare(cpu.Y, cpu.memory.Read(op.Address))

	// Increment/Decrement Operations
	case INCZp, INCZpX, INCAbs, INCAbsX, DECZp, DECZpX, DECAbs, DECAbsX:
		cpu.memory.Write(op.Address, cpu.apply(inst.Effect, cpu.memory.Read(op.Address)))
	case INX, DEX:
		cpu.X = cpu.apply(inst.Effect, cpu.X)
	case INY, DEY:
		cpu.Y = cpu.apply(inst.Effect, cpu.Y)

	// Transfer Operations
	case TAX:
		cpu.X = cpu.apply(inst.Effect, cpu.A)
	case TAY:
		cpu.Y = cpu.apply(inst.Effect, cpu.A)
	case TXA:
		cpu.A = cpu.apply(inst.Effect, cpu.X)
	case TYA:
		cpu.A = cpu.apply(inst.Effect, cpu.Y)
	case TSX:
		cpu.X = cpu.apply(inst.Effect, cpu.SP)
	case TXS:
		cpu.SP = cpu.apply(inst.Effect, cpu.X)

	// Stack Operations
	case PHA:
		cpu.push(cpu.A)
	case PLA:
		cpu.A = cpu.apply(inst.Effect, cpu.pop())
	case PHP:
		cpu.push(cpu.Status.Byte() | bFlagMask | rFlagMask)
	case PLP:
		cpu.Status.SetByte(cpu.pop())

	// Flag Operations
	case CLC:
		cpu.C = false
	case SEC:
		cpu.C = true
	case CLI:
		cpu.I = false
	case SEI:
		cpu.I = true
	case CLD:
		cpu.D = false
	case SED:
		cpu.D = true
	case CLV:
		cpu.V = false

	// Jump and Call Operations
	case JMPAbs, JMPInd:
		cpu.PC = op.Address
	case JSRAbs:
		cpu.pushWord(cpu.PC - 1)
		cpu.PC = op.Address
	case RTS:
		cpu.PC = cpu.popWord() + 1
	case BRK:
		cpu.brk()
	case RTI:
		cpu.Status.SetByte(cpu.pop())
		cpu.PC = cpu.popWord()

	// Branch Operations
	case BCC:
		cpu.branch(!cpu.C, op.Address)
	case BCS:
		cpu.branch(cpu.C, op.Address)
	case BEQ:
		cpu.branch(cpu.Z, op.Address)
	case BNE:
		cpu.branch(!cpu.Z, op.Address)
	case BMI:
		cpu.branch(cpu.N, op.Address)
	case BPL:
		cpu.branch(!cpu.N, op.Address)
	case BVS:
		cpu.branch(cpu.V, op.Address)
	case BVC:
		cpu.branch(!cpu.V, op.Address)

	case NOP:
		// No operation
	}
}

// apply performs a shared register effect on value and returns the result
func (cpu *CPU) apply(effect Effect, value uint8) uint8 {
	switch effect {
	case EffectLoad, EffectTransfer:
		cpu.setZN(value)
	case EffectIncrement:
		value++
		cpu.setZN(value)
	case EffectDecrement:
		value--
		cpu.setZN(value)
	}
	return value
}

// adc adds value and carry to A. In decimal mode both operands are
// treated as packed BCD and the result is adjusted nibble by nibble.
func (cpu *CPU) adc(value uint8) {
	a := cpu.A
	carry := uint16(0)
	if cpu.C {
		carry = 1
	}

	sum := uint16(a) + uint16(value) + carry
	if cpu.D {
		low := uint16(a&0x0F) + uint16(value&0x0F) + carry
		if low > 0x09 {
			sum += 0x06
		}
		cpu.C = sum > 0x99
		if cpu.C {
			sum += 0x60
		}
	} else {
		cpu.C = sum > 0xFF
	}

	result := uint8(sum)
	cpu.V = (^(a^value) & (a^result) & 0x80) != 0
	cpu.A = result
	cpu.setZN(result)
}

// sbc subtracts value and the inverted carry from A. Carry and overflow
// always come from the binary difference.
func (cpu *CPU) sbc(value uint8) {
	a := cpu.A
	borrow := 0
	if !cpu.C {
		borrow = 1
	}

	diff := int(a) - int(value) - borrow
	binary := uint8(diff)
	cpu.V = ((a^value)&(a^binary)&0x80) != 0
	cpu.C = diff >= 0

	if cpu.D {
		low := int(a&0x0F) - int(value&0x0F) - borrow
		if low < 0 {
			diff -= 0x06
		}
		if !cpu.C {
			diff -= 0x60
		}
	}

	cpu.A = uint8(diff)
	cpu.setZN(cpu.A)
}

func (cpu *CPU) compare(register, value uint8) {
	cpu.C = register >= value
	cpu.setZN(register - value)
}

func (cpu *CPU) bit(value uint8) {
	cpu.Z = (cpu.A & value) == 0
	cpu.V = (value & vFlagMask) != 0
	cpu.N = (value & nFlagMask) != 0
}

func (cpu *CPU) asl(value uint8) uint8 {
	cpu.C = (value & 0x80) != 0
	value <<= 1
	cpu.setZN(value)
	return value
}

func (cpu *CPU) lsr(value uint8) uint8 {
	cpu.C = (value & 0x01) != 0
	value >>= 1
	cpu.setZN(value)
	return value
}

func (cpu *CPU) rol(value uint8) uint8 {
	oldCarry := cpu.C
	cpu.C = (value & 0x80) != 0
	value <<= 1
	if oldCarry {
		value |= 0x01
	}
	cpu.setZN(value)
	return value
}

func (cpu *CPU) ror(value uint8) uint8 {
	oldCarry := cpu.C
	cpu.C = (value & 0x01) != 0
	value >>= 1
	if oldCarry {
		value |= 0x80
	}
	cpu.setZN(value)
	return value
}

func (cpu *CPU) branch(condition bool, target uint16) {
	if condition {
		cpu.PC = target
	}
}

// brk pushes the address two past the BRK opcode and the flags with B
// and the reserved bit set, then vectors through $FFFE
func (cpu *CPU) brk() {
	// PC has advanced past the opcode only; the padding byte is skipped
	cpu.pushWord(cpu.PC + 1)
	cpu.push(cpu.Status.Byte() | bFlagMask | rFlagMask)
	cpu.I = true
	cpu.PC = cpu.memory.ReadWord(irqVector)
}
