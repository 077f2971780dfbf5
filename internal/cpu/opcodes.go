package cpu

import "fmt"

// AddressingMode selects how an instruction finds its operand
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

var modeNames = [...]string{
	Implied:         "Implied",
	Accumulator:     "Accumulator",
	Immediate:       "Immediate",
	ZeroPage:        "ZeroPage",
	ZeroPageX:       "ZeroPageX",
	ZeroPageY:       "ZeroPageY",
	Relative:        "Relative",
	Absolute:        "Absolute",
	AbsoluteX:       "AbsoluteX",
	AbsoluteY:       "AbsoluteY",
	Indirect:        "Indirect",
	IndexedIndirect: "IndexedIndirect",
	IndirectIndexed: "IndirectIndexed",
}

func (m AddressingMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("AddressingMode(%d)", int(m))
	}
	return modeNames[m]
}

// Effect is the register effect shared by several instructions.
// Load, increment, decrement and transfer all end by updating Z and N.
type Effect int

const (
	EffectNone Effect = iota
	EffectLoad
	EffectIncrement
	EffectDecrement
	EffectTransfer
)

// Instruction describes one opcode
type Instruction struct {
	Name    string
	Opcode  uint8
	Bytes   uint8
	Mode    AddressingMode
	Effect  Effect
	Illegal bool
}

// Opcode values of the legal instruction set
const (
	ADCImm  uint8 = 0x69
	ADCZp   uint8 = 0x65
	ADCZpX  uint8 = 0x75
	ADCAbs  uint8 = 0x6D
	ADCAbsX uint8 = 0x7D
	ADCAbsY uint8 = 0x79
	ADCIndX uint8 = 0x61
	ADCIndY uint8 = 0x71

	ANDImm  uint8 = 0x29
	ANDZp   uint8 = 0x25
	ANDZpX  uint8 = 0x35
	ANDAbs  uint8 = 0x2D
	ANDAbsX uint8 = 0x3D
	ANDAbsY uint8 = 0x39
	ANDIndX uint8 = 0x21
	ANDIndY uint8 = 0x31

	ASLAcc  uint8 = 0x0A
	ASLZp   uint8 = 0x06
	ASLZpX  uint8 = 0x16
	ASLAbs  uint8 = 0x0E
	ASLAbsX uint8 = 0x1E

	BCC uint8 = 0x90
	BCS uint8 = 0xB0
	BEQ uint8 = 0xF0
	BMI uint8 = 0x30
	BNE uint8 = 0xD0
	BPL uint8 = 0x10
	BVC uint8 = 0x50
	BVS uint8 = 0x70

	BITZp  uint8 = 0x24
	BITAbs uint8 = 0x2C

	BRK uint8 = 0x00

	CLC uint8 = 0x18
	CLD uint8 = 0xD8
	CLI uint8 = 0x58
	CLV uint8 = 0xB8

	CMPImm  uint8 = 0xC9
	CMPZp   uint8 = 0xC5
	CMPZpX  uint8 = 0xD5
	CMPAbs  uint8 = 0xCD
	CMPAbsX uint8 = 0xDD
	CMPAbsY uint8 = 0xD9
	CMPIndX uint8 = 0xC1
	CMPIndY uint8 = 0xD1

	CPXImm uint8 = 0xE0
	CPXZp  uint8 = 0xE4
	CPXAbs uint8 = 0xEC
	CPYImm uint8 = 0xC0
	CPYZp  uint8 = 0xC4
	CPYAbs uint8 = 0xCC

	DECZp   uint8 = 0xC6
	DECZpX  uint8 = 0xD6
	DECAbs  uint8 = 0xCE
	DECAbsX uint8 = 0xDE
	DEX     uint8 = 0xCA
	DEY     uint8 = 0x88

	EORImm  uint8 = 0x49
	EORZp   uint8 = 0x45
	EORZpX  uint8 = 0x55
	EORAbs  uint8 = 0x4D
	EORAbsX uint8 = 0x5D
	EORAbsY uint8 = 0x59
	EORIndX uint8 = 0x41
	EORIndY uint8 = 0x51

	INCZp   uint8 = 0xE6
	INCZpX  uint8 = 0xF6
	INCAbs  uint8 = 0xEE
	INCAbsX uint8 = 0xFE
	INX     uint8 = 0xE8
	INY     uint8 = 0xC8

	JMPAbs uint8 = 0x4C
	JMPInd uint8 = 0x6C
	JSRAbs uint8 = 0x20

	LDAImm  uint8 = 0xA9
	LDAZp   uint8 = 0xA5
	LDAZpX  uint8 = 0xB5
	LDAAbs  uint8 = 0xAD
	LDAAbsX uint8 = 0xBD
	LDAAbsY uint8 = 0xB9
	LDAIndX uint8 = 0xA1
	LDAIndY uint8 = 0xB1

	LDXImm  uint8 = 0xA2
	LDXZp   uint8 = 0xA6
	LDXZpY  uint8 = 0xB6
	LDXAbs  uint8 = 0xAE
	LDXAbsY uint8 = 0xBE

	LDYImm  uint8 = 0xA0
	LDYZp   uint8 = 0xA4
	LDYZpX  uint8 = 0xB4
	LDYAbs  uint8 = 0xAC
	LDYAbsX uint8 = 0xBC

	LSRAcc  uint8 = 0x4A
	LSRZp   uint8 = 0x46
	LSRZpX  uint8 = 0x56
	LSRAbs  uint8 = 0x4E
	LSRAbsX uint8 = 0x5E

	NOP uint8 = 0xEA

	ORAImm  uint8 = 0x09
	ORAZp   uint8 = 0x05
	ORAZpX  uint8 = 0x15
	ORAAbs  uint8 = 0x0D
	ORAAbsX uint8 = 0x1D
	ORAAbsY uint8 = 0x19
	ORAIndX uint8 = 0x01
	ORAIndY uint8 = 0x11

	PHA uint8 = 0x48
	PHP uint8 = 0x08
	PLA uint8 = 0x68
	PLP uint8 = 0x28

	ROLAcc  uint8 = 0x2A
	ROLZp   uint8 = 0x26
	ROLZpX  uint8 = 0x36
	ROLAbs  uint8 = 0x2E
	ROLAbsX uint8 = 0x3E

	RORAcc  uint8 = 0x6A
	RORZp   uint8 = 0x66
	RORZpX  uint8 = 0x76
	RORAbs  uint8 = 0x6E
	RORAbsX uint8 = 0x7E

	RTI uint8 = 0x40
	RTS uint8 = 0x60

	SBCImm  uint8 = 0xE9
	SBCZp   uint8 = 0xE5
	SBCZpX  uint8 = 0xF5
	SBCAbs  uint8 = 0xED
	SBCAbsX uint8 = 0xFD
	SBCAbsY uint8 = 0xF9
	SBCIndX uint8 = 0xE1
	SBCIndY uint8 = 0xF1

	SEC uint8 = 0x38
	SED uint8 = 0xF8
	SEI uint8 = 0x78

	STAZp   uint8 = 0x85
	STAZpX  uint8 = 0x95
	STAAbs  uint8 = 0x8D
	STAAbsX uint8 = 0x9D
	STAAbsY uint8 = 0x99
	STAIndX uint8 = 0x81
	STAIndY uint8 = 0x91

	STXZp  uint8 = 0x86
	STXZpY uint8 = 0x96
	STXAbs uint8 = 0x8E
	STYZp  uint8 = 0x84
	STYZpX uint8 = 0x94
	STYAbs uint8 = 0x8C

	TAX uint8 = 0xAA
	TAY uint8 = 0xA8
	TSX uint8 = 0xBA
	TXA uint8 = 0x8A
	TXS uint8 = 0x9A
	TYA uint8 = 0x98
)

// Illegal is returned by Lookup for every unassigned opcode value.
// Executing it halts the CPU.
var Illegal = &Instruction{Name: "???", Bytes: 1, Mode: Implied, Illegal: true}

// legalInstructions lists every documented opcode. TXS deliberately has
// no effect: it is the one transfer that leaves Z and N alone.
var legalInstructions = []Instruction{
	{Name: "ADC", Opcode: ADCImm, Mode: Immediate},
	{Name: "ADC", Opcode: ADCZp, Mode: ZeroPage},
	{Name: "ADC", Opcode: ADCZpX, Mode: ZeroPageX},
	{Name: "ADC", Opcode: ADCAbs, Mode: Absolute},
	{Name: "ADC", Opcode: ADCAbsX, Mode: AbsoluteX},
	{Name: "ADC", Opcode: ADCAbsY, Mode: AbsoluteY},
	{Name: "ADC", Opcode: ADCIndX, Mode: IndexedIndirect},
	{Name: "ADC", Opcode: ADCIndY, Mode: IndirectIndexed},

	{Name: "AND", Opcode: ANDImm, Mode: Immediate},
	{Name: "AND", Opcode: ANDZp, Mode: ZeroPage},
	{Name: "AND", Opcode: ANDZpX, Mode: ZeroPageX},
	{Name: "AND", Opcode: ANDAbs, Mode: Absolute},
	{Name: "AND", Opcode: ANDAbsX, Mode: AbsoluteX},
	{Name: "AND", Opcode: ANDAbsY, Mode: AbsoluteY},
	{Name: "AND", Opcode: ANDIndX, Mode: IndexedIndirect},
	{Name: "AND", Opcode: ANDIndY, Mode: IndirectIndexed},

	{Name: "ASL", Opcode: ASLAcc, Mode: Accumulator},
	{Name: "ASL", Opcode: ASLZp, Mode: ZeroPage},
	{Name: "ASL", Opcode: ASLZpX, Mode: ZeroPageX},
	{Name: "ASL", Opcode: ASLAbs, Mode: Absolute},
	{Name: "ASL", Opcode: ASLAbsX, Mode: AbsoluteX},

	{Name: "BCC", Opcode: BCC, Mode: Relative},
	{Name: "BCS", Opcode: BCS, Mode: Relative},
	{Name: "BEQ", Opcode: BEQ, Mode: Relative},
	{Name: "BMI", Opcode: BMI, Mode: Relative},
	{Name: "BNE", Opcode: BNE, Mode: Relative},
	{Name: "BPL", Opcode: BPL, Mode: Relative},
	{Name: "BVC", Opcode: BVC, Mode: Relative},
	{Name: "BVS", Opcode: BVS, Mode: Relative},

	{Name: "BIT", Opcode: BITZp, Mode: ZeroPage},
	{Name: "BIT", Opcode: BITAbs, Mode: Absolute},

	{Name: "BRK", Opcode: BRK, Mode: Implied},

	{Name: "CLC", Opcode: CLC, Mode: Implied},
	{Name: "CLD", Opcode: CLD, Mode: Implied},
	{Name: "CLI", Opcode: CLI, Mode: Implied},
	{Name: "CLV", Opcode: CLV, Mode: Implied},

	{Name: "CMP", Opcode: CMPImm, Mode: Immediate},
	{Name: "CMP", Opcode: CMPZp, Mode: ZeroPage},
	{Name: "CMP", Opcode: CMPZpX, Mode: ZeroPageX},
	{Name: "CMP", Opcode: CMPAbs, Mode: Absolute},
	{Name: "CMP", Opcode: CMPAbsX, Mode: AbsoluteX},
	{Name: "CMP", Opcode: CMPAbsY, Mode: AbsoluteY},
	{Name: "CMP", Opcode: CMPIndX, Mode: IndexedIndirect},
	{Name: "CMP", Opcode: CMPIndY, Mode: IndirectIndexed},

	{Name: "CPX", Opcode: CPXImm, Mode: Immediate},
	{Name: "CPX", Opcode: CPXZp, Mode: ZeroPage},
	{Name: "CPX", Opcode: CPXAbs, Mode: Absolute},
	{Name: "CPY", Opcode: CPYImm, Mode: Immediate},
	{Name: "CPY", Opcode: CPYZp, Mode: ZeroPage},
	{Name: "CPY", Opcode: CPYAbs, Mode: Absolute},

	{Name: "DEC", Opcode: DECZp, Mode: ZeroPage, Effect: EffectDecrement},
	{Name: "DEC", Opcode: DECZpX, Mode: ZeroPageX, Effect: EffectDecrement},
	{Name: "DEC", Opcode: DECAbs, Mode: Absolute, Effect: EffectDecrement},
	{Name: "DEC", Opcode: DECAbsX, Mode: AbsoluteX, Effect: EffectDecrement},
	{Name: "DEX", Opcode: DEX, Mode: Implied, Effect: EffectDecrement},
	{Name: "DEY", Opcode: DEY, Mode: Implied, Effect: EffectDecrement},

	{Name: "EOR", Opcode: EORImm, Mode: Immediate},
	{Name: "EOR", Opcode: EORZp, Mode: ZeroPage},
	{Name: "EOR", Opcode: EORZpX, Mode: ZeroPageX},
	{Name: "EOR", Opcode: EORAbs, Mode: Absolute},
	{Name: "EOR", Opcode: EORAbsX, Mode: AbsoluteX},
	{Name: "EOR", Opcode: EORAbsY, Mode: AbsoluteY},
	{Name: "EOR", Opcode: EORIndX, Mode: IndexedIndirect},
	{Name: "EOR", Opcode: EORIndY, Mode: IndirectIndexed},

	{Name: "INC", Opcode: INCZp, Mode: ZeroPage, Effect: EffectIncrement},
	{Name: "INC", Opcode: INCZpX, Mode: ZeroPageX, Effect: EffectIncrement},
	{Name: "INC", Opcode: INCAbs, Mode: Absolute, Effect: EffectIncrement},
	{Name: "INC", Opcode: INCAbsX, Mode: AbsoluteX, Effect: EffectIncrement},
	{Name: "INX", Opcode: INX, Mode: Implied, Effect: EffectIncrement},
	{Name: "INY", Opcode: INY, Mode: Implied, Effect: EffectIncrement},

	{Name: "JMP", Opcode: JMPAbs, Mode: Absolute},
	{Name: "JMP", Opcode: JMPInd, Mode: Indirect},
	{Name: "JSR", Opcode: JSRAbs, Mode: Absolute},

	{Name: "LDA", Opcode: LDAImm, Mode: Immediate, Effect: EffectLoad},
	{Name: "LDA", Opcode: LDAZp, Mode: ZeroPage, Effect: EffectLoad},
	{Name: "LDA", Opcode: LDAZpX, Mode: ZeroPageX, Effect: EffectLoad},
	{Name: "LDA", Opcode: LDAAbs, Mode: Absolute, Effect: EffectLoad},
	{Name: "LDA", Opcode: LDAAbsX, Mode: AbsoluteX, Effect: EffectLoad},
	{Name: "LDA", Opcode: LDAAbsY, Mode: AbsoluteY, Effect: EffectLoad},
	{Name: "LDA", Opcode: LDAIndX, Mode: IndexedIndirect, Effect: EffectLoad},
	{Name: "LDA", Opcode: LDAIndY, Mode: IndirectIndexed, Effect: EffectLoad},

	{Name: "LDX", Opcode: LDXImm, Mode: Immediate, Effect: EffectLoad},
	{Name: "LDX", Opcode: LDXZp, Mode: ZeroPage, Effect: EffectLoad},
	{Name: "LDX", Opcode: LDXZpY, Mode: ZeroPageY, Effect: EffectLoad},
	{Name: "LDX", Opcode: LDXAbs, Mode: Absolute, Effect: EffectLoad},
	{Name: "LDX", Opcode: LDXAbsY, Mode: AbsoluteY, Effect: EffectLoad},

	{Name: "LDY", Opcode: LDYImm, Mode: Immediate, Effect: EffectLoad},
	{Name: "LDY", Opcode: LDYZp, Mode: ZeroPage, Effect: EffectLoad},
	{Name: "LDY", Opcode: LDYZpX, Mode: ZeroPageX, Effect: EffectLoad},
	{Name: "LDY", Opcode: LDYAbs, Mode: Absolute, Effect: EffectLoad},
	{Name: "LDY", Opcode: LDYAbsX, Mode: AbsoluteX, Effect: EffectLoad},

	{Name: "LSR", Opcode: LSRAcc, Mode: Accumulator},
	{Name: "LSR", Opcode: LSRZp, Mode: ZeroPage},
	{Name: "LSR", Opcode: LSRZpX, Mode: ZeroPageX},
	{Name: "LSR", Opcode: LSRAbs, Mode: Absolute},
	{Name: "LSR", Opcode: LSRAbsX, Mode: AbsoluteX},

	{Name: "NOP", Opcode: NOP, Mode: Implied},

	{Name: "ORA", Opcode: ORAImm, Mode: Immediate},
	{Name: "ORA", Opcode: ORAZp, Mode: ZeroPage},
	{Name: "ORA", Opcode: ORAZpX, Mode: ZeroPageX},
	{Name: "ORA", Opcode: ORAAbs, Mode: Absolute},
	{Name: "ORA", Opcode: ORAAbsX, Mode: AbsoluteX},
	{Name: "ORA", Opcode: ORAAbsY, Mode: AbsoluteY},
	{Name: "ORA", Opcode: ORAIndX, Mode: IndexedIndirect},
	{Name: "ORA", Opcode: ORAIndY, Mode: IndirectIndexed},

	{Name: "PHA", Opcode: PHA, Mode: Implied},
	{Name: "PHP", Opcode: PHP, Mode: Implied},
	{Name: "PLA", Opcode: PLA, Mode: Implied, Effect: EffectLoad},
	{Name: "PLP", Opcode: PLP, Mode: Implied},

	{Name: "ROL", Opcode: ROLAcc, Mode: Accumulator},
	{Name: "ROL", Opcode: ROLZp, Mode: ZeroPage},
	{Name: "ROL", Opcode: ROLZpX, Mode: ZeroPageX},
	{Name: "ROL", Opcode: ROLAbs, Mode: Absolute},
	{Name: "ROL", Opcode: ROLAbsX, Mode: AbsoluteX},

	{Name: "ROR", Opcode: RORAcc, Mode: Accumulator},
	{Name: "ROR", Opcode: RORZp, Mode: ZeroPage},
	{Name: "ROR", Opcode: RORZpX, Mode: ZeroPageX},
	{Name: "ROR", Opcode: RORAbs, Mode: Absolute},
	{Name: "ROR", Opcode: RORAbsX, Mode: AbsoluteX},

	{Name: "RTI", Opcode: RTI, Mode: Implied},
	{Name: "RTS", Opcode: RTS, Mode: Implied},

	{Name: "SBC", Opcode: SBCImm, Mode: Immediate},
	{Name: "SBC", Opcode: SBCZp, Mode: ZeroPage},
	{Name: "SBC", Opcode: SBCZpX, Mode: ZeroPageX},
	{Name: "SBC", Opcode: SBCAbs, Mode: Absolute},
	{Name: "SBC", Opcode: SBCAbsX, Mode: AbsoluteX},
	{Name: "SBC", Opcode: SBCAbsY, Mode: AbsoluteY},
	{Name: "SBC", Opcode: SBCIndX, Mode: IndexedIndirect},
	{Name: "SBC", Opcode: SBCIndY, Mode: IndirectIndexed},

	{Name: "SEC", Opcode: SEC, Mode: Implied},
	{Name: "SED", Opcode: SED, Mode: Implied},
	{Name: "SEI", Opcode: SEI, Mode: Implied},

	{Name: "STA", Opcode: STAZp, Mode: ZeroPage},
	{Name: "STA", Opcode: STAZpX, Mode: ZeroPageX},
	{Name: "STA", Opcode: STAAbs, Mode: Absolute},
	{Name: "STA", Opcode: STAAbsX, Mode: AbsoluteX},
	{Name: "STA", Opcode: STAAbsY, Mode: AbsoluteY},
	{Name: "STA", Opcode: STAIndX, Mode: IndexedIndirect},
	{Name: "STA", Opcode: STAIndY, Mode: IndirectIndexed},

	{Name: "STX", Opcode: STXZp, Mode: ZeroPage},
	{Name: "STX", Opcode: STXZpY, Mode: ZeroPageY},
	{Name: "STX", Opcode: STXAbs, Mode: Absolute},
	{Name: "STY", Opcode: STYZp, Mode: ZeroPage},
	{Name: "STY", Opcode: STYZpX, Mode: ZeroPageX},
	{Name: "STY", Opcode: STYAbs, Mode: Absolute},

	{Name: "TAX", Opcode: TAX, Mode: Implied, Effect: EffectTransfer},
	{Name: "TAY", Opcode: TAY, Mode: Implied, Effect: EffectTransfer},
	{Name: "TSX", Opcode: TSX, Mode: Implied, Effect: EffectTransfer},
	{Name: "TXA", Opcode: TXA, Mode: Implied, Effect: EffectTransfer},
	{Name: "TXS", Opcode: TXS, Mode: Implied},
	{Name: "TYA", Opcode: TYA, Mode: Implied, Effect: EffectTransfer},
}

// instructions is the decode table, immutable once init has run
var instructions = buildInstructionTable(legalInstructions)

// buildInstructionTable places each descriptor at its opcode and fills
// the remaining slots with Illegal. Assigning an opcode twice is a
// programming error and panics.
func buildInstructionTable(list []Instruction) [256]*Instruction {
	var table [256]*Instruction
	for i := range list {
		inst := list[i]
		if table[inst.Opcode] != nil {
			panic(fmt.Sprintf("cpu: opcode $%02X assigned twice (%s and %s)",
				inst.Opcode, table[inst.Opcode].Name, inst.Name))
		}
		inst.Bytes = InstructionSize(inst.Mode)
		table[inst.Opcode] = &inst
	}
	for i := range table {
		if table[i] == nil {
			table[i] = Illegal
		}
	}
	return table
}

// Lookup returns the descriptor for an opcode; never nil
func Lookup(opcode uint8) *Instruction {
	return instructions[opcode]
}

// LegalOpcodeCount returns the number of documented opcodes in the table
func LegalOpcodeCount() int {
	count := 0
	for _, inst := range instructions {
		if !inst.Illegal {
			count++
		}
	}
	return count
}
