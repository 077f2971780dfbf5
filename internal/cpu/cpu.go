// Package cpu implements the MOS 6502 processor: opcode decoding, operand
// resolution, instruction execution, breakpoints and tracing.
package cpu

import (
	"log"
	"os"
)

// CPU constants
const (
	// Stack base address
	stackBase = 0x0100
	// Interrupt vectors
	irqVector   = 0xFFFE
	resetVector = 0xFFFC
	// Stack pointer after reset, stack top at $01FF
	resetSP = 0xFF
)

// MemoryInterface defines the interface for CPU memory access
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	ReadWord(address uint16) uint16
	WriteWord(address uint16, value uint16)
}

// Registers is a snapshot of the register file
type Registers struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16
	P  uint8
}

// CPU represents the 6502 processor
type CPU struct {
	// Registers
	A  uint8  // Accumulator
	X  uint8  // X register
	Y  uint8  // Y register
	SP uint8  // Stack pointer, offset into page $01
	PC uint16 // Program counter

	// Status register flags
	Status

	memory MemoryInterface

	halted           bool
	instructionCount uint64
	lastRunCount     int

	breakpoints breakpoints

	// Trace and loop detection
	logger              *log.Logger
	tracer              *log.Logger
	traceAddress        uint16
	traceArmed          bool
	traceActive         bool
	enableLoopDetection bool
	lastPC              uint16
	pcStayCount         int
}

// New creates a new CPU attached to memory. Call Reset before stepping.
func New(memory MemoryInterface) *CPU {
	return &CPU{
		memory: memory,
		SP:     resetSP,
		logger: log.New(os.Stderr, "", log.LstdFlags),
	}
}

// Reset zeroes A, X, Y and every flag, sets SP to $FF and loads PC from
// the reset vector
func (cpu *CPU) Reset() {
	cpu.ResetTo(cpu.memory.ReadWord(resetVector))
}

// ResetTo performs Reset but starts execution at address instead of the
// reset vector
func (cpu *CPU) ResetTo(address uint16) {
	cpu.A = 0x00
	cpu.X = 0x00
	cpu.Y = 0x00
	cpu.SP = resetSP
	cpu.Status = Status{}
	cpu.PC = address

	cpu.halted = false
	cpu.instructionCount = 0
	cpu.lastRunCount = 0
	cpu.traceActive = false
	cpu.lastPC = 0
	cpu.pcStayCount = 0
}

// Step executes one instruction. It returns false without changing any
// state when the CPU is halted or the opcode at PC is illegal; the latter
// also halts the CPU.
func (cpu *CPU) Step() bool {
	if cpu.halted {
		return false
	}

	currentPC := cpu.PC
	opcode := cpu.memory.Read(currentPC)
	instruction := Lookup(opcode)

	if cpu.enableLoopDetection {
		cpu.detectInfiniteLoop(currentPC, opcode)
	}

	if instruction.Illegal {
		cpu.halted = true
		cpu.logger.Printf("[CPU] illegal opcode $%02X at $%04X, halting", opcode, currentPC)
		return false
	}

	// Disassemble before executing so the line shows the operands as fetched
	var line DisassembledLine
	tracing := cpu.tracing(currentPC)
	if tracing {
		line = Disassemble(cpu.memory, currentPC)
	}

	op := cpu.resolveOperand(instruction.Mode)
	cpu.PC += uint16(op.Size)
	cpu.executeInstruction(instruction, op)
	cpu.instructionCount++

	if tracing {
		cpu.traceInstruction(line)
	}
	return true
}

// Run steps until max instructions have executed, the CPU halts or a
// breakpoint matches. A negative max means no limit.
func (cpu *CPU) Run(max int) StopReason {
	cpu.lastRunCount = 0
	for max < 0 || cpu.lastRunCount < max {
		if !cpu.Step() {
			return StopHalted
		}
		cpu.lastRunCount++
		if cpu.breakpoints.matches(cpu) {
			return StopBreakpoint
		}
	}
	return StopBudget
}

// Halted reports whether an illegal opcode stopped the CPU
func (cpu *CPU) Halted() bool {
	return cpu.halted
}

// LastRunCount returns the number of instructions executed by the last Run
func (cpu *CPU) LastRunCount() int {
	return cpu.lastRunCount
}

// InstructionCount returns the number of instructions executed since the
// last reset or ClearInstructionCount
func (cpu *CPU) InstructionCount() uint64 {
	return cpu.instructionCount
}

// ClearInstructionCount zeroes the instruction counter
func (cpu *CPU) ClearInstructionCount() {
	cpu.instructionCount = 0
}

// Registers returns a snapshot of the register file and status byte
func (cpu *CPU) Registers() Registers {
	return Registers{
		A:  cpu.A,
		X:  cpu.X,
		Y:  cpu.Y,
		SP: cpu.SP,
		PC: cpu.PC,
		P:  cpu.Status.Byte(),
	}
}

// StackAddress returns the address the next push writes to
func (cpu *CPU) StackAddress() uint16 {
	return stackBase | uint16(cpu.SP)
}

// SetLogger replaces the logger used for diagnostics such as illegal
// opcodes and loop detection
func (cpu *CPU) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	cpu.logger = logger
}

// Stack operations

func (cpu *CPU) push(value uint8) {
	cpu.memory.Write(stackBase|uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.memory.Read(stackBase | uint16(cpu.SP))
}

// pushWord pushes the high byte first so the word reads little-endian
func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value & 0xFF))
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return high<<8 | low
}
