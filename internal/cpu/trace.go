package cpu

import (
	"fmt"
	"log"
)

// loopThreshold is how many consecutive steps at one PC count as a loop
const loopThreshold = 100

// SetTracer attaches a logger that receives one line per executed
// instruction. A nil logger turns tracing off.
func (cpu *CPU) SetTracer(tracer *log.Logger) {
	cpu.tracer = tracer
	cpu.traceActive = false
}

// SetTraceAddress delays tracing until PC first reaches address
func (cpu *CPU) SetTraceAddress(address uint16) {
	cpu.traceAddress = address
	cpu.traceArmed = true
	cpu.traceActive = false
}

// EnableLoopDetection logs a warning whenever PC stays put for more than
// loopThreshold consecutive steps, the usual sign of a "JMP *" idle loop
func (cpu *CPU) EnableLoopDetection(enable bool) {
	cpu.enableLoopDetection = enable
	cpu.pcStayCount = 0
}

// tracing reports whether the instruction at pc should be traced
func (cpu *CPU) tracing(pc uint16) bool {
	if cpu.tracer == nil {
		return false
	}
	if !cpu.traceActive && (!cpu.traceArmed || pc == cpu.traceAddress) {
		cpu.traceActive = true
	}
	return cpu.traceActive
}

// traceInstruction logs the disassembly followed by the state after execution
func (cpu *CPU) traceInstruction(line DisassembledLine) {
	cpu.tracer.Printf("[CPU_TRACE] %-30s ; %04X(%03X): A:%02X X:%02X Y:%02X [%s]",
		line.String(), cpu.PC, cpu.StackAddress(), cpu.A, cpu.X, cpu.Y, cpu.Status.String())
}

// detectInfiniteLoop tracks how long PC has stayed at the same address
func (cpu *CPU) detectInfiniteLoop(pc uint16, opcode uint8) {
	if pc == cpu.lastPC {
		cpu.pcStayCount++
		if cpu.pcStayCount == loopThreshold+1 {
			cpu.logger.Printf("[CPU_LOOP] CPU stuck at PC=$%04X executing opcode=0x%02X for %d steps",
				pc, opcode, cpu.pcStayCount)
		}
		if cpu.pcStayCount%1000 == 0 {
			cpu.logCPUState(pc, opcode)
		}
	} else {
		cpu.pcStayCount = 0
	}
	cpu.lastPC = pc
}

// logCPUState logs detailed CPU state during infinite loops
func (cpu *CPU) logCPUState(pc uint16, opcode uint8) {
	mem1 := cpu.memory.Read(pc + 1)
	mem2 := cpu.memory.Read(pc + 2)

	cpu.logger.Printf("[CPU_STATE] PC=$%04X: %s (0x%02X %02X %02X) | A=$%02X X=$%02X Y=$%02X SP=$%02X | %s | Instructions=%d",
		pc, Lookup(opcode).Name, opcode, mem1, mem2, cpu.A, cpu.X, cpu.Y, cpu.SP, cpu.Status.String(), cpu.instructionCount)
}

// String summarises the register file on one line
func (r Registers) String() string {
	var status Status
	status.SetByte(r.P)
	return fmt.Sprintf("PC=$%04X A=$%02X X=$%02X Y=$%02X SP=$%02X P=%s", r.PC, r.A, r.X, r.Y, r.SP, status.String())
}
