package cpu

import (
	"testing"
	"time"
)

// CPUPerformanceHelper provides CPU-specific performance testing utilities
type CPUPerformanceHelper struct {
	*CPUTestHelper
	startTime time.Time
}

// NewCPUPerformanceHelper creates a CPU performance test helper
func NewCPUPerformanceHelper() *CPUPerformanceHelper {
	return &CPUPerformanceHelper{
		CPUTestHelper: NewCPUTestHelper(),
		startTime:     time.Now(),
	}
}

// GetInstructionsPerSecond calculates the current instruction rate
func (h *CPUPerformanceHelper) GetInstructionsPerSecond() float64 {
	elapsed := time.Since(h.startTime)
	if elapsed.Seconds() == 0 {
		return 0
	}
	return float64(h.CPU.InstructionCount()) / elapsed.Seconds()
}

// benchmarkLoop runs a program that loops forever and steps it b.N times
func benchmarkLoop(b *testing.B, program ...uint8) {
	helper := NewCPUPerformanceHelper()
	helper.LoadProgram(0x8000, program...)
	helper.CPU.ResetTo(0x8000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if !helper.CPU.Step() {
			b.Fatalf("CPU halted at $%04X", helper.CPU.PC)
		}
	}

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "instructions/sec")
}

// BenchmarkBasicInstructions benchmarks fundamental instruction dispatch
func BenchmarkBasicInstructions(b *testing.B) {
	b.Run("NOP", func(b *testing.B) {
		benchmarkLoop(b, NOP, JMPAbs, 0x00, 0x80)
	})

	b.Run("Register Transfers", func(b *testing.B) {
		benchmarkLoop(b, TAX, TXA, TAY, TYA, TSX, TXS, JMPAbs, 0x00, 0x80)
	})

	b.Run("Immediate Loads", func(b *testing.B) {
		benchmarkLoop(b, LDAImm, 0x42, LDXImm, 0x00, LDYImm, 0x80, JMPAbs, 0x00, 0x80)
	})
}

// BenchmarkArithmetic benchmarks binary and decimal ADC/SBC
func BenchmarkArithmetic(b *testing.B) {
	b.Run("Binary", func(b *testing.B) {
		benchmarkLoop(b, CLD, ADCImm, 0x37, SBCImm, 0x11, JMPAbs, 0x01, 0x80)
	})

	b.Run("Decimal", func(b *testing.B) {
		benchmarkLoop(b, SED, ADCImm, 0x37, SBCImm, 0x11, JMPAbs, 0x01, 0x80)
	})
}

// BenchmarkAddressingModes benchmarks operand resolution for memory modes
func BenchmarkAddressingModes(b *testing.B) {
	b.Run("ZeroPage", func(b *testing.B) {
		benchmarkLoop(b, LDAZp, 0x10, STAZp, 0x11, JMPAbs, 0x00, 0x80)
	})

	b.Run("AbsoluteX", func(b *testing.B) {
		benchmarkLoop(b, LDXImm, 0x10, LDAAbsX, 0xF8, 0x20, STAAbsX, 0x00, 0x30, JMPAbs, 0x02, 0x80)
	})

	b.Run("IndirectIndexed", func(b *testing.B) {
		benchmarkLoop(b, LDYImm, 0x04, LDAIndY, 0x20, STAIndY, 0x22, JMPAbs, 0x02, 0x80)
	})
}

// BenchmarkStackOperations benchmarks push/pull and subroutine calls
func BenchmarkStackOperations(b *testing.B) {
	b.Run("PHA/PLA", func(b *testing.B) {
		benchmarkLoop(b, PHA, PLA, JMPAbs, 0x00, 0x80)
	})

	b.Run("JSR/RTS", func(b *testing.B) {
		// JSR $8006; JMP $8000; RTS
		benchmarkLoop(b, JSRAbs, 0x06, 0x80, JMPAbs, 0x00, 0x80, RTS)
	})
}

// BenchmarkRun benchmarks the Run loop including breakpoint checks
func BenchmarkRun(b *testing.B) {
	helper := NewCPUPerformanceHelper()
	// INX; BNE -3; JMP $8000
	helper.LoadProgram(0x8000, INX, BNE, 0xFD, JMPAbs, 0x00, 0x80)
	helper.CPU.ResetTo(0x8000)
	helper.CPU.SetBreakpointRegisters(0xFF, 0xFF, 0xFF)

	b.ResetTimer()
	b.ReportAllocs()

	if reason := helper.CPU.Run(b.N); reason != StopBudget {
		b.Fatalf("Expected budget stop, got %v", reason)
	}
}

// TestCPUPerformanceRegression guards against pathological slowdowns in
// the step loop
func TestCPUPerformanceRegression(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping performance regression test in short mode")
	}

	const instructions = 1_000_000
	helper := NewCPUPerformanceHelper()
	helper.LoadProgram(0x8000, INX, BNE, 0xFD, INY, JMPAbs, 0x00, 0x80)
	helper.CPU.ResetTo(0x8000)
	helper.startTime = time.Now()

	if reason := helper.CPU.Run(instructions); reason != StopBudget {
		t.Fatalf("Expected budget stop, got %v", reason)
	}

	if helper.CPU.InstructionCount() != instructions {
		t.Errorf("Expected %d instructions, got %d", instructions, helper.CPU.InstructionCount())
	}

	rate := helper.GetInstructionsPerSecond()
	t.Logf("Emulation rate: %.0f instructions/sec", rate)
	if rate < 100_000 {
		t.Errorf("Emulation too slow: %.0f instructions/sec", rate)
	}
}
