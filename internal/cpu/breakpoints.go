package cpu

// StopReason tells why Run returned
type StopReason int

const (
	// StopBudget means the requested number of instructions ran
	StopBudget StopReason = iota
	// StopHalted means the CPU hit an illegal opcode
	StopHalted
	// StopBreakpoint means a breakpoint matched after an instruction
	StopBreakpoint
)

func (r StopReason) String() string {
	switch r {
	case StopBudget:
		return "budget"
	case StopHalted:
		return "halted"
	case StopBreakpoint:
		return "breakpoint"
	default:
		return "unknown"
	}
}

// breakpoints holds the optional address and register conditions. When
// both are armed both must hold.
type breakpoints struct {
	checkAddress   bool
	address        uint16
	checkRegisters bool
	a, x, y        uint8
}

func (b *breakpoints) matches(cpu *CPU) bool {
	if !b.checkAddress && !b.checkRegisters {
		return false
	}
	if b.checkAddress && cpu.PC != b.address {
		return false
	}
	if b.checkRegisters && (cpu.A != b.a || cpu.X != b.x || cpu.Y != b.y) {
		return false
	}
	return true
}

// SetBreakpointAddress stops Run once PC equals address
func (cpu *CPU) SetBreakpointAddress(address uint16) {
	cpu.breakpoints.checkAddress = true
	cpu.breakpoints.address = address
}

// SetBreakpointRegisters stops Run once A, X and Y hold the given values
func (cpu *CPU) SetBreakpointRegisters(a, x, y uint8) {
	cpu.breakpoints.checkRegisters = true
	cpu.breakpoints.a = a
	cpu.breakpoints.x = x
	cpu.breakpoints.y = y
}

// ClearBreakpoints disarms both breakpoint kinds
func (cpu *CPU) ClearBreakpoints() {
	cpu.breakpoints = breakpoints{}
}

// BreakpointAddress returns the armed address breakpoint, if any
func (cpu *CPU) BreakpointAddress() (uint16, bool) {
	return cpu.breakpoints.address, cpu.breakpoints.checkAddress
}
