package debug

import (
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"sim6502/internal/cpu"
	"sim6502/internal/memory"
)

// Monitor runs Lua scripts that inspect and drive a CPU and its memory
type Monitor struct {
	cpu    *cpu.CPU
	memory *memory.Memory
	out    io.Writer
	state  *lua.LState
}

// NewMonitor creates a monitor whose print output goes to out
func NewMonitor(c *cpu.CPU, mem *memory.Memory, out io.Writer) *Monitor {
	m := &Monitor{
		cpu:    c,
		memory: mem,
		out:    out,
		state:  lua.NewState(),
	}
	m.register()
	return m
}

// Close releases the Lua state
func (m *Monitor) Close() {
	m.state.Close()
}

// RunFile executes a Lua script from disk
func (m *Monitor) RunFile(path string) error {
	if err := m.state.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

// RunString executes Lua source; name identifies it in errors
func (m *Monitor) RunString(name, source string) error {
	if err := m.state.DoString(source); err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}
	return nil
}

func (m *Monitor) register() {
	functions := map[string]lua.LGFunction{
		"peek":        m.peek,
		"poke":        m.poke,
		"peekw":       m.peekw,
		"load":        m.load,
		"step":        m.step,
		"run":         m.run,
		"reset":       m.reset,
		"regs":        m.regs,
		"flag":        m.flag,
		"setreg":      m.setreg,
		"breakpoint":  m.breakpoint,
		"breakregs":   m.breakregs,
		"clearbreaks": m.clearbreaks,
		"disasm":      m.disasm,
		"dump":        m.dump,
		"print":       m.print,
	}
	for name, fn := range functions {
		m.state.SetGlobal(name, m.state.NewFunction(fn))
	}
}

// checkAddress reads argument n as a 16-bit address
func checkAddress(L *lua.LState, n int) uint16 {
	v := L.CheckInt(n)
	if v < 0 || v > 0xFFFF {
		L.ArgError(n, fmt.Sprintf("address %d out of range", v))
	}
	return uint16(v)
}

// checkByte reads argument n as an 8-bit value
func checkByte(L *lua.LState, n int) uint8 {
	v := L.CheckInt(n)
	if v < 0 || v > 0xFF {
		L.ArgError(n, fmt.Sprintf("value %d out of range", v))
	}
	return uint8(v)
}

func (m *Monitor) peek(L *lua.LState) int {
	L.Push(lua.LNumber(m.memory.Read(checkAddress(L, 1))))
	return 1
}

func (m *Monitor) poke(L *lua.LState) int {
	m.memory.Write(checkAddress(L, 1), checkByte(L, 2))
	return 0
}

func (m *Monitor) peekw(L *lua.LState) int {
	L.Push(lua.LNumber(m.memory.ReadWord(checkAddress(L, 1))))
	return 1
}

func (m *Monitor) load(L *lua.LState) int {
	path := L.CheckString(1)
	n, err := m.memory.LoadFile(path, checkAddress(L, 2))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(n))
	return 1
}

func (m *Monitor) step(L *lua.LState) int {
	L.Push(lua.LBool(m.cpu.Step()))
	return 1
}

func (m *Monitor) run(L *lua.LState) int {
	limit := L.CheckInt(1)
	if limit < 0 {
		L.ArgError(1, "negative instruction budget")
	}
	reason := m.cpu.Run(limit)
	L.Push(lua.LString(reason.String()))
	L.Push(lua.LNumber(m.cpu.LastRunCount()))
	return 2
}

func (m *Monitor) reset(L *lua.LState) int {
	if L.GetTop() >= 1 {
		m.cpu.ResetTo(checkAddress(L, 1))
	} else {
		m.cpu.Reset()
	}
	return 0
}

func (m *Monitor) regs(L *lua.LState) int {
	r := m.cpu.Registers()
	tbl := L.NewTable()
	tbl.RawSetString("a", lua.LNumber(r.A))
	tbl.RawSetString("x", lua.LNumber(r.X))
	tbl.RawSetString("y", lua.LNumber(r.Y))
	tbl.RawSetString("sp", lua.LNumber(r.SP))
	tbl.RawSetString("pc", lua.LNumber(r.PC))
	tbl.RawSetString("p", lua.LNumber(r.P))
	L.Push(tbl)
	return 1
}

// flagField maps a flag letter to its field in the status register
func (m *Monitor) flagField(L *lua.LState, n int) *bool {
	name := strings.ToUpper(L.CheckString(n))
	s := &m.cpu.Status
	switch name {
	case "C":
		return &s.C
	case "Z":
		return &s.Z
	case "I":
		return &s.I
	case "D":
		return &s.D
	case "B":
		return &s.B
	case "R":
		return &s.R
	case "V":
		return &s.V
	case "N":
		return &s.N
	}
	L.ArgError(n, fmt.Sprintf("unknown flag %q", name))
	return nil
}

func (m *Monitor) flag(L *lua.LState) int {
	field := m.flagField(L, 1)
	if L.GetTop() >= 2 {
		*field = L.ToBool(2)
	}
	L.Push(lua.LBool(*field))
	return 1
}

func (m *Monitor) setreg(L *lua.LState) int {
	name := strings.ToLower(L.CheckString(1))
	switch name {
	case "a":
		m.cpu.A = checkByte(L, 2)
	case "x":
		m.cpu.X = checkByte(L, 2)
	case "y":
		m.cpu.Y = checkByte(L, 2)
	case "sp":
		m.cpu.SP = checkByte(L, 2)
	case "pc":
		m.cpu.PC = checkAddress(L, 2)
	case "p":
		m.cpu.Status.SetByte(checkByte(L, 2))
	default:
		L.ArgError(1, fmt.Sprintf("unknown register %q", name))
	}
	return 0
}

func (m *Monitor) breakpoint(L *lua.LState) int {
	m.cpu.SetBreakpointAddress(checkAddress(L, 1))
	return 0
}

func (m *Monitor) breakregs(L *lua.LState) int {
	m.cpu.SetBreakpointRegisters(checkByte(L, 1), checkByte(L, 2), checkByte(L, 3))
	return 0
}

func (m *Monitor) clearbreaks(L *lua.LState) int {
	m.cpu.ClearBreakpoints()
	return 0
}

func (m *Monitor) disasm(L *lua.LState) int {
	address := checkAddress(L, 1)
	count := L.OptInt(2, 1)
	if count <= 0 {
		L.ArgError(2, "instruction count must be positive")
	}
	lines := cpu.DisassembleRange(m.memory, address, count)

	text := make([]string, len(lines))
	for i, line := range lines {
		text[i] = line.String()
	}
	L.Push(lua.LString(strings.Join(text, "\n")))
	return 1
}

func (m *Monitor) dump(L *lua.LState) int {
	address := checkAddress(L, 1)
	count := L.OptInt(2, 16)
	if count <= 0 {
		L.ArgError(2, "dump length must be positive")
	}
	L.Push(lua.LString(m.memory.Dump(address, count)))
	return 1
}

func (m *Monitor) print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, top)
	for i := 1; i <= top; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(m.out, strings.Join(parts, "\t"))
	return 0
}
