// Package programs holds the built-in demonstration programs. Each program
// is a set of code and data snippets placed at fixed addresses, with its
// entry point at memory.DefaultEntry.
package programs

import (
	"fmt"
	"sort"

	"sim6502/internal/cpu"
	"sim6502/internal/memory"
)

// Halt is an unassigned opcode placed after each program. Executing it
// stops the CPU, which ends a Run with StopHalted.
const Halt uint8 = 0x02

// Region is the part of memory holding a program's output
type Region struct {
	Address uint16
	Length  int
}

// Program is a runnable set of snippets
type Program struct {
	Name        string
	Description string
	Snippets    []memory.Snippet
	Entry       uint16
	Result      Region
}

// Load resets mem, installs the snippets and points the reset vector at
// the program entry
func (p *Program) Load(mem *memory.Memory) error {
	mem.Reset()
	if err := mem.LoadSnippets(p.Snippets); err != nil {
		return fmt.Errorf("failed to load program %s: %w", p.Name, err)
	}
	mem.WriteWord(memory.ResetVector, p.Entry)
	return nil
}

// Size returns the total number of bytes in the program's snippets
func (p *Program) Size() int {
	size := 0
	for _, s := range p.Snippets {
		size += len(s.Data)
	}
	return size
}

// ResultBytes returns a copy of the result region
func (p *Program) ResultBytes(mem *memory.Memory) []uint8 {
	return mem.Slice(p.Result.Address, p.Result.Length)
}

var registry = map[string]func() *Program{
	"ldxy":      LoadAndCount,
	"countdown": Countdown,
	"inc-stop":  IncrementUntilCarry,
	"compare":   Compare,
	"add16":     Add16,
	"fibonacci": Fibonacci,
	"weekday":   func() *Program { return Weekday(1967, 5, 2) },
	"sum-bcd":   SumBCD,
}

// Names returns the registered program names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a fresh copy of the named program
func Get(name string) (*Program, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown program %q", name)
	}
	return build(), nil
}

// All returns every registered program, ordered by name
func All() []*Program {
	programs := make([]*Program, 0, len(registry))
	for _, name := range Names() {
		programs = append(programs, registry[name]())
	}
	return programs
}

func code(data ...uint8) memory.Snippet {
	return memory.Snippet{Address: memory.DefaultEntry, Name: "main", Data: data}
}

// LoadAndCount loads X and Y then counts them up and back down again
func LoadAndCount() *Program {
	return &Program{
		Name:        "ldxy",
		Description: "load X=$22 Y=$44, increment and decrement both twice",
		Entry:       memory.DefaultEntry,
		Snippets: []memory.Snippet{code(
			cpu.LDXImm, 0x22,
			cpu.LDYImm, 0x44,
			cpu.INX,
			cpu.INX,
			cpu.INY,
			cpu.INY,
			cpu.DEY,
			cpu.DEY,
			cpu.DEX,
			cpu.DEX,
			cpu.NOP,
			Halt,
		)},
	}
}

// Countdown decrements Y from 10 to 0 with a BNE loop
func Countdown() *Program {
	return &Program{
		Name:        "countdown",
		Description: "count Y down from 10 with BNE, then X=2",
		Entry:       memory.DefaultEntry,
		Snippets: []memory.Snippet{code(
			cpu.LDXImm, 0x00,
			cpu.LDYImm, 0x0A,
			cpu.DEY, // $1004
			cpu.BNE, 0xFD,
			cpu.INX,
			cpu.INX,
			cpu.NOP,
			Halt,
		)},
	}
}

// IncrementUntilCarry adds Y to A until it carries, then bumps Y and
// starts over until Y wraps to zero
func IncrementUntilCarry() *Program {
	return &Program{
		Name:        "inc-stop",
		Description: "add Y to A until carry for every Y from 2 to 255",
		Entry:       memory.DefaultEntry,
		Result:      Region{Address: 0x00D0, Length: 2},
		Snippets: []memory.Snippet{code(
			cpu.LDXImm, 0xFF,
			cpu.STXZp, 0xD0,
			cpu.LDYImm, 0x02,
			cpu.CLC, // $1006
			cpu.STYZp, 0xD1,
			cpu.LDAImm, 0x00,
			cpu.ADCZp, 0xD1, // $100B
			cpu.BCC, 0xFC,
			cpu.INY,
			cpu.BEQ, 0x03,
			cpu.JMPAbs, 0x06, 0x10,
			cpu.NOP,
			Halt,
		)},
	}
}

// Compare runs CPX, CPY and CMP in immediate, zero page and absolute modes
func Compare() *Program {
	return &Program{
		Name:        "compare",
		Description: "compare A, X and Y against immediate, zero page and absolute operands",
		Entry:       memory.DefaultEntry,
		Snippets: []memory.Snippet{code(
			cpu.LDAImm, 0x00,
			cpu.LDXImm, 0x00,
			cpu.LDYImm, 0x00,
			cpu.CPXImm, 0xFF,
			cpu.CPXZp, 0x10,
			cpu.CPXAbs, 0x00, 0x20,
			cpu.CPYImm, 0xFF,
			cpu.CPYZp, 0x10,
			cpu.CPYAbs, 0x00, 0x20,
			cpu.CMPImm, 0xFF,
			cpu.CMPZp, 0x10,
			cpu.CMPAbs, 0x00, 0x20,
			cpu.NOP,
			Halt,
		)},
	}
}

// Add16 adds two little-endian 16-bit numbers from zero page
func Add16() *Program {
	return &Program{
		Name:        "add16",
		Description: "add $ABCD and $9876 into $24/$25",
		Entry:       memory.DefaultEntry,
		Result:      Region{Address: 0x0020, Length: 6},
		Snippets: []memory.Snippet{
			{Address: 0x0020, Name: "operands", Data: []uint8{0xCD, 0xAB, 0x76, 0x98}},
			code(
				cpu.CLC,
				cpu.LDAZp, 0x20,
				cpu.ADCZp, 0x22,
				cpu.STAZp, 0x24,
				cpu.LDAZp, 0x21,
				cpu.ADCZp, 0x23,
				cpu.STAZp, 0x25,
				cpu.NOP,
				Halt,
			),
		},
	}
}

// Fibonacci stores the first 10 Fibonacci numbers at $2000. The last one
// is left in $F0.
func Fibonacci() *Program {
	return &Program{
		Name:        "fibonacci",
		Description: "store fib(1)..fib(10) at $2000, fib(10) at $F0",
		Entry:       memory.DefaultEntry,
		Result:      Region{Address: 0x2000, Length: 10},
		Snippets: []memory.Snippet{code(
			cpu.LDAImm, 0x00,
			cpu.STAZp, 0xF0, // lower
			cpu.LDAImm, 0x01,
			cpu.STAZp, 0xF1, // higher
			cpu.LDXImm, 0x00,
			cpu.LDAZp, 0xF1, // $100A
			cpu.STAAbsX, 0x00, 0x20,
			cpu.STAZp, 0xF2, // old higher
			cpu.ADCZp, 0xF0,
			cpu.STAZp, 0xF1,
			cpu.LDAZp, 0xF2,
			cpu.STAZp, 0xF0,
			cpu.INX,
			cpu.CPXImm, 0x0A,
			cpu.BMI, 0xEC,
			cpu.NOP,
			Halt,
		)},
	}
}

// Weekday computes the day of the week (0 = Sunday) for a date between
// 1900-03-01 and 2155-12-31 and stores it at $30. Dates outside that
// range give meaningless results.
func Weekday(year, month, day int) *Program {
	return &Program{
		Name:        "weekday",
		Description: fmt.Sprintf("day of week for %04d-%02d-%02d into $30 (0=Sunday)", year, month, day),
		Entry:       memory.DefaultEntry,
		Result:      Region{Address: 0x0030, Length: 1},
		Snippets: []memory.Snippet{
			// scratch byte, then the month offset table indexed by month
			{Address: 0x0020, Name: "tables", Data: []uint8{6, 1, 5, 6, 3, 1, 5, 3, 0, 4, 2, 6, 4}},
			code(
				cpu.LDYImm, uint8(year-1900),
				cpu.LDXImm, uint8(month),
				cpu.LDAImm, uint8(day),
				cpu.JSRAbs, 0x00, 0x15,
				cpu.STAZp, 0x30,
				cpu.NOP,
				Halt,
			),
			{Address: 0x1500, Name: "weekday", Data: []uint8{
				cpu.CPXImm, 3, // year starts in March
				cpu.BCS, 0x01,
				cpu.DEY,          // Jan/Feb count as the previous year
				cpu.EORImm, 0x7F, // $1505
				cpu.CPYImm, 200, // carry set in the 22nd century
				cpu.ADCZpX, 0x20,
				cpu.STAZp, 0x20,
				cpu.TYA,
				cpu.JSRAbs, 0x00, 0x20,
				cpu.SBCZp, 0x20,
				cpu.STAZp, 0x20,
				cpu.TYA,
				cpu.LSRAcc,
				cpu.LSRAcc,
				cpu.CLC,
				cpu.ADCZp, 0x20,
				cpu.JSRAbs, 0x00, 0x20,
				cpu.RTS,
			}},
			{Address: 0x2000, Name: "mod7", Data: []uint8{
				cpu.ADCImm, 7, // returns (A+3) mod 7
				cpu.BCC, 0xFC,
				cpu.RTS,
			}},
		},
	}
}

// SumBCD adds a list of packed BCD bytes into a 16-bit BCD total at $50
func SumBCD() *Program {
	return &Program{
		Name:        "sum-bcd",
		Description: "decimal-mode sum of 19+28+37+46+55 into $50/$51",
		Entry:       memory.DefaultEntry,
		Result:      Region{Address: 0x0050, Length: 2},
		Snippets: []memory.Snippet{
			{Address: 0x0040, Name: "values", Data: []uint8{5, 0x19, 0x28, 0x37, 0x46, 0x55}},
			code(
				cpu.SED,
				cpu.LDAImm, 0x00,
				cpu.STAZp, 0x50,
				cpu.STAZp, 0x51,
				cpu.LDXImm, 0x00,
				cpu.CLC, // $1009
				cpu.LDAZp, 0x50,
				cpu.ADCZpX, 0x41,
				cpu.STAZp, 0x50,
				cpu.LDAZp, 0x51,
				cpu.ADCImm, 0x00,
				cpu.STAZp, 0x51,
				cpu.INX,
				cpu.CPXZp, 0x40,
				cpu.BNE, 0xEE,
				cpu.CLD,
				cpu.NOP,
				Halt,
			),
		},
	}
}
