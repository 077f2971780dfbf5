package debug

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sim6502/internal/cpu"
	"sim6502/internal/memory"
)

// countdown is LDX #$05; DEX; BNE -3 followed by a halting opcode
var countdown = []uint8{cpu.LDXImm, 0x05, cpu.DEX, cpu.BNE, 0xFD, 0x02}

func newSystem(t *testing.T) (*cpu.CPU, *memory.Memory) {
	t.Helper()
	mem := memory.New()
	mem.Reset()
	require.NoError(t, mem.Load(0x1000, countdown))
	c := cpu.New(mem)
	c.SetLogger(log.New(io.Discard, "", 0))
	c.Reset()
	return c, mem
}

func TestSessionLifecycle(t *testing.T) {
	c, mem := newSystem(t)
	session := NewSession(t.TempDir(), c, mem)

	_, err := session.DumpMemory("early", 0x1000, 4)
	assert.Error(t, err, "dumping before Start must fail")
	assert.Error(t, session.Stop(), "stopping an idle session must fail")

	require.NoError(t, session.Start())
	assert.True(t, session.Active())
	assert.Error(t, session.Start(), "double start must fail")

	assert.Equal(t, cpu.StopHalted, c.Run(100))

	path, err := session.DumpMemory("program", 0x1000, 20)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(session.Dir(), "program.txt"), path)

	require.NoError(t, session.Stop())
	assert.False(t, session.Active())

	trace, err := os.ReadFile(filepath.Join(session.Dir(), "trace.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(trace)), "\n")
	assert.Len(t, lines, 11)
	assert.Contains(t, lines[0], "LDX #$05")
	assert.Contains(t, lines[1], "DEX")
	assert.Contains(t, lines[2], "BNE $1002")

	dump, err := os.ReadFile(path)
	require.NoError(t, err)
	dumpText := string(dump)
	assert.Contains(t, dumpText, "Range: $1000-$1013 (20 bytes)")
	assert.Contains(t, dumpText, "1000: 0xa2, 0x05, 0xca, 0xd0, 0xfd, 0x02,")
	assert.Contains(t, dumpText, "\n1010: 0x00, 0x00, 0x00, 0x00,\n")

	data, err := os.ReadFile(filepath.Join(session.Dir(), "session.json"))
	require.NoError(t, err)
	var info SessionInfo
	require.NoError(t, json.Unmarshal(data, &info))
	assert.Equal(t, uint64(11), info.Instructions)
	assert.True(t, info.Halted)
	assert.Equal(t, uint16(0x1005), info.Registers.PC)
	assert.Equal(t, []string{"program.txt"}, info.Dumps)
	assert.Equal(t, "trace.log", info.TraceFile)
}

func TestSessionStopDetachesTracer(t *testing.T) {
	c, mem := newSystem(t)
	session := NewSession(t.TempDir(), c, mem)
	require.NoError(t, session.Start())
	require.NoError(t, session.Stop())

	// Running after Stop must not write to the closed trace file
	assert.Equal(t, cpu.StopHalted, c.Run(100))
	trace, err := os.ReadFile(filepath.Join(session.Dir(), "trace.log"))
	require.NoError(t, err)
	assert.Empty(t, trace)
}

func TestSessionInvalidDump(t *testing.T) {
	c, mem := newSystem(t)
	session := NewSession(t.TempDir(), c, mem)
	require.NoError(t, session.Start())
	defer session.Stop()

	_, err := session.DumpMemory("empty", 0x1000, 0)
	assert.Error(t, err)
}

func runScript(t *testing.T, source string) (string, *cpu.CPU, *memory.Memory) {
	t.Helper()
	c, mem := newSystem(t)
	var out bytes.Buffer
	monitor := NewMonitor(c, mem, &out)
	defer monitor.Close()
	require.NoError(t, monitor.RunString("test", source))
	return out.String(), c, mem
}

func TestMonitorMemory(t *testing.T) {
	out, _, mem := runScript(t, `
		poke(0x2000, 0x34)
		poke(0x2001, 0x12)
		print(peek(0x2000), peekw(0x2000))
		print(dump(0x1000, 3))
	`)

	assert.Equal(t, "52\t4660\n1000: 0xa2, 0x05, 0xca,\n", out)
	assert.Equal(t, uint8(0x34), mem.Read(0x2000))
}

func TestMonitorRun(t *testing.T) {
	out, c, _ := runScript(t, `
		local reason, count = run(100)
		local r = regs()
		print(reason, count, r.x, r.pc, flag("z"))
	`)

	assert.Equal(t, "halted\t11\t0\t4101\ttrue\n", out)
	assert.True(t, c.Halted())
}

func TestMonitorStepAndRegisters(t *testing.T) {
	out, c, _ := runScript(t, `
		print(step(), regs().x)
		setreg("a", 0x80)
		setreg("pc", 0x1000)
		flag("c", true)
		print(regs().a, flag("C"))
		print(disasm(0x1000, 3))
	`)

	expected := "true\t5\n128\ttrue\n" +
		"1000  A2 05     LDX #$05\n" +
		"1002  CA        DEX\n" +
		"1003  D0 FD     BNE $1002\n"
	assert.Equal(t, expected, out)
	assert.Equal(t, uint8(0x80), c.A)
	assert.True(t, c.C)
}

func TestMonitorReservedFlag(t *testing.T) {
	out, c, _ := runScript(t, `
		setreg("p", 0x21)
		print(flag("r"), flag("c"))
		flag("r", false)
		print(regs().p, flag("R"))
	`)

	assert.Equal(t, "true\ttrue\n1\tfalse\n", out)
	assert.False(t, c.R)
	assert.True(t, c.C)
}

func TestMonitorBreakpoints(t *testing.T) {
	out, _, _ := runScript(t, `
		breakpoint(0x1003)
		local reason, count = run(100)
		print(reason, count, regs().x)
		clearbreaks()
		breakregs(0, 2, 0)
		reason = run(100)
		print(reason, regs().x)
		reset()
		print(regs().pc, regs().x)
		reset(0x1002)
		print(regs().pc)
	`)

	assert.Equal(t, "breakpoint\t2\t4\nbreakpoint\t2\n4096\t0\n4098\n", out)
}

func TestMonitorLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xEA, 0xEA, 0x02}, 0644))

	out, _, mem := runScript(t, `print(load("`+filepath.ToSlash(path)+`", 0x3000))`)
	assert.Equal(t, "3\n", out)
	assert.Equal(t, []uint8{0xEA, 0xEA, 0x02}, mem.Slice(0x3000, 3))
}

func TestMonitorErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"syntax", "poke(0x2000,"},
		{"address range", "peek(0x10000)"},
		{"value range", "poke(0x2000, 256)"},
		{"unknown register", `setreg("q", 1)`},
		{"unknown flag", `flag("x")`},
		{"missing file", `load("/nonexistent/image.bin", 0)`},
		{"runtime", `error("stop here")`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, mem := newSystem(t)
			monitor := NewMonitor(c, mem, io.Discard)
			defer monitor.Close()

			err := monitor.RunString("broken.lua", test.source)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "script broken.lua")
		})
	}
}

func TestMonitorRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "check.lua")
	require.NoError(t, os.WriteFile(path, []byte("print(run(100))\n"), 0644))

	c, mem := newSystem(t)
	var out bytes.Buffer
	monitor := NewMonitor(c, mem, &out)
	defer monitor.Close()

	require.NoError(t, monitor.RunFile(path))
	assert.Equal(t, "halted\t11\n", out.String())

	err := monitor.RunFile(filepath.Join(t.TempDir(), "missing.lua"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.lua")
}
