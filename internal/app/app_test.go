package app

import (
	"bytes"
	"errors"
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

func newTestApp(t *testing.T) (*Application, *bytes.Buffer) {
	t.Helper()
	config := NewConfig()
	config.Paths.States = filepath.Join(t.TempDir(), "states")
	config.Debug.OutputDir = filepath.Join(t.TempDir(), "debug")
	config.Video.Backend = "headless"

	var out bytes.Buffer
	app := NewApplicationWithConfig(config, &out)
	app.SetLogger(log.New(io.Discard, "", 0))
	t.Cleanup(func() { app.Cleanup() })
	return app, &out
}

func TestNewApplication(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim6502.json")
	app, err := NewApplication(path)
	require.NoError(t, err)
	defer app.Cleanup()

	assert.FileExists(t, path)
	assert.Equal(t, path, app.GetConfig().GetConfigPath())

	broken := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0644))
	_, err = NewApplication(broken)
	var appErr *ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "config", appErr.Component)
}

func TestRunProgram(t *testing.T) {
	app, _ := newTestApp(t)

	result, err := app.RunProgram("fibonacci")
	require.NoError(t, err)
	assert.Equal(t, cpu.StopHalted, result.Reason)
	assert.Equal(t, uint16(0x2000), result.ResultAddress)
	assert.Equal(t, []uint8{1, 1, 2, 3, 5, 8, 13, 21, 34, 55}, result.Result)
	assert.Equal(t, uint8(10), result.Registers.X)

	text := result.String()
	assert.Contains(t, text, "fibonacci: halted after")
	assert.Contains(t, text, "result $2000: 01 01 02 03 05 08 0D 15 22 37")
}

func TestRunProgramUnknown(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := app.RunProgram("tetris")
	var appErr *ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "programs", appErr.Component)
}

func TestRunProgramBudget(t *testing.T) {
	app, _ := newTestApp(t)
	app.GetConfig().Emulation.MaxInstructions = 5

	result, err := app.RunProgram("countdown")
	require.NoError(t, err)
	assert.Equal(t, cpu.StopBudget, result.Reason)
	assert.Equal(t, uint64(5), result.Instructions)
}

func TestRunProgramBreakpoint(t *testing.T) {
	app, _ := newTestApp(t)
	app.GetConfig().Debug.Breakpoint = "$1009"

	result, err := app.RunProgram("countdown")
	require.NoError(t, err)
	assert.Equal(t, cpu.StopBreakpoint, result.Reason)
	assert.Equal(t, uint16(0x1009), result.Registers.PC)
	assert.Equal(t, uint8(2), result.Registers.X)
	assert.Equal(t, uint64(24), result.Instructions)
}

func TestRunProgramTrace(t *testing.T) {
	app, out := newTestApp(t)
	app.GetConfig().Debug.Trace = true
	app.GetConfig().Debug.TraceAddress = "$1007"

	_, err := app.RunProgram("countdown")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "1007  E8        INX")
	assert.Contains(t, lines[2], "NOP")
}

func TestRunProgramSession(t *testing.T) {
	app, _ := newTestApp(t)
	app.GetConfig().Debug.Session = true

	_, err := app.RunProgram("add16")
	require.NoError(t, err)

	sessions, err := filepath.Glob(filepath.Join(app.GetConfig().Debug.OutputDir, "session_*"))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.FileExists(t, filepath.Join(sessions[0], "trace.log"))
	assert.FileExists(t, filepath.Join(sessions[0], "session.json"))

	dump, err := os.ReadFile(filepath.Join(sessions[0], "result.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(dump), "0020: 0xcd, 0xab, 0x76, 0x98, 0x43, 0x44,")
}

func TestRunBinary(t *testing.T) {
	app, _ := newTestApp(t)

	// LDA #$42; STA $0300; halt
	path := filepath.Join(t.TempDir(), "image.bin")
	require.NoError(t, os.WriteFile(path, []byte{cpu.LDAImm, 0x42, cpu.STAAbs, 0x00, 0x03, 0x02}, 0644))

	result, err := app.RunBinary(path, 0x4000, 0x4000)
	require.NoError(t, err)
	assert.Equal(t, cpu.StopHalted, result.Reason)
	assert.Equal(t, uint64(2), result.Instructions)
	assert.Equal(t, uint8(0x42), app.Memory().Read(0x0300))
	assert.Equal(t, uint16(0x4005), result.Registers.PC)

	_, err = app.RunBinary(filepath.Join(t.TempDir(), "missing.bin"), 0x1000, 0x1000)
	var appErr *ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.ErrorIs(t, err, os.ErrNotExist)

	big := filepath.Join(t.TempDir(), "big.bin")
	require.NoError(t, os.WriteFile(big, make([]byte, 0x100), 0644))
	_, err = app.RunBinary(big, 0xFFF0, 0xFFF0)
	assert.ErrorIs(t, err, memory.ErrImageTooLarge)
}

func TestRunScript(t *testing.T) {
	app, out := newTestApp(t)
	_, err := app.RunProgram("ldxy")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "inspect.lua")
	script := `
		local r = regs()
		print("x", r.x, "y", r.y)
		poke(0x0300, 7)
		print(peek(0x0300))
	`
	require.NoError(t, os.WriteFile(path, []byte(script), 0644))

	require.NoError(t, app.RunScript(path))
	assert.Contains(t, out.String(), "7\n")
	assert.Equal(t, uint8(7), app.Memory().Read(0x0300))

	err = app.RunScript(filepath.Join(t.TempDir(), "missing.lua"))
	var appErr *ApplicationError
	assert.True(t, errors.As(err, &appErr))
}

func TestSaveAndResumeState(t *testing.T) {
	app, _ := newTestApp(t)
	app.GetConfig().Debug.Breakpoint = "$1007"

	first, err := app.RunProgram("countdown")
	require.NoError(t, err)
	require.Equal(t, cpu.StopBreakpoint, first.Reason)
	require.NoError(t, app.SaveState(3))
	assert.True(t, app.States().HasSaveState(3, "countdown"))

	app.GetConfig().Debug.Breakpoint = ""
	app.Memory().Reset()
	app.CPU().ResetTo(0x0000)

	resumed, err := app.ResumeState(3, "countdown")
	require.NoError(t, err)
	assert.Equal(t, cpu.StopHalted, resumed.Reason)
	assert.Equal(t, uint8(2), resumed.Registers.X)
	// INX, INX, NOP remain after the breakpoint
	assert.Equal(t, uint64(3), resumed.Instructions)

	_, err = app.ResumeState(4, "countdown")
	assert.Error(t, err)
}

func TestCleanup(t *testing.T) {
	app, _ := newTestApp(t)
	require.NoError(t, app.Cleanup())

	_, err := app.RunProgram("ldxy")
	assert.Error(t, err)
	assert.Error(t, app.RunMachine("vic20"))
}
