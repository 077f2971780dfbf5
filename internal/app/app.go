// Package app ties the CPU, the built-in programs, the retro machines,
// the front ends and the debugger into one application.
package app

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"sim6502/internal/cpu"
	"sim6502/internal/debug"
	"sim6502/internal/graphics"
	"sim6502/internal/machine"
	"sim6502/internal/memory"
	"sim6502/internal/programs"
)

// Application represents the emulator application
type Application struct {
	config *Config
	logger *log.Logger
	out    io.Writer

	// Core emulation components
	memory  *memory.Memory
	cpu     *cpu.CPU
	machine *machine.Machine
	source  string

	// Graphics backend
	graphicsBackend graphics.Backend
	window          graphics.Window
	emulator        *Emulator

	// Debugging and snapshots
	session *debug.Session
	states  *StateManager

	initialized bool
}

// RunResult summarises one program or binary run
type RunResult struct {
	Name          string
	Reason        cpu.StopReason
	Instructions  uint64
	Registers     cpu.Registers
	ResultAddress uint16
	Result        []uint8
}

// String formats the result for the console
func (r *RunResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s after %d instructions\n", r.Name, r.Reason, r.Instructions)
	fmt.Fprintf(&sb, "%s\n", r.Registers)
	if len(r.Result) > 0 {
		fmt.Fprintf(&sb, "result $%04X:", r.ResultAddress)
		for _, b := range r.Result {
			fmt.Fprintf(&sb, " %02X", b)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// NewApplication creates an application from a config file. A missing
// file is written with the defaults.
func NewApplication(configPath string) (*Application, error) {
	config := NewConfig()
	if configPath != "" {
		if err := config.LoadFromFile(configPath); err != nil {
			return nil, &ApplicationError{
				Component: "config",
				Operation: "load",
				Err:       err,
			}
		}
	}
	return NewApplicationWithConfig(config, os.Stdout), nil
}

// NewApplicationWithConfig creates an application that prints results and
// monitor output to out
func NewApplicationWithConfig(config *Config, out io.Writer) *Application {
	app := &Application{
		config: config,
		logger: log.New(os.Stderr, "", log.LstdFlags),
		out:    out,
		memory: memory.New(),
		states: NewStateManager(config.Paths.States),
	}
	app.cpu = cpu.New(app.memory)
	app.initialized = true
	return app
}

// SetLogger replaces the logger used by the application and its CPU
func (app *Application) SetLogger(logger *log.Logger) {
	app.logger = logger
	app.cpu.SetLogger(logger)
}

// GetConfig returns the configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// CPU returns the active CPU
func (app *Application) CPU() *cpu.CPU {
	return app.cpu
}

// Memory returns the active address space
func (app *Application) Memory() *memory.Memory {
	return app.memory
}

// Machine returns the machine started by RunMachine, or nil
func (app *Application) Machine() *machine.Machine {
	return app.machine
}

// Window returns the front end window opened by RunMachine, or nil
func (app *Application) Window() graphics.Window {
	return app.window
}

// RunProgram loads a built-in program, runs it from its entry point and
// returns the contents of its result region
func (app *Application) RunProgram(name string) (*RunResult, error) {
	if !app.initialized {
		return nil, errors.New("application not initialized")
	}

	program, err := programs.Get(name)
	if err != nil {
		return nil, &ApplicationError{Component: "programs", Operation: "lookup", Err: err}
	}
	if err := program.Load(app.memory); err != nil {
		return nil, &ApplicationError{Component: "memory", Operation: "load program", Err: err}
	}

	app.source = program.Name
	app.logger.Printf("[APP] running %s (%d bytes): %s", program.Name, program.Size(), program.Description)
	return app.execute(program.Name, true, program.Result.Address, program.Result.Length)
}

// RunBinary loads a raw image at load and starts it at boot
func (app *Application) RunBinary(path string, load, boot uint16) (*RunResult, error) {
	if !app.initialized {
		return nil, errors.New("application not initialized")
	}

	app.memory.Reset()
	n, err := app.memory.LoadFile(path, load)
	if err != nil {
		return nil, &ApplicationError{Component: "memory", Operation: "load binary", Err: err}
	}
	app.memory.WriteWord(memory.ResetVector, boot)

	app.source = path
	app.logger.Printf("[APP] loaded %s (%d bytes) at $%04X, boot $%04X", path, n, load, boot)
	return app.execute(path, true, 0, 0)
}

// ResumeState restores a snapshot slot and keeps running from the saved
// registers
func (app *Application) ResumeState(slot int, source string) (*RunResult, error) {
	state, err := app.states.LoadState(app.cpu, app.memory, slot, source)
	if err != nil {
		return nil, &ApplicationError{Component: "states", Operation: "load", Err: err}
	}
	app.source = source
	app.logger.Printf("[APP] resumed %s from slot %d at $%04X", source, slot, state.CPUState.PC)
	return app.execute(source, false, 0, 0)
}

// execute runs the CPU under the configured debug settings
func (app *Application) execute(name string, reset bool, resultAddress uint16, resultLength int) (*RunResult, error) {
	if err := app.applyDebugSettings(); err != nil {
		return nil, err
	}
	if reset {
		app.cpu.Reset()
	}

	reason := app.cpu.Run(app.config.Emulation.MaxInstructions)
	result := &RunResult{
		Name:          name,
		Reason:        reason,
		Instructions:  app.cpu.InstructionCount(),
		Registers:     app.cpu.Registers(),
		ResultAddress: resultAddress,
	}
	if resultLength > 0 {
		result.Result = app.memory.Slice(resultAddress, resultLength)
	}

	if app.session != nil {
		if resultLength > 0 {
			if _, err := app.session.DumpMemory("result", resultAddress, resultLength); err != nil {
				return result, &ApplicationError{Component: "debug", Operation: "dump result", Err: err}
			}
		}
		if err := app.stopSession(); err != nil {
			return result, err
		}
	}
	return result, nil
}

// applyDebugSettings arms tracing, breakpoints and the debug session
func (app *Application) applyDebugSettings() error {
	dbg := app.config.Debug
	c := app.cpu

	c.ClearBreakpoints()
	c.SetTracer(nil)
	c.EnableLoopDetection(dbg.LoopDetection || dbg.LogLevel == "DEBUG")

	if dbg.Session {
		app.session = debug.NewSession(dbg.OutputDir, c, app.memory)
		if err := app.session.Start(); err != nil {
			app.session = nil
			return &ApplicationError{Component: "debug", Operation: "start session", Err: err}
		}
	} else if dbg.Trace {
		c.SetTracer(log.New(app.out, "", 0))
	}

	if dbg.TraceAddress != "" {
		address, err := ParseAddress(dbg.TraceAddress)
		if err != nil {
			return &ConfigError{Field: "debug.trace_address", Value: dbg.TraceAddress, Err: err}
		}
		c.SetTraceAddress(address)
	}
	if dbg.Breakpoint != "" {
		address, err := ParseAddress(dbg.Breakpoint)
		if err != nil {
			return &ConfigError{Field: "debug.breakpoint", Value: dbg.Breakpoint, Err: err}
		}
		c.SetBreakpointAddress(address)
	}
	return nil
}

func (app *Application) stopSession() error {
	session := app.session
	app.session = nil
	if err := session.Stop(); err != nil {
		return &ApplicationError{Component: "debug", Operation: "stop session", Err: err}
	}
	app.logger.Printf("[APP] debug output in %s", session.Dir())
	return nil
}

// RunMachine boots a machine profile and runs it in the configured front
// end until the user quits
func (app *Application) RunMachine(profileName string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	profile, err := machine.GetProfile(profileName)
	if err != nil {
		return &ApplicationError{Component: "machine", Operation: "select profile", Err: err}
	}
	if slice := app.config.Emulation.SliceInstructions; slice > 0 {
		profile.SliceInstructions = slice
	}

	m, err := machine.New(profile, app.config.Machine.ROMDir)
	if err != nil {
		return &ApplicationError{Component: "machine", Operation: "install ROMs", Err: err}
	}
	m.CPU.SetLogger(app.logger)
	app.machine = m
	app.cpu = m.CPU
	app.memory = m.Memory
	app.source = profile.Name

	if err := app.initializeGraphicsBackend(profile); err != nil {
		return &ApplicationError{Component: "graphics", Operation: "initialize", Err: err}
	}
	if err := app.applyDebugSettings(); err != nil {
		return err
	}

	app.emulator = NewEmulator(m, app.window, app.logger)
	if text := app.config.Machine.Autotype; text != "" {
		m.Type(text)
	}
	app.emulator.Start()

	runErr := app.window.Run(app.emulator.Update)
	app.logger.Printf("[APP] %s stopped after %d frames, %d instructions",
		profile.Name, app.emulator.GetFrameCount(), app.emulator.GetInstructionCount())

	if app.session != nil {
		if _, err := app.session.DumpMemory("screen", profile.Screen.Address, profile.Screen.Size()); err != nil && runErr == nil {
			runErr = err
		}
		if err := app.stopSession(); err != nil && runErr == nil {
			runErr = err
		}
	}
	if runErr != nil {
		return &ApplicationError{Component: "graphics", Operation: "run", Err: runErr}
	}
	return nil
}

// initializeGraphicsBackend creates the configured front end and a window
// sized for the machine's screen
func (app *Application) initializeGraphicsBackend(profile machine.Profile) error {
	backend, err := graphics.CreateBackend(graphics.BackendType(app.config.Video.Backend))
	if err != nil {
		return fmt.Errorf("failed to create graphics backend: %w", err)
	}

	graphicsConfig := graphics.Config{
		WindowTitle: fmt.Sprintf("sim6502 - %s", profile.Description),
		Scale:       app.config.Video.Scale,
		Fullscreen:  app.config.Video.Fullscreen,
		VSync:       app.config.Video.VSync,
		Headless:    app.config.Video.Backend == string(graphics.BackendHeadless),
		Debug:       app.config.Debug.LogLevel == "DEBUG",
	}
	if err := backend.Initialize(graphicsConfig); err != nil {
		return fmt.Errorf("failed to initialize %s backend: %w", backend.GetName(), err)
	}
	app.graphicsBackend = backend

	window, err := backend.CreateWindow(graphicsConfig.WindowTitle, profile.Screen.Cols, profile.Screen.Rows)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	app.window = window

	if headless, ok := graphics.AsHeadlessWindow(window); ok {
		headless.SetMaxFrames(app.config.Video.HeadlessFrames)
	}
	if graphicsConfig.Debug {
		app.machine.Keyboard.EnableDebug(true)
	}

	app.logger.Printf("[APP] %s backend, %dx%d screen", backend.GetName(), profile.Screen.Cols, profile.Screen.Rows)
	return nil
}

// RunScript runs a Lua monitor script against the current CPU and memory
func (app *Application) RunScript(path string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	monitor := debug.NewMonitor(app.cpu, app.memory, app.out)
	defer monitor.Close()

	if err := monitor.RunFile(path); err != nil {
		return &ApplicationError{Component: "debug", Operation: "run script", Err: err}
	}
	return nil
}

// SaveState stores the current CPU and memory in a snapshot slot
func (app *Application) SaveState(slot int) error {
	if err := app.states.SaveState(app.cpu, app.memory, slot, app.source); err != nil {
		return &ApplicationError{Component: "states", Operation: "save", Err: err}
	}
	app.logger.Printf("[APP] saved %s to slot %d", app.source, slot)
	return nil
}

// States returns the snapshot manager
func (app *Application) States() *StateManager {
	return app.states
}

// Cleanup releases all resources and shuts down the application
func (app *Application) Cleanup() error {
	var lastErr error

	if app.session != nil {
		if err := app.stopSession(); err != nil {
			lastErr = err
			app.logger.Printf("[APP_ERROR] debug session cleanup error: %v", err)
		}
	}

	if app.emulator != nil {
		app.emulator.Stop()
	}

	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			lastErr = err
			app.logger.Printf("[APP_ERROR] Window cleanup error: %v", err)
		}
		app.window = nil
	}

	if app.graphicsBackend != nil {
		if err := app.graphicsBackend.Cleanup(); err != nil {
			lastErr = err
			app.logger.Printf("[APP_ERROR] Graphics backend cleanup error: %v", err)
		}
		app.graphicsBackend = nil
	}

	app.initialized = false
	return lastErr
}
