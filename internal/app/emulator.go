package app

import (
	"fmt"
	"log"
	"time"

	"sim6502/internal/cpu"
	"sim6502/internal/graphics"
	"sim6502/internal/machine"
)

// Emulator drives a machine one time slice per front end frame: input
// first, then the CPU slice, then the screen
type Emulator struct {
	machine *machine.Machine
	window  graphics.Window
	logger  *log.Logger

	// Performance monitoring
	frameCount       uint64
	instructionCount uint64
	emulationTime    time.Duration
	actualFrameTime  time.Duration
	lastResetTime    time.Time

	// State tracking
	isRunning bool
	paused    bool
}

// NewEmulator creates an emulator that renders m into window
func NewEmulator(m *machine.Machine, window graphics.Window, logger *log.Logger) *Emulator {
	e := &Emulator{
		machine: m,
		window:  window,
		logger:  logger,
	}
	e.Reset()
	return e
}

// Reset clears the counters and restarts the machine
func (e *Emulator) Reset() {
	e.machine.Reset()
	e.frameCount = 0
	e.instructionCount = 0
	e.emulationTime = 0
	e.actualFrameTime = 0
	e.lastResetTime = time.Now()
	e.paused = false
}

// Start starts the emulator
func (e *Emulator) Start() {
	e.isRunning = true
}

// Stop stops the emulator
func (e *Emulator) Stop() {
	e.isRunning = false
}

// Pause freezes the CPU while the screen keeps updating
func (e *Emulator) Pause() {
	e.paused = true
}

// Resume continues after Pause or a breakpoint
func (e *Emulator) Resume() {
	e.paused = false
}

// Update runs one frame. It returns graphics.ErrWindowClosed when the
// user quits.
func (e *Emulator) Update() error {
	if !e.isRunning {
		return graphics.ErrWindowClosed
	}
	frameStartTime := time.Now()

	if quit := e.processInput(); quit {
		e.Stop()
		return graphics.ErrWindowClosed
	}

	if !e.paused {
		emulationStart := time.Now()
		reason := e.machine.RunSlice()
		e.emulationTime = time.Since(emulationStart)
		e.instructionCount += e.machine.CPU.InstructionCount()

		if reason == cpu.StopBreakpoint {
			e.logger.Printf("[APP] breakpoint hit: %s", e.machine.CPU.Registers())
			e.Pause()
		}
	}

	if err := e.window.RenderScreen(e.machine.Screen()); err != nil {
		return fmt.Errorf("render error: %w", err)
	}

	e.frameCount++
	e.actualFrameTime = time.Since(frameStartTime)

	if e.window.ShouldClose() {
		e.Stop()
		return graphics.ErrWindowClosed
	}
	return nil
}

// processInput feeds key events into the machine keyboard queue and
// reports whether the user asked to quit
func (e *Emulator) processInput() bool {
	for _, event := range e.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			return true
		case graphics.InputEventTypeResume:
			if e.paused {
				e.logger.Printf("[APP] resumed at $%04X", e.machine.CPU.PC)
				e.Resume()
			}
			continue
		}
		for _, code := range graphics.KeyCodes(event) {
			e.machine.Keyboard.Push(code)
		}
	}
	return false
}

// GetFrameCount returns the current frame count
func (e *Emulator) GetFrameCount() uint64 {
	return e.frameCount
}

// GetInstructionCount returns the instructions executed since Reset
func (e *Emulator) GetInstructionCount() uint64 {
	return e.instructionCount
}

// GetEmulationTime returns the time spent in the CPU for the last frame
func (e *Emulator) GetEmulationTime() time.Duration {
	return e.emulationTime
}

// GetCPUUsage returns the share of the last frame spent in the CPU
func (e *Emulator) GetCPUUsage() float64 {
	if e.actualFrameTime == 0 {
		return 0.0
	}

	return float64(e.emulationTime) / float64(e.actualFrameTime) * 100.0
}

// IsRunning returns whether the emulator is running
func (e *Emulator) IsRunning() bool {
	return e.isRunning
}

// IsPaused returns whether the CPU is frozen
func (e *Emulator) IsPaused() bool {
	return e.paused
}

// GetUptime returns the emulator uptime since last reset
func (e *Emulator) GetUptime() time.Duration {
	return time.Since(e.lastResetTime)
}
