// Package debug provides debugging sessions for the emulator: an
// instruction trace file, memory dump files and a Lua-scripted monitor.
package debug

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sim6502/internal/cpu"
	"sim6502/internal/memory"
)

// dumpBytesPerLine is the width of a memory dump file row
const dumpBytesPerLine = 16

// SessionInfo is written to session.json when a session stops
type SessionInfo struct {
	ID           string        `json:"id"`
	Started      time.Time     `json:"started"`
	Stopped      time.Time     `json:"stopped"`
	Duration     string        `json:"duration"`
	Instructions uint64        `json:"instructions"`
	Registers    cpu.Registers `json:"registers"`
	Status       string        `json:"status"`
	Halted       bool          `json:"halted"`
	Dumps        []string      `json:"dumps,omitempty"`
	TraceFile    string        `json:"trace_file"`
}

// Session collects the trace log and memory dumps of one debugging run
// in its own directory
type Session struct {
	outputDir string
	dir       string
	sessionID string
	startTime time.Time
	enabled   bool

	cpu       *cpu.CPU
	memory    *memory.Memory
	traceFile *os.File
	dumps     []string
}

// NewSession creates a session that will write below outputDir
func NewSession(outputDir string, c *cpu.CPU, mem *memory.Memory) *Session {
	return &Session{
		outputDir: outputDir,
		cpu:       c,
		memory:    mem,
	}
}

// Start creates the session directory and attaches trace.log as the CPU
// tracer
func (s *Session) Start() error {
	if s.enabled {
		return fmt.Errorf("debugging session already active")
	}

	s.startTime = time.Now()
	s.sessionID = fmt.Sprintf("session_%s", s.startTime.Format("20060102_150405.000"))
	s.dir = filepath.Join(s.outputDir, s.sessionID)
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create debug output directory: %w", err)
	}

	traceFile, err := os.Create(filepath.Join(s.dir, "trace.log"))
	if err != nil {
		return fmt.Errorf("failed to create trace log: %w", err)
	}
	s.traceFile = traceFile
	s.cpu.SetTracer(log.New(traceFile, "", 0))
	s.dumps = nil
	s.enabled = true

	log.Printf("[DEBUG] session %s started in %s", s.sessionID, s.dir)
	return nil
}

// Dir returns the session directory, empty before Start
func (s *Session) Dir() string {
	return s.dir
}

// Active reports whether the session has been started and not stopped
func (s *Session) Active() bool {
	return s.enabled
}

// DumpMemory writes count bytes starting at address to <name>.txt in the
// session directory and returns the file path
func (s *Session) DumpMemory(name string, address uint16, count int) (string, error) {
	if !s.enabled {
		return "", fmt.Errorf("debugging session not active")
	}
	if count <= 0 {
		return "", fmt.Errorf("invalid dump length %d", count)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Memory Dump: %s\n", name)
	fmt.Fprintf(&sb, "Range: $%04X-$%04X (%d bytes)\n", address, uint16(int(address)+count-1), count)
	fmt.Fprintf(&sb, "Registers: %s\n", s.cpu.Registers())
	sb.WriteString("===================\n")
	for offset := 0; offset < count; offset += dumpBytesPerLine {
		n := min(dumpBytesPerLine, count-offset)
		sb.WriteString(s.memory.Dump(address+uint16(offset), n))
		sb.WriteByte('\n')
	}

	path := filepath.Join(s.dir, name+".txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write memory dump %s: %w", name, err)
	}
	s.dumps = append(s.dumps, filepath.Base(path))
	return path, nil
}

// Stop detaches the tracer, closes trace.log and writes session.json
func (s *Session) Stop() error {
	if !s.enabled {
		return fmt.Errorf("debugging session not active")
	}
	s.enabled = false
	s.cpu.SetTracer(nil)

	var closeErr error
	if err := s.traceFile.Close(); err != nil {
		closeErr = fmt.Errorf("failed to close trace log: %w", err)
	}

	stopped := time.Now()
	regs := s.cpu.Registers()
	info := SessionInfo{
		ID:           s.sessionID,
		Started:      s.startTime,
		Stopped:      stopped,
		Duration:     stopped.Sub(s.startTime).String(),
		Instructions: s.cpu.InstructionCount(),
		Registers:    regs,
		Status:       s.cpu.Status.String(),
		Halted:       s.cpu.Halted(),
		Dumps:        s.dumps,
		TraceFile:    "trace.log",
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session info: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, "session.json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write session info: %w", err)
	}

	log.Printf("[DEBUG] session %s stopped after %d instructions", s.sessionID, info.Instructions)
	return closeErr
}
