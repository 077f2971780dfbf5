// Package machine runs the 6502 core as a Commodore VIC-20 or C64: it
// installs the ROM images, feeds host keys into the KERNAL keyboard
// buffer and decodes screen memory into text.
package machine

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"sim6502/internal/cpu"
	"sim6502/internal/input"
	"sim6502/internal/memory"
)

// Machine connects the CPU, memory and keyboard of one retro computer
type Machine struct {
	CPU      *cpu.CPU
	Memory   *memory.Memory
	Profile  Profile
	Keyboard *input.Keyboard

	slices     uint64
	lastStop   cpu.StopReason
	haltLogged bool
}

// New builds a machine from profile, loading its ROM images from romDir,
// and resets the CPU through the reset vector
func New(profile Profile, romDir string) (*Machine, error) {
	m := &Machine{
		Memory:   memory.New(),
		Profile:  profile,
		Keyboard: input.New(input.DefaultCapacity),
	}
	m.CPU = cpu.New(m.Memory)

	if err := m.installROMs(romDir); err != nil {
		return nil, err
	}

	m.Reset()
	log.Printf("[MACHINE] %s ready, reset vector $%04X", profile.Name, m.CPU.PC)
	return m, nil
}

func (m *Machine) installROMs(romDir string) error {
	for _, rom := range m.Profile.ROMs {
		path := filepath.Join(romDir, rom.File)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%s: missing ROM image %s: %w", m.Profile.Name, rom.File, err)
		}
		if err := m.Memory.Load(rom.Address, data); err != nil {
			return fmt.Errorf("%s: ROM image %s: %w", m.Profile.Name, rom.File, err)
		}

		if rom.Writable {
			log.Printf("[MACHINE] loaded %s (%d bytes) at $%04X as RAM", rom.File, len(data), rom.Address)
			continue
		}
		if len(rom.Protect) == 0 && len(data) > 0 {
			m.Memory.AddReadOnly(rom.Address, rom.Address+uint16(len(data)-1))
		}
		for _, r := range rom.Protect {
			m.Memory.AddReadOnly(r.Start, r.End)
		}
		log.Printf("[MACHINE] loaded %s (%d bytes) at $%04X", rom.File, len(data), rom.Address)
	}
	return nil
}

// Reset restarts the CPU from the reset vector and empties the keyboard
// queue. Memory keeps its contents.
func (m *Machine) Reset() {
	m.CPU.Reset()
	m.Keyboard.Reset()
	m.slices = 0
	m.lastStop = cpu.StopBudget
	m.haltLogged = false
}

// RunSlice runs one time slice, then pokes the raster register and hands
// the next queued key to the KERNAL if its buffer is empty
func (m *Machine) RunSlice() cpu.StopReason {
	m.CPU.ClearInstructionCount()
	m.lastStop = m.CPU.Run(m.Profile.SliceInstructions)
	m.slices++

	if m.lastStop == cpu.StopHalted && !m.haltLogged {
		log.Printf("[MACHINE] %s halted at $%04X after %d slices", m.Profile.Name, m.CPU.PC, m.slices)
		m.haltLogged = true
	}

	if m.Profile.RasterPoke != 0 {
		m.Memory.Write(m.Profile.RasterPoke, 0)
	}

	if m.Memory.Read(m.Profile.KeyCount) == 0 {
		if code, ok := m.Keyboard.Pop(); ok {
			m.InjectKey(code)
		}
	}
	return m.lastStop
}

// InjectKey places code in the KERNAL keyboard buffer as the only
// pending key
func (m *Machine) InjectKey(code uint8) {
	m.Memory.Write(m.Profile.KeyBuffer, code)
	m.Memory.Write(m.Profile.KeyCount, 1)
}

// Type queues host text for delivery one key per slice
func (m *Machine) Type(text string) int {
	return m.Keyboard.PushString(text)
}

// Screen decodes screen memory and the KERNAL cursor position
func (m *Machine) Screen() ScreenFrame {
	layout := m.Profile.Screen
	raw := m.Memory.Slice(layout.Address, layout.Size())
	frame := ScreenFrame{
		Cols:      layout.Cols,
		Rows:      layout.Rows,
		Lines:     decodeScreen(raw, layout.Cols, layout.Rows),
		Codes:     raw,
		CursorRow: int(m.Memory.Read(m.Profile.CursorRow)),
		CursorCol: int(m.Memory.Read(m.Profile.CursorCol)),
		Frame:     m.slices,
	}
	if m.Profile.Charset != 0 {
		frame.Charset = m.Memory.Slice(m.Profile.Charset, CharsetSize)
	}
	return frame
}

// Halted reports whether the CPU stopped on an illegal opcode
func (m *Machine) Halted() bool {
	return m.CPU.Halted()
}

// Slices returns the number of slices run since the last reset
func (m *Machine) Slices() uint64 {
	return m.slices
}

// LastStop returns the stop reason of the most recent slice
func (m *Machine) LastStop() cpu.StopReason {
	return m.lastStop
}
