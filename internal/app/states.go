package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sim6502/internal/cpu"
	"sim6502/internal/memory"
)

// stateVersion identifies the snapshot file layout
const stateVersion = "1.0"

// StateManager saves and restores CPU and memory snapshots in numbered
// slots, one set of slots per program or machine name
type StateManager struct {
	saveDirectory string
	maxSlots      int
}

// SaveState represents a saved emulator state
type SaveState struct {
	// Metadata
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
	SlotNumber  int       `json:"slot_number"`
	Description string    `json:"description"`

	// Emulator state
	CPUState    CPUStateData    `json:"cpu_state"`
	Memory      []uint8         `json:"memory"`
	Checksum    string          `json:"checksum"`
	ReadOnly    []memory.Region `json:"read_only,omitempty"`
	Instruction uint64          `json:"instruction_count"`
}

// CPUStateData represents CPU state for save files
type CPUStateData struct {
	PC     uint16       `json:"pc"`
	A      uint8        `json:"a"`
	X      uint8        `json:"x"`
	Y      uint8        `json:"y"`
	SP     uint8        `json:"sp"`
	Halted bool         `json:"halted"`
	Flags  CPUFlagsData `json:"flags"`
}

// CPUFlagsData represents CPU flags for save files
type CPUFlagsData struct {
	N bool `json:"n"`
	V bool `json:"v"`
	R bool `json:"r"`
	B bool `json:"b"`
	D bool `json:"d"`
	I bool `json:"i"`
	Z bool `json:"z"`
	C bool `json:"c"`
}

// StateSlotInfo contains information about a save state slot
type StateSlotInfo struct {
	SlotNumber  int       `json:"slot_number"`
	Used        bool      `json:"used"`
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	FilePath    string    `json:"file_path"`
	FileSize    int64     `json:"file_size"`
}

// NewStateManager creates a new state manager. The directory is created
// on the first save.
func NewStateManager(saveDirectory string) *StateManager {
	return &StateManager{
		saveDirectory: saveDirectory,
		maxSlots:      10,
	}
}

// Capture builds a snapshot of the CPU and the whole address space
func Capture(c *cpu.CPU, mem *memory.Memory, source, description string) *SaveState {
	image := mem.Slice(0, memory.Size)
	return &SaveState{
		Version:     stateVersion,
		Timestamp:   time.Now(),
		Source:      source,
		Description: description,
		CPUState: CPUStateData{
			PC:     c.PC,
			A:      c.A,
			X:      c.X,
			Y:      c.Y,
			SP:     c.SP,
			Halted: c.Halted(),
			Flags: CPUFlagsData{
				N: c.N,
				V: c.V,
				R: c.R,
				B: c.B,
				D: c.D,
				I: c.I,
				Z: c.Z,
				C: c.C,
			},
		},
		Memory:      image,
		Checksum:    checksum(image),
		ReadOnly:    mem.ReadOnlyRegions(),
		Instruction: c.InstructionCount(),
	}
}

// Restore writes a snapshot back into the CPU and memory. A halted
// snapshot resumes as running; the illegal opcode halts it again.
func (s *SaveState) Restore(c *cpu.CPU, mem *memory.Memory) error {
	if err := s.validate(); err != nil {
		return err
	}

	mem.ClearReadOnly()
	if err := mem.Load(0, s.Memory); err != nil {
		return fmt.Errorf("failed to restore memory: %w", err)
	}
	for _, r := range s.ReadOnly {
		mem.AddReadOnly(r.Start, r.End)
	}

	c.ResetTo(s.CPUState.PC)
	c.A = s.CPUState.A
	c.X = s.CPUState.X
	c.Y = s.CPUState.Y
	c.SP = s.CPUState.SP
	f := s.CPUState.Flags
	c.Status = cpu.Status{N: f.N, V: f.V, R: f.R, B: f.B, D: f.D, I: f.I, Z: f.Z, C: f.C}
	return nil
}

// validate checks a loaded snapshot before it touches the machine
func (s *SaveState) validate() error {
	if s.Version == "" {
		return fmt.Errorf("missing version information")
	}
	if s.Version != stateVersion {
		return fmt.Errorf("unsupported state version %s", s.Version)
	}
	if len(s.Memory) != memory.Size {
		return fmt.Errorf("memory image has %d bytes, want %d", len(s.Memory), memory.Size)
	}
	if s.Checksum != checksum(s.Memory) {
		return fmt.Errorf("memory checksum mismatch")
	}
	return nil
}

func checksum(image []uint8) string {
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE(image))
}

// SaveState saves the current emulator state to a slot
func (sm *StateManager) SaveState(c *cpu.CPU, mem *memory.Memory, slot int, source string) error {
	if err := sm.checkSlot(slot); err != nil {
		return err
	}

	state := Capture(c, mem, source, fmt.Sprintf("Slot %d %s", slot, time.Now().Format("2006-01-02 15:04:05")))
	state.SlotNumber = slot

	if err := sm.saveToFile(state, sm.getSlotFilePath(slot, source)); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// LoadState restores a saved state from a slot
func (sm *StateManager) LoadState(c *cpu.CPU, mem *memory.Memory, slot int, source string) (*SaveState, error) {
	if err := sm.checkSlot(slot); err != nil {
		return nil, err
	}

	filePath := sm.getSlotFilePath(slot, source)
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("save state not found in slot %d", slot)
	}

	state, err := sm.loadFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	if state.Source != source {
		return nil, fmt.Errorf("save state is for %q, not %q", state.Source, source)
	}

	if err := state.Restore(c, mem); err != nil {
		return nil, fmt.Errorf("invalid save state: %w", err)
	}
	return state, nil
}

func (sm *StateManager) checkSlot(slot int) error {
	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("invalid save slot: %d (must be 0-%d)", slot, sm.maxSlots-1)
	}
	return nil
}

// saveToFile saves a state to a file
func (sm *StateManager) saveToFile(state *SaveState, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// loadFromFile loads a state from a file
func (sm *StateManager) loadFromFile(filePath string) (*SaveState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var state SaveState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return &state, nil
}

// getSlotFilePath generates the file path for a save slot
func (sm *StateManager) getSlotFilePath(slot int, source string) string {
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if name == "" || name == "." {
		name = "default"
	}
	fileName := fmt.Sprintf("%s_slot_%d.state", name, slot)
	return filepath.Join(sm.saveDirectory, fileName)
}

// GetSlotInfo returns information about all save slots
func (sm *StateManager) GetSlotInfo(source string) []StateSlotInfo {
	slots := make([]StateSlotInfo, sm.maxSlots)

	for i := 0; i < sm.maxSlots; i++ {
		slotInfo := StateSlotInfo{
			SlotNumber: i,
			Used:       false,
		}

		filePath := sm.getSlotFilePath(i, source)
		if stat, err := os.Stat(filePath); err == nil {
			slotInfo.Used = true
			slotInfo.FilePath = filePath
			slotInfo.FileSize = stat.Size()
			slotInfo.Timestamp = stat.ModTime()

			if state, err := sm.loadFromFile(filePath); err == nil {
				slotInfo.Source = state.Source
				slotInfo.Description = state.Description
				slotInfo.Timestamp = state.Timestamp
			}
		}

		slots[i] = slotInfo
	}

	return slots
}

// DeleteState deletes a save state from a slot
func (sm *StateManager) DeleteState(slot int, source string) error {
	if err := sm.checkSlot(slot); err != nil {
		return err
	}

	filePath := sm.getSlotFilePath(slot, source)
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("save state not found in slot %d", slot)
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete save state: %w", err)
	}

	return nil
}

// HasSaveState checks if a save state exists in a slot
func (sm *StateManager) HasSaveState(slot int, source string) bool {
	if sm.checkSlot(slot) != nil {
		return false
	}

	_, err := os.Stat(sm.getSlotFilePath(slot, source))
	return err == nil
}

// GetMaxSlots returns the maximum number of save slots
func (sm *StateManager) GetMaxSlots() int {
	return sm.maxSlots
}

// SetMaxSlots sets the maximum number of save slots
func (sm *StateManager) SetMaxSlots(slots int) {
	if slots > 0 {
		sm.maxSlots = slots
	}
}

// GetSaveDirectory returns the save directory path
func (sm *StateManager) GetSaveDirectory() string {
	return sm.saveDirectory
}

// ExportState writes the current state to an arbitrary file
func (sm *StateManager) ExportState(c *cpu.CPU, mem *memory.Memory, filePath, source string) error {
	state := Capture(c, mem, source, fmt.Sprintf("Export %s", time.Now().Format("2006-01-02 15:04:05")))
	state.SlotNumber = -1
	return sm.saveToFile(state, filePath)
}

// ImportState restores a state written by ExportState
func (sm *StateManager) ImportState(c *cpu.CPU, mem *memory.Memory, filePath string) (*SaveState, error) {
	state, err := sm.loadFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to import state: %w", err)
	}
	if err := state.Restore(c, mem); err != nil {
		return nil, fmt.Errorf("invalid imported state: %w", err)
	}
	return state, nil
}
