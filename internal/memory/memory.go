// Package memory implements the flat 64KB address space used by the 6502 core.
package memory

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	// Size is the number of addressable bytes
	Size = 0x10000
	// ResetVector holds the little-endian power-on entry point
	ResetVector = 0xFFFC
	// DefaultEntry is written to the reset vector by Reset
	DefaultEntry = 0x1000
)

// ErrImageTooLarge is returned when loaded data would run past $FFFF.
var ErrImageTooLarge = errors.New("image does not fit in the address space")

// Region is an inclusive address range
type Region struct {
	Start uint16
	End   uint16
}

// Contains reports whether address lies inside the region
func (r Region) Contains(address uint16) bool {
	return address >= r.Start && address <= r.End
}

// Snippet is a block of code or data placed at a fixed address
type Snippet struct {
	Address uint16
	Name    string
	Data    []uint8
}

// Memory represents the 6502 address space
type Memory struct {
	data [Size]uint8

	// Ranges that ignore CPU writes (ROM images)
	readOnly []Region

	// Writes dropped by the read-only policy, for diagnostics
	droppedWrites uint64
}

// New creates a new Memory instance with all bytes cleared
func New() *Memory {
	return &Memory{}
}

// Clear zeroes every byte
func (m *Memory) Clear() {
	m.data = [Size]uint8{}
}

// Reset zeroes memory and points the reset vector at DefaultEntry.
// Read-only regions stay registered.
func (m *Memory) Reset() {
	m.Clear()
	m.data[ResetVector] = uint8(DefaultEntry & 0xFF)
	m.data[ResetVector+1] = uint8(DefaultEntry >> 8)
	m.droppedWrites = 0
}

// Read reads a byte from the given address
func (m *Memory) Read(address uint16) uint8 {
	return m.data[address]
}

// Write writes a byte to the given address unless it is read-only
func (m *Memory) Write(address uint16, value uint8) {
	if m.IsReadOnly(address) {
		m.droppedWrites++
		return
	}
	m.data[address] = value
}

// ReadWord reads a little-endian word. The high byte comes from
// address+1, wrapping from $FFFF to $0000.
func (m *Memory) ReadWord(address uint16) uint16 {
	low := uint16(m.data[address])
	high := uint16(m.data[address+1])
	return high<<8 | low
}

// WriteWord writes a little-endian word through Write
func (m *Memory) WriteWord(address uint16, value uint16) {
	m.Write(address, uint8(value&0xFF))
	m.Write(address+1, uint8(value>>8))
}

// AddReadOnly protects the inclusive range start..end from CPU writes
func (m *Memory) AddReadOnly(start, end uint16) {
	if end < start {
		start, end = end, start
	}
	m.readOnly = append(m.readOnly, Region{Start: start, End: end})
}

// ClearReadOnly removes every protected range
func (m *Memory) ClearReadOnly() {
	m.readOnly = nil
}

// IsReadOnly reports whether writes to address are dropped
func (m *Memory) IsReadOnly(address uint16) bool {
	for _, r := range m.readOnly {
		if r.Contains(address) {
			return true
		}
	}
	return false
}

// ReadOnlyRegions returns a copy of the protected ranges
func (m *Memory) ReadOnlyRegions() []Region {
	regions := make([]Region, len(m.readOnly))
	copy(regions, m.readOnly)
	return regions
}

// DroppedWrites returns the number of writes ignored since the last Reset
func (m *Memory) DroppedWrites() uint64 {
	return m.droppedWrites
}

// Load copies data into memory starting at address. It bypasses the
// read-only policy, which is how ROM images are installed.
func (m *Memory) Load(address uint16, data []uint8) error {
	if int(address)+len(data) > Size {
		return fmt.Errorf("%d bytes at $%04X: %w", len(data), address, ErrImageTooLarge)
	}
	copy(m.data[address:], data)
	return nil
}

// LoadFile loads a binary image from disk and returns its length
func (m *Memory) LoadFile(path string, address uint16) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	if err := m.Load(address, data); err != nil {
		return 0, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	return len(data), nil
}

// LoadSnippets loads each snippet at its own address
func (m *Memory) LoadSnippets(snippets []Snippet) error {
	for _, s := range snippets {
		if err := m.Load(s.Address, s.Data); err != nil {
			return fmt.Errorf("snippet %q: %w", s.Name, err)
		}
	}
	return nil
}

// Slice returns a copy of count bytes starting at address, wrapping at $FFFF
func (m *Memory) Slice(address uint16, count int) []uint8 {
	out := make([]uint8, count)
	for i := range out {
		out[i] = m.data[address+uint16(i)]
	}
	return out
}

// Dump formats count bytes starting at address as "aaaa: 0xNN, 0xNN, "
func (m *Memory) Dump(address uint16, count int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04x: ", address)
	for _, b := range m.Slice(address, count) {
		fmt.Fprintf(&sb, "0x%02x, ", b)
	}
	return strings.TrimRight(sb.String(), " ")
}
