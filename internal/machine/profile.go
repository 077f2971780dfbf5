package machine

import (
	"fmt"
	"sort"

	"sim6502/internal/memory"
)

// ROMImage is a binary file installed at a fixed address
type ROMImage struct {
	File    string
	Address uint16
	// Protect lists the read-only parts of the image. Empty means the
	// whole image is read-only.
	Protect []memory.Region
	// Writable images are plain RAM preloads and get no protection
	Writable bool
}

// CharsetSize is the number of bytes of one 256 glyph character set
const CharsetSize = 256 * 8

// ScreenLayout locates the text screen in memory
type ScreenLayout struct {
	Address uint16
	Cols    int
	Rows    int
}

// Size returns the number of screen cells
func (s ScreenLayout) Size() int {
	return s.Cols * s.Rows
}

// Profile describes one retro machine
type Profile struct {
	Name        string
	Description string
	ROMs        []ROMImage
	Screen      ScreenLayout

	// KERNAL keyboard buffer and pending key count
	KeyBuffer uint16
	KeyCount  uint16

	// Zero page cursor position maintained by the KERNAL
	CursorRow uint16
	CursorCol uint16

	// RasterPoke is cleared after each slice so KERNAL raster waits
	// finish. Zero disables it.
	RasterPoke uint16

	// Charset is where the character glyphs sit in memory. Zero means
	// the front ends fall back to their own font.
	Charset uint16

	SliceInstructions int
}

// VIC20 is the Commodore VIC-20 with its stock KERNAL, BASIC and
// character ROMs
var VIC20 = Profile{
	Name:        "vic20",
	Description: "Commodore VIC-20, 22x23 text screen at $1000",
	ROMs: []ROMImage{
		{File: "kernal.901486-07.bin", Address: 0xE000},
		{File: "basic.901486-01.bin", Address: 0xC000},
		{File: "characters.901460-03.bin", Address: 0x8000},
	},
	Screen:            ScreenLayout{Address: 0x1000, Cols: 22, Rows: 23},
	KeyBuffer:         0x0277,
	KeyCount:          0x00C6,
	CursorRow:         0x00D6,
	CursorCol:         0x00D3,
	Charset:           0x8000,
	SliceInstructions: 10_000,
}

// C64 is the Commodore 64 booted from a combined BASIC+KERNAL image
// loaded at $A000. The I/O page inside the image stays writable.
var C64 = Profile{
	Name:        "c64",
	Description: "Commodore 64, 40x25 text screen at $0400",
	ROMs: []ROMImage{
		{File: "c64.bin", Address: 0xA000, Protect: []memory.Region{
			{Start: 0xA000, End: 0xBFFF},
			{Start: 0xE000, End: 0xFFFF},
		}},
	},
	Screen:            ScreenLayout{Address: 0x0400, Cols: 40, Rows: 25},
	KeyBuffer:         0x0277,
	KeyCount:          0x00C6,
	CursorRow:         0x00D6,
	CursorCol:         0x00D3,
	RasterPoke:        0xD012,
	SliceInstructions: 100_000,
}

// C64Split is the Commodore 64 booted from the separate stock KERNAL and
// BASIC images. The character image is copied to $D000, where the
// KERNAL expects it, and to $8000, which stays clear of the I/O registers
// and is used for drawing.
var C64Split = Profile{
	Name:        "c64-split",
	Description: "Commodore 64 from separate KERNAL/BASIC/character ROMs",
	ROMs: []ROMImage{
		{File: "kernal.901227-02.bin", Address: 0xE000},
		{File: "c64_chars.bin", Address: 0xD000, Writable: true},
		{File: "basic.901226-01.bin", Address: 0xA000},
		{File: "c64_chars.bin", Address: 0x8000, Writable: true},
	},
	Screen:            ScreenLayout{Address: 0x0400, Cols: 40, Rows: 25},
	KeyBuffer:         0x0277,
	KeyCount:          0x00C6,
	CursorRow:         0x00D6,
	CursorCol:         0x00D3,
	RasterPoke:        0xD012,
	Charset:           0x8000,
	SliceInstructions: 10_000,
}

var profiles = map[string]Profile{
	VIC20.Name:    VIC20,
	C64.Name:      C64,
	C64Split.Name: C64Split,
}

// ProfileNames returns the known profile names in sorted order
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetProfile looks up a profile by name
func GetProfile(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown machine %q (known: %v)", name, ProfileNames())
	}
	return p, nil
}
