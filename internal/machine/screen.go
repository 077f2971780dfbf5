package machine

import (
	"strings"
)

// ScreenCodeToASCII maps a Commodore screen code to a printable character.
// Codes without an ASCII equivalent, including reverse video, become '.'.
func ScreenCodeToASCII(code uint8) byte {
	switch {
	case code == 0x00:
		return '@'
	case code <= 0x1A:
		return 'A' + code - 1
	case code == 0x1B:
		return '['
	case code == 0x1C:
		return '$' // pound
	case code == 0x1D:
		return ']'
	case code == 0x1E:
		return '|' // up arrow
	case code == 0x1F:
		return '-' // left arrow
	case code <= 0x3F:
		return code
	default:
		return '.'
	}
}

// ScreenFrame is a decoded text screen
type ScreenFrame struct {
	Cols  int
	Rows  int
	Lines []string
	// Codes holds the raw screen codes row by row
	Codes []uint8
	// Charset holds the machine's glyphs, 8 bytes per screen code, when
	// the profile has a character ROM
	Charset []uint8

	CursorRow int
	CursorCol int
	Frame     uint64
}

// String joins the lines with newlines
func (f ScreenFrame) String() string {
	return strings.Join(f.Lines, "\n")
}

// Line returns row, or an empty string when row is out of range
func (f ScreenFrame) Line(row int) string {
	if row < 0 || row >= len(f.Lines) {
		return ""
	}
	return f.Lines[row]
}

func decodeScreen(raw []uint8, cols, rows int) []string {
	lines := make([]string, rows)
	buf := make([]byte, cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			buf[x] = ScreenCodeToASCII(raw[y*cols+x])
		}
		lines[y] = string(buf)
	}
	return lines
}
