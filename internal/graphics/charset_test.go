package graphics

import (
	"image/color"
	"testing"

	"sim6502/internal/machine"
)

func TestRenderGlyphs(t *testing.T) {
	fg := color.RGBA{R: 0xFF, A: 0xFF}
	bg := color.RGBA{B: 0xFF, A: 0xFF}

	charset := make([]uint8, machine.CharsetSize)
	charset[1*8] = 0x80      // glyph 1: top left pixel
	charset[0x81*8+7] = 0x01 // glyph $81: bottom right pixel

	frame := machine.ScreenFrame{Cols: 2, Rows: 1, Codes: []uint8{0x01, 0x81}, Charset: charset}
	img := RenderGlyphs(frame, fg, bg)
	if img == nil {
		t.Fatal("Expected an image for a frame with a character set")
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Fatalf("Expected 16x8 image, got %dx%d", b.Dx(), b.Dy())
	}

	tests := []struct {
		x, y     int
		expected color.RGBA
	}{
		{0, 0, fg},
		{1, 0, bg},
		{0, 1, bg},
		{15, 7, fg},
		{8, 0, bg},
		{14, 7, bg},
	}
	for _, test := range tests {
		if got := img.RGBAAt(test.x, test.y); got != test.expected {
			t.Errorf("Pixel (%d,%d): expected %v, got %v", test.x, test.y, test.expected, got)
		}
	}
}

func TestRenderGlyphsWithoutCharset(t *testing.T) {
	frame := machine.ScreenFrame{Cols: 2, Rows: 1, Codes: []uint8{1, 2}, Lines: []string{"AB"}}
	if img := RenderGlyphs(frame, color.White, color.Black); img != nil {
		t.Error("Expected nil without a character set")
	}

	frame.Charset = make([]uint8, machine.CharsetSize)
	frame.Codes = []uint8{1}
	if img := RenderGlyphs(frame, color.White, color.Black); img != nil {
		t.Error("Expected nil when screen codes are missing")
	}
}
