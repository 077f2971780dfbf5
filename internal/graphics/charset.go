package graphics

import (
	"image"
	"image/color"

	"sim6502/internal/machine"
)

// glyphSize is the width and height of one character ROM glyph
const glyphSize = 8

// RenderGlyphs draws the frame's screen codes with the machine's own
// character ROM, one 8x8 cell per code. It returns nil when the frame
// carries no character set, so callers can fall back to a font.
func RenderGlyphs(frame machine.ScreenFrame, fg, bg color.Color) *image.RGBA {
	cells := frame.Cols * frame.Rows
	if cells <= 0 || len(frame.Charset) < machine.CharsetSize || len(frame.Codes) < cells {
		return nil
	}

	img := image.NewRGBA(image.Rect(0, 0, frame.Cols*glyphSize, frame.Rows*glyphSize))
	fgc := color.RGBAModel.Convert(fg).(color.RGBA)
	bgc := color.RGBAModel.Convert(bg).(color.RGBA)

	for cell := 0; cell < cells; cell++ {
		glyph := frame.Charset[int(frame.Codes[cell])*glyphSize:]
		x0 := (cell % frame.Cols) * glyphSize
		y0 := (cell / frame.Cols) * glyphSize
		for y := 0; y < glyphSize; y++ {
			bits := glyph[y]
			for x := 0; x < glyphSize; x++ {
				if bits&(0x80>>x) != 0 {
					img.SetRGBA(x0+x, y0+y, fgc)
				} else {
					img.SetRGBA(x0+x, y0+y, bgc)
				}
			}
		}
	}
	return img
}
