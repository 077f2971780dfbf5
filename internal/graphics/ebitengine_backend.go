//go:build !headless
// +build !headless

package graphics

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"

	"sim6502/internal/machine"
)

// Character cell size of basicfont.Face7x13
const (
	cellWidth    = 7
	cellHeight   = 13
	cellBaseline = 10
	maxPasteSize = 4096
)

var (
	screenBackground = color.RGBA{R: 0x40, G: 0x31, B: 0x8D, A: 0xFF}
	screenForeground = color.RGBA{R: 0x7B, G: 0x71, B: 0xD5, A: 0xFF}
)

// EbitengineBackend implements the Backend interface using Ebitengine
type EbitengineBackend struct {
	initialized bool
	config      Config
	game        *EbitengineGame
}

// EbitengineWindow implements the Window interface for Ebitengine
type EbitengineWindow struct {
	backend *EbitengineBackend
	title   string
	cols    int
	rows    int
	game    *EbitengineGame
	running bool
	events  []InputEvent
	update  func() error

	clipboardOnce sync.Once
	clipboardOK   bool
}

// EbitengineGame implements ebiten.Game for the text screen
type EbitengineGame struct {
	window *EbitengineWindow
	frame  machine.ScreenFrame
	cursor *ebiten.Image
	glyphs *ebiten.Image

	drawCount int
	updateErr error
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("Ebitengine backend already initialized")
	}
	if config.Scale <= 0 {
		config.Scale = 2
	}

	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow creates an Ebitengine window sized for cols x rows cells
func (b *EbitengineBackend) CreateWindow(title string, cols, rows int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}
	if b.config.Headless {
		return nil, fmt.Errorf("cannot create window in headless mode")
	}
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("invalid screen size %dx%d", cols, rows)
	}

	game := &EbitengineGame{
		cursor: ebiten.NewImage(cellWidth, cellHeight),
	}
	game.cursor.Fill(screenForeground)

	window := &EbitengineWindow{
		backend: b,
		title:   title,
		cols:    cols,
		rows:    rows,
		game:    game,
		running: true,
	}
	game.window = window
	b.game = game

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(cols*cellWidth*b.config.Scale, rows*cellHeight*b.config.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(b.config.VSync)
	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return window, nil
}

// Cleanup releases all Ebitengine resources
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true if running in headless mode
func (b *EbitengineBackend) IsHeadless() bool {
	return b.config.Headless
}

// GetName returns the backend name
func (b *EbitengineBackend) GetName() string {
	return "Ebitengine"
}

// EbitengineWindow implementation

// SetTitle sets the window title
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// GetSize returns the screen size in characters
func (w *EbitengineWindow) GetSize() (cols, rows int) {
	return w.cols, w.rows
}

// ShouldClose returns true if window should close
func (w *EbitengineWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns the events gathered by the last Update
func (w *EbitengineWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil
	return events
}

// RenderScreen stores the frame; Draw paints it on the next tick
func (w *EbitengineWindow) RenderScreen(frame machine.ScreenFrame) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}
	w.game.frame = frame
	return nil
}

// Cleanup releases window resources
func (w *EbitengineWindow) Cleanup() error {
	w.running = false
	return nil
}

// Run starts the Ebitengine game loop. It must be called from the main
// goroutine.
func (w *EbitengineWindow) Run(update func() error) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}
	w.update = update

	if err := ebiten.RunGame(w.game); err != nil {
		return err
	}
	return w.game.updateErr
}

// EbitengineGame implementation

// Update implements ebiten.Game.Update
func (g *EbitengineGame) Update() error {
	w := g.window
	if w == nil {
		return nil
	}
	if !w.running {
		return ebiten.Termination
	}

	w.events = append(w.events, w.collectInput()...)

	if w.update != nil {
		if err := w.update(); err != nil {
			w.running = false
			if !errors.Is(err, ErrWindowClosed) {
				g.updateErr = err
			}
			return ebiten.Termination
		}
	}
	return nil
}

// Draw implements ebiten.Game.Draw
func (g *EbitengineGame) Draw(screen *ebiten.Image) {
	screen.Fill(screenBackground)

	if bitmap := RenderGlyphs(g.frame, screenForeground, screenBackground); bitmap != nil {
		// Machine glyphs are 8x8; stretch them over the font-sized cells
		w, h := bitmap.Bounds().Dx(), bitmap.Bounds().Dy()
		if g.glyphs == nil || g.glyphs.Bounds().Dx() != w || g.glyphs.Bounds().Dy() != h {
			g.glyphs = ebiten.NewImage(w, h)
		}
		g.glyphs.WritePixels(bitmap.Pix)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(cellWidth)/glyphSize, float64(cellHeight)/glyphSize)
		screen.DrawImage(g.glyphs, op)
	} else {
		face := basicfont.Face7x13
		for row, line := range g.frame.Lines {
			text.Draw(screen, line, face, 0, row*cellHeight+cellBaseline, screenForeground)
		}
	}

	if (g.drawCount/30)%2 == 0 && g.frame.CursorRow < g.frame.Rows && g.frame.CursorCol < g.frame.Cols {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(g.frame.CursorCol*cellWidth), float64(g.frame.CursorRow*cellHeight))
		screen.DrawImage(g.cursor, op)
	}

	g.drawCount++
	if g.drawCount%1800 == 0 {
		log.Printf("[Ebitengine] drawn %d frames", g.drawCount)
	}
}

// Layout implements ebiten.Game.Layout. The logical screen is one pixel
// per font pixel; Ebitengine scales it to the window.
func (g *EbitengineGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return g.window.cols * cellWidth, g.window.rows * cellHeight
}

var specialKeys = map[ebiten.Key]Key{
	ebiten.KeyEnter:       KeyEnter,
	ebiten.KeyNumpadEnter: KeyEnter,
	ebiten.KeyBackspace:   KeyBackspace,
	ebiten.KeyArrowUp:     KeyUp,
	ebiten.KeyArrowDown:   KeyDown,
	ebiten.KeyArrowLeft:   KeyLeft,
	ebiten.KeyArrowRight:  KeyRight,
	ebiten.KeyHome:        KeyHome,
}

func (w *EbitengineWindow) collectInput() []InputEvent {
	var events []InputEvent

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		events = append(events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		events = append(events, InputEvent{Type: InputEventTypeResume, Pressed: true})
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	// Ctrl+Shift+V pastes the host clipboard
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		if pasted, ok := w.readClipboard(); ok {
			events = append(events, InputEvent{Type: InputEventTypePaste, Text: pasted, Modifiers: ModifierCtrl | ModifierShift})
		}
		return events
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		events = append(events, InputEvent{Type: InputEventTypeChar, Rune: r, Pressed: true})
	}

	for ebitenKey, key := range specialKeys {
		if inpututil.IsKeyJustPressed(ebitenKey) {
			events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: true})
		}
	}
	return events
}

func (w *EbitengineWindow) readClipboard() (string, bool) {
	w.clipboardOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			log.Printf("[Ebitengine] clipboard unavailable: %v", err)
			return
		}
		w.clipboardOK = true
	})
	if !w.clipboardOK {
		return "", false
	}

	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return "", false
	}
	if len(data) > maxPasteSize {
		data = data[:maxPasteSize]
	}
	return normalizePasteText(data), true
}
