package graphics

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"sim6502/internal/machine"
)

// defaultHeadlessFrames bounds Run when no frame limit is set
const defaultHeadlessFrames = 600

// HeadlessBackend implements the Backend interface for headless operation
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow implements the Window interface for headless operation.
// It keeps the last rendered screen and replays queued input, one batch
// per frame.
type HeadlessWindow struct {
	title      string
	cols       int
	rows       int
	running    bool
	frameCount int
	maxFrames  int
	lastFrame  machine.ScreenFrame
	pending    [][]InputEvent
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates a headless "window" (no actual window)
func (b *HeadlessBackend) CreateWindow(title string, cols, rows int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	return &HeadlessWindow{
		title:     title,
		cols:      cols,
		rows:      rows,
		running:   true,
		maxFrames: defaultHeadlessFrames,
	}, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true (this is a headless backend)
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// HeadlessWindow implementation

// SetTitle sets the window title (for logging purposes)
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns the screen size in characters
func (w *HeadlessWindow) GetSize() (cols, rows int) {
	return w.cols, w.rows
}

// ShouldClose returns true if window should close
func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns the next queued batch of events
func (w *HeadlessWindow) PollEvents() []InputEvent {
	if len(w.pending) == 0 {
		return nil
	}
	events := w.pending[0]
	w.pending = w.pending[1:]
	return events
}

// QueueEvents schedules events to be returned by a later PollEvents call
func (w *HeadlessWindow) QueueEvents(events ...InputEvent) {
	w.pending = append(w.pending, events)
}

// QueueText schedules text as a paste event
func (w *HeadlessWindow) QueueText(text string) {
	w.QueueEvents(InputEvent{Type: InputEventTypePaste, Text: text, Pressed: true})
}

// SetMaxFrames limits how many frames Run executes
func (w *HeadlessWindow) SetMaxFrames(n int) {
	w.maxFrames = n
}

// RenderScreen records the frame
func (w *HeadlessWindow) RenderScreen(frame machine.ScreenFrame) error {
	w.frameCount++
	w.lastFrame = frame
	return nil
}

// Run calls update until it fails, the window closes or the frame limit
// is reached
func (w *HeadlessWindow) Run(update func() error) error {
	for frame := 0; w.running && frame < w.maxFrames; frame++ {
		if err := update(); err != nil {
			if errors.Is(err, ErrWindowClosed) {
				return nil
			}
			return err
		}
	}
	return nil
}

// LastFrame returns the most recently rendered screen
func (w *HeadlessWindow) LastFrame() machine.ScreenFrame {
	return w.lastFrame
}

// SaveFrame writes the last rendered screen as plain text
func (w *HeadlessWindow) SaveFrame(path string) error {
	var sb strings.Builder
	for _, line := range w.lastFrame.Lines {
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to save frame %s: %w", path, err)
	}
	return nil
}

// Cleanup releases window resources
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// GetFrameCount returns the current frame count
func (w *HeadlessWindow) GetFrameCount() int {
	return w.frameCount
}

// AsHeadlessWindow tries to cast a Window to HeadlessWindow
func AsHeadlessWindow(window Window) (*HeadlessWindow, bool) {
	headless, ok := window.(*HeadlessWindow)
	return headless, ok
}
