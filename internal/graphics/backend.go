// Package graphics provides the text-screen front ends for the retro
// machines: a raw-mode terminal, an Ebitengine window and a headless
// capture backend for tests and batch runs.
package graphics

import (
	"errors"
	"fmt"

	"sim6502/internal/input"
	"sim6502/internal/machine"
)

// ErrWindowClosed is returned by an update function to end Run cleanly
var ErrWindowClosed = errors.New("window closed")

// Backend represents a text-screen front end
type Backend interface {
	// Initialize initializes the graphics backend
	Initialize(config Config) error

	// CreateWindow creates a window showing cols x rows characters
	CreateWindow(title string, cols, rows int) (Window, error)

	// Cleanup releases all resources
	Cleanup() error

	// IsHeadless returns true if nothing is shown to the user
	IsHeadless() bool

	// GetName returns the backend name for identification
	GetName() string
}

// Window represents a rendering window
type Window interface {
	// SetTitle sets the window title
	SetTitle(title string)

	// GetSize returns the screen size in characters
	GetSize() (cols, rows int)

	// ShouldClose returns true if window should close
	ShouldClose() bool

	// PollEvents returns the input events received since the last call
	PollEvents() []InputEvent

	// RenderScreen shows a decoded text screen
	RenderScreen(frame machine.ScreenFrame) error

	// Run calls update once per frame until it returns an error or the
	// window closes. ErrWindowClosed ends Run without an error.
	Run(update func() error) error

	// Cleanup releases window resources
	Cleanup() error
}

// Config contains configuration for graphics backends
type Config struct {
	WindowTitle string
	Scale       int
	Fullscreen  bool
	VSync       bool

	Headless bool
	Debug    bool
}

// InputEvent represents an input event from the window
type InputEvent struct {
	Type      InputEventType
	Key       Key
	Rune      rune
	Text      string
	Pressed   bool
	Modifiers ModifierKey
}

// InputEventType represents the type of input event
type InputEventType int

const (
	// InputEventTypeKey is a special key press
	InputEventTypeKey InputEventType = iota
	// InputEventTypeChar is one typed character in Rune
	InputEventTypeChar
	// InputEventTypePaste is pasted text in Text
	InputEventTypePaste
	// InputEventTypeQuit asks the application to stop
	InputEventTypeQuit
	// InputEventTypeResume continues a machine paused at a breakpoint (F5)
	InputEventTypeResume
)

// Key represents the special keys the machines understand
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
)

// ModifierKey represents modifier keys
type ModifierKey int

const (
	ModifierNone  ModifierKey = 0
	ModifierShift ModifierKey = 1 << iota
	ModifierCtrl
	ModifierAlt
	ModifierSuper
)

// BackendType represents different graphics backend types
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
	BackendTerminal   BackendType = "terminal"
)

// CreateBackend creates a graphics backend of the specified type. An empty
// type selects the terminal.
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendEbitengine:
		return NewEbitengineBackend(), nil
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	case BackendTerminal, "":
		return NewTerminalBackend(), nil
	default:
		return nil, fmt.Errorf("unknown graphics backend %q", backendType)
	}
}

// KeyCodes converts an input event to machine key codes
func KeyCodes(event InputEvent) []uint8 {
	switch event.Type {
	case InputEventTypeKey:
		if !event.Pressed {
			return nil
		}
		if code, ok := specialKeyCode(event.Key); ok {
			return []uint8{code}
		}
	case InputEventTypeChar:
		if code, ok := input.Translate(event.Rune); ok {
			return []uint8{code}
		}
	case InputEventTypePaste:
		var codes []uint8
		for _, r := range event.Text {
			if code, ok := input.Translate(r); ok {
				codes = append(codes, code)
			}
		}
		return codes
	}
	return nil
}

func specialKeyCode(key Key) (uint8, bool) {
	switch key {
	case KeyEnter:
		return input.KeyReturn, true
	case KeyBackspace:
		return input.KeyDelete, true
	case KeyUp:
		return input.KeyCursorUp, true
	case KeyDown:
		return input.KeyCursorDown, true
	case KeyLeft:
		return input.KeyCursorLeft, true
	case KeyRight:
		return input.KeyCursorRight, true
	case KeyHome:
		return input.KeyHome, true
	default:
		return 0, false
	}
}

// normalizePasteText turns CRLF and lone CR into LF
func normalizePasteText(raw []byte) string {
	norm := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\r' {
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
			norm = append(norm, '\n')
			continue
		}
		norm = append(norm, raw[i])
	}
	return string(norm)
}

// AsEbitengineWindow tries to cast a Window to EbitengineWindow
func AsEbitengineWindow(window Window) (*EbitengineWindow, bool) {
	if ebitengineWindow, ok := window.(*EbitengineWindow); ok {
		return ebitengineWindow, true
	}
	return nil, false
}
