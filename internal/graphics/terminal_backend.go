package graphics

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"sim6502/internal/machine"
)

// terminalFrameInterval matches the pause between slices of the demo loop
const terminalFrameInterval = 10 * time.Millisecond

// TerminalBackend implements the Backend interface for terminal-based rendering
type TerminalBackend struct {
	initialized bool
	config      Config
	in          *os.File
	out         io.Writer
}

// TerminalWindow implements the Window interface for terminal rendering.
// Stdin is switched to raw mode and read by a goroutine that hands each
// chunk of bytes over a channel.
type TerminalWindow struct {
	title   string
	cols    int
	rows    int
	running bool

	in       *os.File
	out      io.Writer
	fd       int
	oldState *term.State
	keys     chan []byte
	stop     chan struct{}
	readDone chan struct{}

	sizeWarned bool
}

// NewTerminalBackend creates a new terminal graphics backend
func NewTerminalBackend() Backend {
	return &TerminalBackend{in: os.Stdin, out: os.Stdout}
}

// Initialize initializes the terminal backend
func (b *TerminalBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("terminal backend already initialized")
	}
	if !term.IsTerminal(int(b.in.Fd())) {
		return fmt.Errorf("terminal backend needs an interactive terminal on stdin")
	}

	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow switches the terminal to raw mode and starts reading keys
func (b *TerminalBackend) CreateWindow(title string, cols, rows int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	fd := int(b.in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set raw mode: %w", err)
	}

	w := &TerminalWindow{
		title:    title,
		cols:     cols,
		rows:     rows,
		running:  true,
		in:       b.in,
		out:      b.out,
		fd:       fd,
		oldState: oldState,
	}
	w.startReader()

	w.SetTitle(title)
	fmt.Fprint(w.out, "\033[2J")
	return w, nil
}

// Cleanup releases all terminal resources
func (b *TerminalBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false (terminal has basic output)
func (b *TerminalBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *TerminalBackend) GetName() string {
	return "Terminal"
}

// TerminalWindow implementation

func (w *TerminalWindow) startReader() {
	w.keys = make(chan []byte, 64)
	w.stop = make(chan struct{})
	w.readDone = make(chan struct{})
	go w.readKeys()
}

// readKeys forwards raw reads until stop is closed or the read fails.
// Cleanup expires the read deadline to unblock it; a blocking tty does not
// support deadlines, so there the goroutine exits on the next key instead.
func (w *TerminalWindow) readKeys() {
	defer close(w.readDone)
	buf := make([]byte, 16)
	for {
		n, err := w.in.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case w.keys <- chunk:
			case <-w.stop:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// SetTitle sets the terminal title
func (w *TerminalWindow) SetTitle(title string) {
	w.title = title
	fmt.Fprintf(w.out, "\033]0;%s\007", title)
}

// GetSize returns the screen size in characters
func (w *TerminalWindow) GetSize() (cols, rows int) {
	return w.cols, w.rows
}

// ShouldClose returns true if window should close
func (w *TerminalWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents drains the keys read since the last call without blocking
func (w *TerminalWindow) PollEvents() []InputEvent {
	var events []InputEvent
	for {
		select {
		case chunk := <-w.keys:
			events = append(events, parseTerminalInput(chunk)...)
		default:
			return events
		}
	}
}

// parseTerminalInput decodes one raw read. A lone Escape quits; escape
// sequences become cursor keys.
func parseTerminalInput(chunk []byte) []InputEvent {
	var events []InputEvent
	for i := 0; i < len(chunk); i++ {
		b := chunk[i]
		switch {
		case b == 0x1B && i+2 < len(chunk) && chunk[i+1] == '[' && chunk[i+2] >= '0' && chunk[i+2] <= '9':
			// Function keys arrive as ESC [ <number> ~
			end := i + 2
			for end < len(chunk) && chunk[end] != '~' {
				end++
			}
			if end < len(chunk) && string(chunk[i+2:end]) == "15" {
				events = append(events, InputEvent{Type: InputEventTypeResume, Pressed: true})
			}
			i = end
		case b == 0x1B && i+2 < len(chunk) && chunk[i+1] == '[':
			key := KeyUnknown
			switch chunk[i+2] {
			case 'A':
				key = KeyUp
			case 'B':
				key = KeyDown
			case 'C':
				key = KeyRight
			case 'D':
				key = KeyLeft
			case 'H':
				key = KeyHome
			}
			if key != KeyUnknown {
				events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: true})
			}
			i += 2
		case b == 0x1B:
			events = append(events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
		case b == 0x03:
			// Ctrl+C no longer raises SIGINT in raw mode
			events = append(events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
		case b == '\r' || b == '\n':
			events = append(events, InputEvent{Type: InputEventTypeKey, Key: KeyEnter, Pressed: true})
		case b == 0x7F || b == '\b':
			events = append(events, InputEvent{Type: InputEventTypeKey, Key: KeyBackspace, Pressed: true})
		default:
			events = append(events, InputEvent{Type: InputEventTypeChar, Rune: rune(b), Pressed: true})
		}
	}
	return events
}

// RenderScreen redraws the screen in place and moves the terminal cursor
// to the machine's cursor
func (w *TerminalWindow) RenderScreen(frame machine.ScreenFrame) error {
	if !w.sizeWarned {
		if width, height, err := term.GetSize(w.fd); err == nil && (width < frame.Cols || height < frame.Rows) {
			log.Printf("[TERMINAL] terminal is %dx%d, screen needs %dx%d", width, height, frame.Cols, frame.Rows)
		}
		w.sizeWarned = true
	}

	var sb strings.Builder
	sb.WriteString("\033[H")
	for _, line := range frame.Lines {
		sb.WriteString(line)
		sb.WriteString("\r\n")
	}
	fmt.Fprintf(&sb, "\033[%d;%dH", frame.CursorRow+1, frame.CursorCol+1)

	_, err := io.WriteString(w.out, sb.String())
	return err
}

// Run calls update every frame interval until it fails or the window
// closes
func (w *TerminalWindow) Run(update func() error) error {
	ticker := time.NewTicker(terminalFrameInterval)
	defer ticker.Stop()

	for range ticker.C {
		if !w.running {
			return nil
		}
		if err := update(); err != nil {
			if errors.Is(err, ErrWindowClosed) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Cleanup restores the terminal mode
func (w *TerminalWindow) Cleanup() error {
	if !w.running {
		return nil
	}
	w.running = false
	close(w.stop)
	if w.in != nil {
		if err := w.in.SetReadDeadline(time.Now()); err != nil && !errors.Is(err, os.ErrNoDeadline) {
			log.Printf("[TERMINAL] failed to interrupt key reader: %v", err)
		}
	}

	fmt.Fprint(w.out, "\033[2J\033[H")
	if w.oldState != nil {
		if err := term.Restore(w.fd, w.oldState); err != nil {
			return fmt.Errorf("failed to restore terminal: %w", err)
		}
		w.oldState = nil
	}
	return nil
}
