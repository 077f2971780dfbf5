// Package input implements the host keyboard queue feeding the retro
// machines' keyboard buffers.
package input

import (
	"log"
	"unicode"
)

// Machine key codes that have no printable ASCII form
const (
	KeyStop        uint8 = 0x03
	KeyReturn      uint8 = 0x0D
	KeyCursorDown  uint8 = 0x11
	KeyHome        uint8 = 0x13
	KeyDelete      uint8 = 0x14
	KeyCursorRight uint8 = 0x1D
	KeyCursorUp    uint8 = 0x91
	KeyClear       uint8 = 0x93
	KeyCursorLeft  uint8 = 0x9D
)

// DefaultCapacity is the queue length used by New when capacity <= 0
const DefaultCapacity = 256

// Translate converts a host character to the machine key code. Lower-case
// letters map to upper case, newline and carriage return map to KeyReturn
// and backspace maps to KeyDelete. ok is false for characters the machines
// cannot type.
func Translate(r rune) (code uint8, ok bool) {
	switch r {
	case '\n', '\r':
		return KeyReturn, true
	case '\b', 0x7F:
		return KeyDelete, true
	}
	if r >= 'a' && r <= 'z' {
		r = unicode.ToUpper(r)
	}
	if r >= 0x20 && r <= 0x5F {
		return uint8(r), true
	}
	return 0, false
}

// Keyboard is a bounded FIFO of machine key codes
type Keyboard struct {
	queue    []uint8
	capacity int

	// Debug tracking
	pushCount    uint64
	popCount     uint64
	dropCount    uint64
	debugEnabled bool
}

// New creates a keyboard queue holding at most capacity keys
func New(capacity int) *Keyboard {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Keyboard{
		queue:    make([]uint8, 0, capacity),
		capacity: capacity,
	}
}

// Push queues a key code. It returns false and drops the key when the
// queue is full.
func (k *Keyboard) Push(code uint8) bool {
	if len(k.queue) >= k.capacity {
		k.dropCount++
		if k.debugEnabled {
			log.Printf("[KEYBOARD_DEBUG] queue full, dropped key 0x%02X", code)
		}
		return false
	}
	k.queue = append(k.queue, code)
	k.pushCount++
	if k.debugEnabled {
		log.Printf("[KEYBOARD_DEBUG] Push: key=0x%02X, queued=%d", code, len(k.queue))
	}
	return true
}

// PushRune translates and queues a host character
func (k *Keyboard) PushRune(r rune) bool {
	code, ok := Translate(r)
	if !ok {
		return false
	}
	return k.Push(code)
}

// PushString queues every typeable character of s and returns how many
// were queued
func (k *Keyboard) PushString(s string) int {
	queued := 0
	for _, r := range s {
		if k.PushRune(r) {
			queued++
		}
	}
	return queued
}

// Pop removes and returns the oldest key
func (k *Keyboard) Pop() (uint8, bool) {
	if len(k.queue) == 0 {
		return 0, false
	}
	code := k.queue[0]
	k.queue = k.queue[1:]
	k.popCount++
	return code, true
}

// Len returns the number of queued keys
func (k *Keyboard) Len() int {
	return len(k.queue)
}

// Reset discards queued keys and clears the counters
func (k *Keyboard) Reset() {
	k.queue = k.queue[:0]
	k.pushCount = 0
	k.popCount = 0
	k.dropCount = 0
}

// Dropped returns the number of keys lost to a full queue
func (k *Keyboard) Dropped() uint64 {
	return k.dropCount
}

// EnableDebug enables debug logging for this keyboard
func (k *Keyboard) EnableDebug(enable bool) {
	k.debugEnabled = enable
}
