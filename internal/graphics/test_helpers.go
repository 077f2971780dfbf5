//go:build !headless
// +build !headless

package graphics

import "sim6502/internal/machine"

// Test helper methods for accessing internal state during testing

// GetFrameForTesting returns the screen the next Draw will paint
func (w *EbitengineWindow) GetFrameForTesting() machine.ScreenFrame {
	if w.game == nil {
		return machine.ScreenFrame{}
	}
	return w.game.frame
}

// GetGameForTesting returns the internal game instance for testing purposes
func (w *EbitengineWindow) GetGameForTesting() *EbitengineGame {
	return w.game
}

// SetUpdateFuncForTesting installs the per-frame callback without starting
// the game loop
func (w *EbitengineWindow) SetUpdateFuncForTesting(update func() error) {
	w.update = update
}
