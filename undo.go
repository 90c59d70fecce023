package main

import (
	"errors"

	"techsketch/internal/history"
)

// undo and redo back the u/U keys; ctrl+z and ctrl+y go through the editor's
// key handling.
func (m *model) undo() {
	m.releasePointers()
	if err := m.editor.Undo(); err != nil && !errors.Is(err, history.ErrNothingToUndo) {
		m.logger.Debugf("undo: %v", err)
	}
}

func (m *model) redo() {
	m.releasePointers()
	if err := m.editor.Redo(); err != nil && !errors.Is(err, history.ErrNothingToRedo) {
		m.logger.Debugf("redo: %v", err)
	}
}

// releasePointers forgets half-finished gestures; the editor cancels them on
// undo and redo.
func (m *model) releasePointers() {
	m.keyPressed = false
	m.mousePressed = false
}

// syncPointers drops the pressed state when a shortcut made the editor
// cancel the gesture it belonged to.
func (m *model) syncPointers() {
	if !m.editor.Gesturing() {
		m.releasePointers()
	}
}
