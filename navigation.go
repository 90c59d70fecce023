package main

import (
	"techsketch/internal/geom"
	"techsketch/internal/tools"
)

// canvasCells returns the size of the drawing area in terminal cells.
func (m *model) canvasCells() (int, int) {
	cols := m.width - panelWidth
	rows := m.height - statusHeight
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// worldAt maps a terminal cell to the canvas pixel at its centre.
func (m *model) worldAt(col, row int) geom.Point {
	cw, ch := m.config.Cell.Width, m.config.Cell.Height
	return geom.Pt(float64(col*cw)+float64(cw)/2, float64(row*ch)+float64(ch)/2)
}

func (m *model) inCanvas(col, row int) bool {
	cols, rows := m.canvasCells()
	return col >= 0 && row >= 0 && col < cols && row < rows
}

func (m *model) handleCursorMove(key string, speed int) {
	switch key {
	case "left", "shift+left":
		m.cursorX -= speed
	case "right", "shift+right":
		m.cursorX += speed
	case "up", "shift+up":
		m.cursorY -= speed
	case "down", "shift+down":
		m.cursorY += speed
	}
	m.ensureCursorInBounds()
	if m.keyPressed {
		m.editor.PointerMove(m.worldAt(m.cursorX, m.cursorY))
	}
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "shift+left", "shift+right", "shift+up", "shift+down":
		return 4
	default:
		return 1
	}
}

func (m *model) ensureCursorInBounds() {
	cols, rows := m.canvasCells()
	m.cursorX = clamp(m.cursorX, 0, cols-1)
	m.cursorY = clamp(m.cursorY, 0, rows-1)
}

// toggleKeyPointer presses at the cursor, or releases if already pressed, so
// space twice performs a full gesture without a mouse.
func (m *model) toggleKeyPointer() {
	p := m.worldAt(m.cursorX, m.cursorY)
	if !m.keyPressed {
		if err := m.editor.PointerDown(p); err != nil {
			return
		}
		if m.editor.Tool() == tools.Text || m.editor.Tool() == tools.Erase {
			_ = m.editor.PointerUp(p)
			return
		}
		m.keyPressed = true
		return
	}
	m.keyPressed = false
	_ = m.editor.PointerUp(p)
}
