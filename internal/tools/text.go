package tools

import (
	"errors"
	"strings"

	"techsketch/internal/geom"
	"techsketch/internal/shape"
)

// TextTool places a text shape with a single click and keeps it in edit mode
// until Commit or Cancel.
type TextTool struct {
	gesture
	editing *shape.Shape
}

// Press commits any text being edited and opens a new edit at the snapped point.
func (t *TextTool) Press(p geom.Point) error {
	if err := t.guard(); err != nil {
		return err
	}
	if t.editing != nil {
		if err := t.Commit(); err != nil && !errors.Is(err, ErrDegenerate) {
			return err
		}
	}
	at := t.snap(p)
	sh := shape.New(shape.KindText, t.style())
	sh.Geom.Box.X, sh.Geom.Box.Y = at.X, at.Y
	sh.SetText("")
	t.editing = sh
	t.surface.SetPreview(sh, &at)
	return nil
}

func (t *TextTool) Move(geom.Point) {}

func (t *TextTool) Release(geom.Point) error { return nil }

// Cancel drops the text being edited.
func (t *TextTool) Cancel() {
	if t.editing == nil {
		return
	}
	t.editing = nil
	t.surface.SetPreview(nil, nil)
}

// Editing reports whether a text shape is open for input.
func (t *TextTool) Editing() bool {
	return t.editing != nil
}

// Text returns the text being edited.
func (t *TextTool) Text() string {
	if t.editing == nil {
		return ""
	}
	return t.editing.Geom.Text
}

// Insert appends s at the caret. Tabs become spaces and carriage returns are dropped.
func (t *TextTool) Insert(s string) {
	if t.editing == nil || s == "" {
		return
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", "    ")
	t.editing.SetText(t.editing.Geom.Text + s)
	t.refresh()
}

// Backspace deletes the character before the caret.
func (t *TextTool) Backspace() {
	if t.editing == nil {
		return
	}
	r := []rune(t.editing.Geom.Text)
	if len(r) == 0 {
		return
	}
	t.editing.SetText(string(r[:len(r)-1]))
	t.refresh()
}

// Commit ends the edit. Non-empty text is added to the layer with one Add entry.
func (t *TextTool) Commit() error {
	if t.editing == nil {
		return ErrNotEditing
	}
	sh := t.editing
	t.editing = nil
	t.surface.SetPreview(nil, nil)
	return t.commit(sh)
}

func (t *TextTool) refresh() {
	at := t.editing.Geom.Box.Min()
	t.surface.SetPreview(t.editing, &at)
}
