package editor

import (
	"techsketch/internal/tools"
)

// gridStep is how much + and - change the cell size.
const gridStep = 5

var (
	undoKeys = map[string]bool{"ctrl+z": true, "cmd+z": true, "super+z": true}
	redoKeys = map[string]bool{"ctrl+y": true, "cmd+y": true, "super+y": true, "ctrl+shift+z": true}
)

// HandleKey applies a keyboard shortcut and reports whether the key was
// consumed. key uses bubbletea's key names ("ctrl+z", "v", "]"). Letter and
// symbol shortcuts are ignored while textFocused is set; undo and redo are not.
func (e *Editor) HandleKey(key string, textFocused bool) bool {
	if undoKeys[key] {
		_ = e.Undo()
		return true
	}
	if redoKeys[key] {
		_ = e.Redo()
		return true
	}
	if textFocused {
		return false
	}

	if r := []rune(key); len(r) == 1 {
		if t, ok := tools.ForShortcut(r[0]); ok {
			e.ClearNotice()
			e.SetTool(t)
			return true
		}
	}

	active := e.registry.ActiveID()
	switch key {
	case "g":
		e.ToggleGrid()
	case "s":
		e.ToggleSnap()
	case "[":
		e.CycleLayer(-1)
	case "]":
		e.CycleLayer(1)
	case "n":
		e.AddLayer()
	case "x":
		_ = e.RemoveLayer(active)
	case "h":
		_ = e.ToggleVisibility(active)
	case "k":
		_ = e.ToggleLock(active)
	case "+", "=":
		e.AdjustGridSize(gridStep)
	case "-":
		e.AdjustGridSize(-gridStep)
	case "p":
		e.SetPrintMode(!e.printMode)
	case "delete", "backspace":
		if e.tool != tools.Select {
			return false
		}
		_ = e.DeleteSelection()
	default:
		return false
	}
	return true
}
