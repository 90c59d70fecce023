package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeText
	ModeRename
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "TEXT"
	case ModeRename:
		return "RENAME"
	default:
		return "NORMAL"
	}
}

const (
	defaultCellWidth  = 8
	defaultCellHeight = 16
	panelWidth        = 24
	statusHeight      = 1
	inkGain           = 4.0 // darkening applied to downscaled pixels so thin strokes stay visible
	upperHalfBlock    = "▀"
	cursorGlyph       = "┼"
)
