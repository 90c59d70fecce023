package main

import (
	"github.com/charmbracelet/bubbles/textinput"

	"techsketch/internal/editor"
	"techsketch/internal/util"
)

type model struct {
	width          int
	height         int
	cursorX        int
	cursorY        int
	keyPressed     bool // space started a gesture at the cursor
	mousePressed   bool
	help           bool
	helpScroll     int
	rename         textinput.Model
	renaming       bool
	editor         *editor.Editor
	config         *Config
	logger         *util.Logger
	logLevelFlag   string // -log-level, survives config reloads
	errorMessage   string
	successMessage string
}

// configReloadMsg carries a freshly loaded config from the file watcher.
type configReloadMsg struct {
	cfg *Config
	err error
}
