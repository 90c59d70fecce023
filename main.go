package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"techsketch/internal/editor"
	"techsketch/internal/util"
)

func main() {
	cfgPath := flag.String("config", defaultConfigPath(), "path to YAML config")
	logLevel := flag.String("log-level", "", "log level (debug|info|warn|error), overrides the config")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	f, err := tea.LogToFile(cfg.Log.File, "techsketch")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	logger := util.NewLoggerWithWriter(cfg.logLevel(), f)

	mdl := initialModel(cfg, logger)
	mdl.logLevelFlag = *logLevel
	p := tea.NewProgram(
		mdl,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	stop, err := startConfigWatcher(*cfgPath, logger, p)
	if err != nil {
		logger.Warnf("config hot reload disabled: %v", err)
	} else {
		defer stop()
	}

	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

func initialModel(cfg *Config, logger *util.Logger) model {
	ti := textinput.New()
	ti.Prompt = "Rename: "
	ti.Placeholder = "layer name"
	ti.CharLimit = 40

	return model{
		rename: ti,
		config: cfg,
		logger: logger,
		editor: editor.New(editor.Options{
			Grid:         cfg.grid(),
			Style:        cfg.style(),
			HistoryLimit: cfg.History.Limit,
			Logger:       logger,
		}),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeCanvas()
		return m, nil

	case configReloadMsg:
		m.applyConfig(msg)
		return m, nil

	case tea.MouseMsg:
		if !m.help && !m.renaming {
			m.handleMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.renaming {
		var cmd tea.Cmd
		m.rename, cmd = m.rename.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) resizeCanvas() {
	cols, rows := m.canvasCells()
	m.editor.Resize(cols*m.config.Cell.Width, rows*m.config.Cell.Height)
	m.ensureCursorInBounds()
}

func (m *model) applyConfig(msg configReloadMsg) {
	if msg.err != nil {
		m.errorMessage = fmt.Sprintf("Config reload failed: %v", msg.err)
		m.logger.Errorf("config reload: %v", msg.err)
		return
	}
	if m.logLevelFlag != "" {
		msg.cfg.Log.Level = m.logLevelFlag
	}
	m.config = msg.cfg
	m.logger.SetLevel(msg.cfg.logLevel())
	m.editor.SetGrid(msg.cfg.grid())
	m.editor.SetStyle(msg.cfg.style())
	m.resizeCanvas()
	m.successMessage = "Config reloaded"
	m.logger.Infof("config reloaded")
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	if !m.inCanvas(msg.X, msg.Y) && !m.mousePressed {
		return
	}
	cols, rows := m.canvasCells()
	col, row := clamp(msg.X, 0, cols-1), clamp(msg.Y, 0, rows-1)
	p := m.worldAt(col, row)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.errorMessage, m.successMessage = "", ""
		m.cursorX, m.cursorY = col, row
		if err := m.editor.PointerDown(p); err == nil {
			m.mousePressed = true
		}
	case tea.MouseActionMotion:
		if m.mousePressed {
			m.cursorX, m.cursorY = col, row
			m.editor.PointerMove(p)
		}
	case tea.MouseActionRelease:
		if m.mousePressed {
			m.mousePressed = false
			_ = m.editor.PointerUp(p)
		}
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.help {
		m.handleHelpKey(key)
		return m, nil
	}
	if m.renaming {
		return m.handleRenameKey(msg)
	}
	if m.editor.TextEditing() {
		m.handleTextKey(msg)
		return m, nil
	}

	m.errorMessage, m.successMessage = "", ""
	switch key {
	case "q":
		return m, tea.Quit
	case "?":
		m.help = true
	case "left", "right", "up", "down", "shift+left", "shift+right", "shift+up", "shift+down":
		m.handleCursorMove(key, m.getMoveSpeed(key))
	case " ", "space", "enter":
		m.toggleKeyPointer()
	case "u":
		m.undo()
	case "U":
		m.redo()
	case "R":
		return m.startRename()
	case "esc":
		m.editor.ClearNotice()
	default:
		if m.editor.HandleKey(key, false) {
			m.syncPointers()
		}
	}
	return m, nil
}

func (m *model) handleTextKey(msg tea.KeyMsg) {
	if m.editor.HandleKey(msg.String(), true) {
		m.syncPointers()
		return
	}
	switch msg.Type {
	case tea.KeyEnter:
		if msg.Alt {
			m.editor.TypeText("\n")
			return
		}
		_ = m.editor.CommitText()
	case tea.KeyCtrlJ:
		m.editor.TypeText("\n")
	case tea.KeyEsc:
		m.editor.CancelText()
	case tea.KeyBackspace:
		m.editor.Backspace()
	case tea.KeyCtrlV:
		text, err := readClipboardText()
		if err != nil {
			m.errorMessage = fmt.Sprintf("Paste failed: %v", err)
			return
		}
		m.editor.TypeText(cleanClipboardText(text))
	case tea.KeySpace:
		m.editor.TypeText(" ")
	case tea.KeyTab:
		m.editor.TypeText("\t")
	case tea.KeyRunes:
		m.editor.TypeText(string(msg.Runes))
	}
}

func (m model) startRename() (tea.Model, tea.Cmd) {
	m.rename.SetValue(m.editor.ActiveLayer().Name)
	m.rename.CursorEnd()
	m.renaming = true
	return m, m.rename.Focus()
}

func (m model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editor.HandleKey(msg.String(), true) {
		m.syncPointers()
		return m, nil
	}
	switch msg.Type {
	case tea.KeyEnter:
		active := m.editor.ActiveLayer()
		if err := m.editor.Rename(active.ID, m.rename.Value()); err == nil {
			m.successMessage = fmt.Sprintf("Renamed to %s", m.editor.ActiveLayer().Name)
		}
		m.stopRename()
		return m, nil
	case tea.KeyEsc:
		m.stopRename()
		return m, nil
	}
	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

func (m *model) stopRename() {
	m.renaming = false
	m.rename.Blur()
	m.rename.SetValue("")
}

func (m *model) handleHelpKey(key string) {
	switch key {
	case "esc", "q", "?":
		m.help = false
		m.helpScroll = 0
	case "down":
		maxScroll := len(helpLines) - (m.height - 1)
		if m.helpScroll < maxScroll {
			m.helpScroll++
		}
	case "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
}
