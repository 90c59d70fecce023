package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"techsketch/internal/editor"
	"techsketch/internal/tools"
)

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff3b30")).Background(lipgloss.Color("#ffffff")).Bold(true)
	panelStyle  = lipgloss.NewStyle().
			Width(panelWidth-1).
			PaddingLeft(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("240"))
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#1e90ff")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff3b30"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff9500"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#34c759"))
)

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.help {
		return m.helpView()
	}
	cols, rows := m.canvasCells()
	canvas := renderCanvas(m.editor.Composite(), cols, rows, m.cursorX, m.cursorY, !m.mousePressed)
	body := lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(canvas, "\n"), m.renderPanel(rows))
	return body + "\n" + m.statusLine()
}

func (m model) mode() Mode {
	switch {
	case m.renaming:
		return ModeRename
	case m.editor.TextEditing():
		return ModeText
	default:
		return ModeNormal
	}
}

func (m model) renderPanel(rows int) string {
	var b strings.Builder
	layers, active := m.editor.Layers()
	b.WriteString(headingStyle.Render("Layers"))
	b.WriteString("\n")
	for i := len(layers) - 1; i >= 0; i-- {
		b.WriteString(layerRow(layers[i], layers[i].ID == active))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(headingStyle.Render("Tools"))
	b.WriteString("\n")
	for _, t := range tools.All {
		row := fmt.Sprintf("%c %s", t.Shortcut(), t)
		if t == m.editor.Tool() {
			row = activeStyle.Render("▸ " + row)
		} else {
			row = "  " + row
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	style := m.editor.Style()
	grid := m.editor.Grid()
	b.WriteString("\n")
	b.WriteString(headingStyle.Render("Settings"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("width  %.0fpx\n", style.StrokeWidth))
	b.WriteString(fmt.Sprintf("stroke %s\n", lipgloss.NewStyle().Foreground(hexColor(style.Stroke)).Render("███")))
	if style.HasFill() {
		b.WriteString(fmt.Sprintf("fill   %s\n", lipgloss.NewStyle().Foreground(hexColor(style.Fill)).Render("███")))
	} else {
		b.WriteString("fill   none\n")
	}
	b.WriteString(fmt.Sprintf("grid   %.0fpx %s\n", grid.CellSize, onOff(grid.Visible)))
	b.WriteString(fmt.Sprintf("snap   %s\n", onOff(grid.Snap)))
	b.WriteString(fmt.Sprintf("print  %s\n", onOff(m.editor.PrintMode())))
	b.WriteString(fmt.Sprintf("undo   %s\n", onOff(m.editor.CanUndo())))
	b.WriteString(fmt.Sprintf("redo   %s\n", onOff(m.editor.CanRedo())))

	if m.renaming {
		b.WriteString("\n")
		b.WriteString(m.rename.View())
	}
	return panelStyle.Height(rows).MaxHeight(rows).Render(b.String())
}

func layerRow(l editor.LayerView, active bool) string {
	name := []rune(l.Name)
	if len(name) > 11 {
		name = append(name[:10], '…')
	}
	vis, lock := "v", " "
	if !l.Visible {
		vis = "-"
	}
	if l.Locked {
		lock = "L"
	}
	row := fmt.Sprintf("%-11s %s%s %3d", string(name), vis, lock, l.ObjectCount)
	if active {
		return activeStyle.Render("▸ " + row)
	}
	if !l.Visible {
		return dimStyle.Render("  " + row)
	}
	return "  " + row
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (m model) statusLine() string {
	active := m.editor.ActiveLayer()
	status := fmt.Sprintf("Mode: %s | Tool: %s | Layer: %s", m.mode(), m.editor.Tool(), active.Name)
	if m.keyPressed {
		status += " | drawing (space to finish)"
	}
	if m.editor.TextEditing() {
		status += " | Enter=commit, Alt+Enter=newline, Ctrl+V=paste, Esc=cancel"
	}
	if n, ok := m.editor.Notice(); ok {
		switch n.Level {
		case editor.NoticeError:
			status += " | " + errorStyle.Render("ERROR: "+n.Text)
		case editor.NoticeWarn:
			status += " | " + warnStyle.Render(n.Text)
		default:
			status += " | " + dimStyle.Render(n.Text)
		}
	}
	if m.successMessage != "" {
		status += " | " + okStyle.Render(m.successMessage)
	}
	if m.errorMessage != "" {
		status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
	}
	if !m.editor.TextEditing() && m.errorMessage == "" && m.successMessage == "" {
		status += " | ? for help | q to quit"
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(status)
}

var helpLines = []string{
	"techsketch help",
	"===============",
	"",
	"Pointer:",
	"--------",
	"  mouse drag         Draw with the current tool",
	"  ←/↓/↑/→            Move the keyboard cursor (Shift for 4x)",
	"  Space / Enter      Press at the cursor, again to release",
	"",
	"Tools:",
	"------",
	"  v  select (drag to move, drag the corner handle to resize)",
	"  l  line          f  arrow",
	"  c  circle        r  rectangle",
	"  t  text          e  erase",
	"  Delete/Backspace   Delete the selected shape (select tool)",
	"",
	"Text:",
	"-----",
	"  Enter              Commit text",
	"  Alt+Enter/Ctrl+J   New line",
	"  Ctrl+V             Paste from the clipboard",
	"  Esc                Discard text",
	"",
	"Layers:",
	"-------",
	"  n  add layer       x  remove active layer",
	"  [  layer below     ]  layer above",
	"  h  hide/show       k  lock/unlock",
	"  R  rename active layer",
	"",
	"Grid and view:",
	"--------------",
	"  g  toggle grid     s  toggle snap",
	"  +  larger cells    -  smaller cells",
	"  p  print mode (no grid, no fills)",
	"",
	"History:",
	"--------",
	"  Ctrl+Z / u         Undo",
	"  Ctrl+Y / U         Redo",
	"",
	"General:",
	"  ?                  Toggle this help screen",
	"  q/Ctrl+C           Quit",
}

func (m model) helpView() string {
	visible := m.height - 1
	if visible < 1 {
		visible = 1
	}
	start := clamp(m.helpScroll, 0, len(helpLines))
	end := start + visible
	if end > len(helpLines) {
		end = len(helpLines)
	}
	out := strings.Join(helpLines[start:end], "\n")
	return out + "\n" + dimStyle.Render("↑/↓ scroll | Esc to close")
}
