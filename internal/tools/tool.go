package tools

import (
	"errors"
	"fmt"
	"strings"

	"techsketch/internal/compositor"
	"techsketch/internal/shape"
)

var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrDegenerate      = errors.New("shape has no extent")
	ErrNotEditing      = errors.New("no text being edited")
	ErrNothingSelected = errors.New("nothing selected")
	ErrNoLayer         = errors.New("no active layer")

	// ErrLayerLocked is returned by a press on a locked layer.
	ErrLayerLocked = compositor.ErrLayerLocked
)

// HitThreshold is the distance in pixels within which line-like shapes are hit.
const HitThreshold = 10.0

// Tool identifies one of the fixed drawing tools.
type Tool int

const (
	Select Tool = iota
	Line
	Arrow
	Circle
	Rectangle
	Text
	Erase
)

// All lists the tools in toolbar order.
var All = []Tool{Select, Line, Arrow, Circle, Rectangle, Text, Erase}

var toolNames = map[Tool]string{
	Select:    "select",
	Line:      "line",
	Arrow:     "arrow",
	Circle:    "circle",
	Rectangle: "rectangle",
	Text:      "text",
	Erase:     "erase",
}

var shortcuts = map[Tool]rune{
	Select:    'v',
	Line:      'l',
	Arrow:     'f',
	Circle:    'c',
	Rectangle: 'r',
	Text:      't',
	Erase:     'e',
}

func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

// Shortcut returns the single-letter key that selects the tool.
func (t Tool) Shortcut() rune {
	return shortcuts[t]
}

// ShapeKind returns the shape a drawing tool produces.
func (t Tool) ShapeKind() (shape.Kind, bool) {
	switch t {
	case Line:
		return shape.KindLine, true
	case Arrow:
		return shape.KindArrow, true
	case Circle:
		return shape.KindCircle, true
	case Rectangle:
		return shape.KindRectangle, true
	case Text:
		return shape.KindText, true
	}
	return 0, false
}

// ParseTool converts a tool identifier into a Tool.
func ParseTool(s string) (Tool, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, n := range toolNames {
		if n == name {
			return t, nil
		}
	}
	return Select, fmt.Errorf("%q: %w", s, ErrUnknownTool)
}

// ForShortcut returns the tool bound to a shortcut letter.
func ForShortcut(r rune) (Tool, bool) {
	for t, key := range shortcuts {
		if key == r {
			return t, true
		}
	}
	return Select, false
}

// Config is the complete tool configuration. Two configs with the same layer
// and tool share a handler binding; style is read at the start of each gesture.
type Config struct {
	LayerID string
	Tool    Tool
	Style   shape.Style
}

func (c Config) sameBinding(o Config) bool {
	return c.LayerID == o.LayerID && c.Tool == o.Tool
}
