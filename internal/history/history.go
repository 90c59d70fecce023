package history

import (
	"errors"
	"fmt"

	"techsketch/internal/shape"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrLayerGone     = errors.New("layer no longer exists")
)

// DefaultLimit bounds the number of entries kept before the oldest is dropped.
const DefaultLimit = 200

// Kind classifies an entry.
type Kind int

const (
	KindAdd Kind = iota
	KindRemove
	KindModify
)

func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindRemove:
		return "remove"
	case KindModify:
		return "modify"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Entry is one undoable drawing operation on one layer. Shapes are shared
// with the surfaces; Modify entries also carry geometry snapshots taken at
// gesture start (Before) and completion (After), index-aligned with Shapes.
type Entry struct {
	Kind    Kind
	LayerID string
	Shapes  []*shape.Shape
	Before  []shape.Geometry
	After   []shape.Geometry
	// Positions are object-list indices the shapes occupied when detached.
	Positions []int
}

// Applier mutates layer object lists on behalf of undo/redo.
type Applier interface {
	HasLayer(layerID string) bool
	// Detach removes the shapes and returns the indices they occupied.
	// Shapes already absent are skipped.
	Detach(layerID string, shapes []*shape.Shape) ([]int, error)
	// Attach re-inserts the shapes at positions (appending when nil).
	// Shapes already present are skipped.
	Attach(layerID string, shapes []*shape.Shape, positions []int) error
	Restore(layerID string, shapes []*shape.Shape, geoms []shape.Geometry) error
}

// Manager is a bounded linear undo log with a single cursor. Recording after
// undo discards the redo branch.
type Manager struct {
	entries   []Entry
	cursor    int
	limit     int
	replaying bool
}

// NewManager returns an empty log holding at most limit entries.
func NewManager(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{cursor: -1, limit: limit}
}

// Record appends an entry, truncating anything after the cursor. Calls made
// while an undo or redo is replaying are ignored.
func (m *Manager) Record(e Entry) {
	if m.replaying {
		return
	}
	if len(e.Shapes) == 0 {
		return
	}
	e.Shapes = append([]*shape.Shape(nil), e.Shapes...)
	e.Before = append([]shape.Geometry(nil), e.Before...)
	e.After = append([]shape.Geometry(nil), e.After...)
	e.Positions = append([]int(nil), e.Positions...)

	m.entries = append(m.entries[:m.cursor+1], e)
	if len(m.entries) > m.limit {
		drop := len(m.entries) - m.limit
		m.entries = append([]Entry(nil), m.entries[drop:]...)
	}
	m.cursor = len(m.entries) - 1
}

// Undo reverts the entry at the cursor and moves the cursor back. An entry
// whose layer is gone is skipped and reported with ErrLayerGone.
func (m *Manager) Undo(a Applier) (Entry, error) {
	if m.cursor < 0 {
		return Entry{}, ErrNothingToUndo
	}
	e := &m.entries[m.cursor]
	m.cursor--
	return *e, m.replay(a, e, false)
}

// Redo moves the cursor forward and re-applies that entry.
func (m *Manager) Redo(a Applier) (Entry, error) {
	if m.cursor >= len(m.entries)-1 {
		return Entry{}, ErrNothingToRedo
	}
	m.cursor++
	e := &m.entries[m.cursor]
	return *e, m.replay(a, e, true)
}

func (m *Manager) replay(a Applier, e *Entry, forward bool) error {
	if !a.HasLayer(e.LayerID) {
		return fmt.Errorf("%s on %s: %w", e.Kind, e.LayerID, ErrLayerGone)
	}
	m.replaying = true
	defer func() { m.replaying = false }()

	remove := (e.Kind == KindAdd) != forward
	switch e.Kind {
	case KindAdd, KindRemove:
		if remove {
			positions, err := a.Detach(e.LayerID, e.Shapes)
			if err != nil {
				return err
			}
			if len(positions) == len(e.Shapes) {
				e.Positions = positions
			}
			return nil
		}
		return a.Attach(e.LayerID, e.Shapes, e.Positions)
	case KindModify:
		if forward {
			return a.Restore(e.LayerID, e.Shapes, e.After)
		}
		return a.Restore(e.LayerID, e.Shapes, e.Before)
	}
	return fmt.Errorf("unknown history kind %d", e.Kind)
}

// Replaying reports whether an undo or redo is being applied.
func (m *Manager) Replaying() bool {
	return m.replaying
}

// Len returns the number of entries in the log.
func (m *Manager) Len() int {
	return len(m.entries)
}

// Cursor returns the index of the last applied entry, -1 when none.
func (m *Manager) Cursor() int {
	return m.cursor
}

// CanUndo reports whether Undo would do anything.
func (m *Manager) CanUndo() bool {
	return m.cursor >= 0
}

// CanRedo reports whether Redo would do anything.
func (m *Manager) CanRedo() bool {
	return m.cursor < len(m.entries)-1
}

// Entries returns a copy of the log.
func (m *Manager) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
