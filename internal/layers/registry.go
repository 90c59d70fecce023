package layers

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrLastLayer    = errors.New("cannot remove the only layer")
	ErrUnknownLayer = errors.New("unknown layer")
	ErrEmptyName    = errors.New("layer name is empty")
)

var defaultNamePattern = regexp.MustCompile(`^Layer (\d+)$`)

// Layer is the registry's view of one drawing layer. Object lists live with
// the layer's surface in the compositor.
type Layer struct {
	ID      string
	Name    string
	Visible bool
	Locked  bool
}

// Listener is notified synchronously after every successful mutation.
type Listener func(layers []Layer, activeID string)

// Registry is the ordered list of layers (bottom first) and the active layer.
// It always holds at least one layer and the active id always resolves.
type Registry struct {
	layers    []Layer
	activeID  string
	seq       int
	listeners []Listener
}

// NewRegistry returns a registry seeded with one active layer, "layer-1" / "Layer 1".
func NewRegistry() *Registry {
	r := &Registry{}
	r.layers = append(r.layers, r.newLayer())
	r.activeID = r.layers[0].ID
	return r
}

// OnChange registers a listener and immediately replays the current state to it.
func (r *Registry) OnChange(fn Listener) {
	r.listeners = append(r.listeners, fn)
	fn(r.Snapshot(), r.activeID)
}

func (r *Registry) notify() {
	snapshot := r.Snapshot()
	for _, fn := range r.listeners {
		fn(snapshot, r.activeID)
	}
}

// Snapshot returns a copy of the layers in z-order, bottom first.
func (r *Registry) Snapshot() []Layer {
	out := make([]Layer, len(r.layers))
	copy(out, r.layers)
	return out
}

// Len returns the number of layers.
func (r *Registry) Len() int {
	return len(r.layers)
}

// ActiveID returns the active layer id.
func (r *Registry) ActiveID() string {
	return r.activeID
}

// Active returns a copy of the active layer.
func (r *Registry) Active() Layer {
	l, _ := r.Get(r.activeID)
	return l
}

// Get returns a copy of the layer with the given id.
func (r *Registry) Get(id string) (Layer, bool) {
	if i := r.index(id); i >= 0 {
		return r.layers[i], true
	}
	return Layer{}, false
}

func (r *Registry) index(id string) int {
	for i, l := range r.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) newLayer() Layer {
	r.seq++
	return Layer{
		ID:      "layer-" + strconv.Itoa(r.seq),
		Name:    r.nextDefaultName(""),
		Visible: true,
	}
}

// nextDefaultName returns "Layer N" with N above every default-pattern name
// in use, ignoring the layer being renamed.
func (r *Registry) nextDefaultName(excludeID string) string {
	highest := 0
	for _, l := range r.layers {
		if l.ID == excludeID {
			continue
		}
		if n, ok := defaultNumber(l.Name); ok && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("Layer %d", highest+1)
}

func defaultNumber(name string) (int, bool) {
	m := defaultNamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Add appends a new layer at the top of the z-order and makes it active.
func (r *Registry) Add() Layer {
	l := r.newLayer()
	r.layers = append(r.layers, l)
	r.activeID = l.ID
	r.notify()
	return l
}

// Remove deletes a layer. Removing the last layer fails with ErrLastLayer.
// When the active layer is removed the first remaining layer becomes active.
func (r *Registry) Remove(id string) error {
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("remove %q: %w", id, ErrUnknownLayer)
	}
	if len(r.layers) == 1 {
		return ErrLastLayer
	}
	next := make([]Layer, 0, len(r.layers)-1)
	next = append(next, r.layers[:i]...)
	next = append(next, r.layers[i+1:]...)
	r.layers = next
	if r.activeID == id {
		r.activeID = r.layers[0].ID
	}
	r.notify()
	return nil
}

// ToggleVisibility flips the visible flag and returns the new value.
func (r *Registry) ToggleVisibility(id string) (bool, error) {
	i := r.index(id)
	if i < 0 {
		return false, fmt.Errorf("toggle visibility %q: %w", id, ErrUnknownLayer)
	}
	r.layers[i].Visible = !r.layers[i].Visible
	r.notify()
	return r.layers[i].Visible, nil
}

// ToggleLock flips the locked flag and returns the new value. Listeners run
// before it returns, so a locked active layer stops accepting input at once.
func (r *Registry) ToggleLock(id string) (bool, error) {
	i := r.index(id)
	if i < 0 {
		return false, fmt.Errorf("toggle lock %q: %w", id, ErrUnknownLayer)
	}
	r.layers[i].Locked = !r.layers[i].Locked
	r.notify()
	return r.layers[i].Locked, nil
}

// Rename sets a layer name. Blank names are rejected; a name that collides
// with another layer's default-pattern name is renumbered.
func (r *Registry) Rename(id, name string) (string, error) {
	i := r.index(id)
	if i < 0 {
		return "", fmt.Errorf("rename %q: %w", id, ErrUnknownLayer)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return r.layers[i].Name, ErrEmptyName
	}
	if _, ok := defaultNumber(name); ok {
		for j, l := range r.layers {
			if j != i && l.Name == name {
				name = r.nextDefaultName(id)
				break
			}
		}
	}
	r.layers[i].Name = name
	r.notify()
	return name, nil
}

// SetActive selects the active layer.
func (r *Registry) SetActive(id string) error {
	if r.index(id) < 0 {
		return fmt.Errorf("activate %q: %w", id, ErrUnknownLayer)
	}
	if r.activeID == id {
		return nil
	}
	r.activeID = id
	r.notify()
	return nil
}

// Cycle moves the active selection by delta positions in z-order, wrapping.
func (r *Registry) Cycle(delta int) string {
	i := r.index(r.activeID)
	n := len(r.layers)
	next := ((i+delta)%n + n) % n
	_ = r.SetActive(r.layers[next].ID)
	return r.activeID
}
