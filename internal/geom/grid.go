package geom

import "math"

const (
	// MinCellSize is the floor applied to non-positive cell sizes.
	MinCellSize = 1
	// MinGridCell and MaxGridCell bound the user-configurable cell size.
	MinGridCell = 10
	MaxGridCell = 50
	// DefaultGridCell is the cell size used before any configuration is applied.
	DefaultGridCell = 20
)

// Grid holds the snapping grid parameters. It carries no other state.
type Grid struct {
	CellSize float64
	Visible  bool
	Snap     bool
}

// DefaultGrid returns a visible, snapping grid with the default cell size.
func DefaultGrid() Grid {
	return Grid{CellSize: DefaultGridCell, Visible: true, Snap: true}
}

// ClampCellSize limits a user-supplied cell size to the configurable range.
func ClampCellSize(size float64) float64 {
	if size < MinGridCell {
		return MinGridCell
	}
	if size > MaxGridCell {
		return MaxGridCell
	}
	return size
}

// SnapPoint applies the grid to p, or returns p unchanged when snapping is off.
func (g Grid) SnapPoint(p Point) Point {
	if !g.Snap {
		return p
	}
	return Snap(p, g.CellSize)
}

// Points returns the overlay points for a viewport of the given size.
func (g Grid) Points(width, height float64) []Point {
	return GeneratePoints(width, height, g.CellSize)
}

// Snap rounds each coordinate of p to the nearest multiple of cellSize.
func Snap(p Point, cellSize float64) Point {
	c := normalizeCell(cellSize)
	return Point{X: snapValue(p.X, c), Y: snapValue(p.Y, c)}
}

// snapValue rounds half to even.
func snapValue(v, c float64) float64 {
	s := math.RoundToEven(v/c) * c
	if s == 0 {
		return 0
	}
	return s
}

// GeneratePoints returns floor(width/c)+1 columns by floor(height/c)+1 rows of
// grid points, row by row. Non-positive viewport dimensions yield no points.
func GeneratePoints(width, height, cellSize float64) []Point {
	if width < 0 || height < 0 {
		return nil
	}
	c := normalizeCell(cellSize)
	cols := int(math.Floor(width/c)) + 1
	rows := int(math.Floor(height/c)) + 1
	points := make([]Point, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for col := 0; col < cols; col++ {
			points = append(points, Point{X: float64(col) * c, Y: float64(r) * c})
		}
	}
	return points
}

func normalizeCell(c float64) float64 {
	if c < MinCellSize || math.IsNaN(c) {
		return MinCellSize
	}
	return c
}
