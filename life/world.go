package life

import (
	"fmt"
	"slices"
)

// Cell is a live cell of a world, addressed by row and column.
type Cell struct {
	Row int `msgpack:"r" json:"row"`
	Col int `msgpack:"c" json:"col"`
}

// World is a named universe: the rule constants it runs under and the sparse
// distribution of its live cells.
type World struct {
	Name string `msgpack:"n" json:"name"`

	// Constants are the rule parameters: minimum and maximum neighbour count
	// for survival, then the neighbour count for birth.
	Constants    []int  `msgpack:"k" json:"constants"`
	Distribution []Cell `msgpack:"d" json:"distribution"`
}

// ConwayConstants are the B3/S23 rules.
var ConwayConstants = []int{2, 3, 3}

func (w World) RecordKey() string {
	return w.Name
}

func (w World) String() string {
	return fmt.Sprintf("World %s: constants=%v, cells=%d %v", w.Name, w.Constants, len(w.Distribution), w.Distribution)
}

func (w World) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("world name is required")
	}
	for _, c := range w.Constants {
		if c < 0 || c > 8 {
			return fmt.Errorf("world %s: constant %d out of range 0..8", w.Name, c)
		}
	}
	for _, c := range w.Distribution {
		if c.Row < 0 || c.Col < 0 {
			return fmt.Errorf("world %s: negative cell position %d,%d", w.Name, c.Row, c.Col)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (w World) Clone() World {
	w.Constants = slices.Clone(w.Constants)
	w.Distribution = slices.Clone(w.Distribution)
	return w
}

// CellsOf converts a dense 0/1 grid into the sparse live-cell distribution.
func CellsOf(grid [][]byte) []Cell {
	var cells []Cell
	for r, row := range grid {
		for c, v := range row {
			if v != 0 {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}
