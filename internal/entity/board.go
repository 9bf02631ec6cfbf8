package entity

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

// BoardSize is the side length of the square grid.
const BoardSize = 19

// Point is a board coordinate, both components in [0, BoardSize-1].
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (that Point) InBounds() bool {
	return that.X >= 0 && that.X < BoardSize && that.Y >= 0 && that.Y < BoardSize
}

// Board holds the stone placements of one game. Cells are write-once:
// stones are never moved or removed, so occupancy only grows.
type Board struct {
	cells map[Point]Color
}

func NewBoard() *Board {
	return &Board{
		cells: make(map[Point]Color),
	}
}

// IsVacant reports whether the coordinate is in bounds and occupied by
// neither color.
func (that *Board) IsVacant(pt Point) bool {
	if !pt.InBounds() {
		return false
	}

	_, occupied := that.cells[pt]

	return !occupied
}

// ColorAt returns the color occupying the coordinate, or ColorNone.
func (that *Board) ColorAt(pt Point) Color {
	return that.cells[pt]
}

// Place puts a stone on the board. The move validator has already
// checked bounds and vacancy; a double placement here means a caller
// bug, not a recoverable game condition.
func (that *Board) Place(color Color, pt Point) error {
	if !pt.InBounds() {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrOutOfBounds, pt.X, pt.Y)
	}

	if _, occupied := that.cells[pt]; occupied {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrCellOccupied, pt.X, pt.Y)
	}

	if that.cells == nil {
		that.cells = make(map[Point]Color)
	}
	that.cells[pt] = color

	return nil
}

// StoneCount returns the number of stones of the given color.
func (that *Board) StoneCount(color Color) int {
	count := 0
	for _, c := range that.cells {
		if c == color {
			count++
		}
	}

	return count
}

// boardDocument is the storage shape of a board: one coordinate-pair
// list per color, matching the session document format.
type boardDocument struct {
	Black [][2]int `json:"black"`
	White [][2]int `json:"white"`
}

func (that *Board) MarshalJSON() ([]byte, error) {
	doc := boardDocument{
		Black: [][2]int{},
		White: [][2]int{},
	}

	for pt, color := range that.cells {
		pair := [2]int{pt.X, pt.Y}
		if color == ColorBlack {
			doc.Black = append(doc.Black, pair)
		} else {
			doc.White = append(doc.White, pair)
		}
	}

	sortPairs(doc.Black)
	sortPairs(doc.White)

	return json.Marshal(doc)
}

func (that *Board) UnmarshalJSON(data []byte) error {
	var doc boardDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal board document: %w", err)
	}

	that.cells = make(map[Point]Color, len(doc.Black)+len(doc.White))
	for _, pair := range doc.Black {
		that.cells[Point{X: pair[0], Y: pair[1]}] = ColorBlack
	}
	for _, pair := range doc.White {
		that.cells[Point{X: pair[0], Y: pair[1]}] = ColorWhite
	}

	return nil
}

func sortPairs(pairs [][2]int) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
}
