package gomoku

import (
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// winRunLength is the run length that ends the game. Longer runs also
// win; freestyle rules have no overline exclusion.
const winRunLength = 5

// axes are the four undirected lines through a stone. Each is counted
// in both senses, so runs that straddle the new stone are found.
var axes = [4][2]int{
	{1, 0},  // horizontal
	{0, 1},  // vertical
	{1, 1},  // diagonal
	{1, -1}, // anti-diagonal
}

// ApplyMove validates a move against the session, commits it to the
// board and updates the session outcome. On a validation error the
// session is left untouched. The caller holds the per-session critical
// section.
func ApplyMove(session *entity.Session, color entity.Color, pt entity.Point) error {
	if err := ValidateMove(session, color, pt); err != nil {
		return err
	}

	if err := session.Board.Place(color, pt); err != nil {
		return fmt.Errorf("failed to place stone: %w", err)
	}

	if IsWinningMove(session.Board, color, pt) {
		session.FinishWith(color)
		return nil
	}

	session.AdvanceTurn()

	return nil
}

// ValidateMove decides whether the move is legal right now. The checks
// run in a fixed order and each failure has its own sentinel.
func ValidateMove(session *entity.Session, color entity.Color, pt entity.Point) error {
	if !session.IsOngoing() {
		return fmt.Errorf("%w: session %s is %s", apperror.ErrGameNotInProgress, session.ID, session.Status)
	}

	if session.Turn != color {
		return fmt.Errorf("%w: %s to move", apperror.ErrNotYourTurn, session.Turn)
	}

	if !pt.InBounds() {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrOutOfBounds, pt.X, pt.Y)
	}

	if !session.Board.IsVacant(pt) {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrCellOccupied, pt.X, pt.Y)
	}

	return nil
}

// IsWinningMove reports whether the just-placed stone completes a run
// of five or more. Detection is move-triggered only: every earlier
// stone was already checked at its own commit, so scanning the whole
// board is never needed. Cost is bounded by 4 axes of at most 8
// neighbours each.
func IsWinningMove(board *entity.Board, color entity.Color, pt entity.Point) bool {
	for _, axis := range axes {
		run := 1 +
			countRay(board, color, pt, axis[0], axis[1]) +
			countRay(board, color, pt, -axis[0], -axis[1])

		if run >= winRunLength {
			return true
		}
	}

	return false
}

// countRay counts contiguous same-color stones beyond pt in one sense
// of an axis, up to winRunLength-1 steps.
func countRay(board *entity.Board, color entity.Color, pt entity.Point, dx, dy int) int {
	count := 0
	for step := 1; step < winRunLength; step++ {
		next := entity.Point{X: pt.X + dx*step, Y: pt.Y + dy*step}
		if board.ColorAt(next) != color {
			break
		}
		count++
	}

	return count
}
