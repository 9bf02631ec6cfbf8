package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

const (
	StatusOpen     = "open"
	StatusActive   = "active"
	StatusFinished = "finished"
)

// GameKindGomoku is the only supported game kind.
const GameKindGomoku = "gomoku"

// Session is one two-player game from creation to finish. It is the
// sole owner of its Board; the board has no lifecycle of its own.
type Session struct {
	ID       string `json:"id"`
	JoinCode string `json:"join_code"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`

	// IsActive is an orthogonal abandonment flag cleared by an external
	// lifecycle policy; it does not follow the open/active/finished
	// progression.
	IsActive bool `json:"is_active"`
	Joinable bool `json:"joinable"`

	Player1ID    string `json:"player1_id"`
	Player2ID    string `json:"player2_id,omitempty"`
	Player1Color Color  `json:"player1_color"`
	Player2Color Color  `json:"player2_color"`

	Board  *Board `json:"board"`
	Winner Color  `json:"winner,omitempty"`
	Turn   Color  `json:"turn,omitempty"`

	// Version guards optimistic-concurrency saves; the repository
	// rejects a save whose version does not match the stored document.
	Version int64 `json:"version"`
}

// NewSession creates an open session owned by the creator. The creator
// is always player1 and always plays black; black moves first.
func NewSession(id, joinCode, creatorID string) *Session {
	now := time.Now().Unix()

	return &Session{
		ID:           id,
		JoinCode:     joinCode,
		Kind:         GameKindGomoku,
		Status:       StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
		IsActive:     true,
		Joinable:     true,
		Player1ID:    creatorID,
		Player1Color: ColorBlack,
		Player2Color: ColorWhite,
		Board:        NewBoard(),
		Turn:         ColorBlack,
	}
}

func (that *Session) IsOpen() bool {
	return that.Status == StatusOpen
}

func (that *Session) IsOngoing() bool {
	return that.Status == StatusActive
}

func (that *Session) IsFinished() bool {
	return that.Status == StatusFinished
}

// IsParticipant reports whether the player is bound to this session.
func (that *Session) IsParticipant(playerID string) bool {
	if playerID == "" {
		return false
	}

	return playerID == that.Player1ID || playerID == that.Player2ID
}

// ColorOf resolves a participant's color from the session bindings.
func (that *Session) ColorOf(playerID string) (Color, error) {
	switch {
	case playerID != "" && playerID == that.Player1ID:
		return that.Player1Color, nil
	case playerID != "" && playerID == that.Player2ID:
		return that.Player2Color, nil
	default:
		return ColorNone, fmt.Errorf("%w: player %s", apperror.ErrNotAParticipant, playerID)
	}
}

// CanJoin reports whether a second player may still bind to the
// session.
func (that *Session) CanJoin() bool {
	return that.IsOpen() && that.Joinable && that.IsActive && that.Player2ID == ""
}

// BindSecondPlayer assigns player2 exactly once and starts the game.
func (that *Session) BindSecondPlayer(joinerID string) error {
	if !that.CanJoin() {
		return fmt.Errorf("%w: session %s", apperror.ErrSessionNotJoinable, that.ID)
	}

	that.Player2ID = joinerID
	that.Joinable = false
	that.Status = StatusActive
	that.Touch()

	return nil
}

// FinishWith records the winner and moves the session to its terminal
// state. A finished board is immutable history.
func (that *Session) FinishWith(winner Color) {
	that.Winner = winner
	that.Turn = ColorNone
	that.Status = StatusFinished
	that.Touch()
}

// AdvanceTurn hands the move to the other color.
func (that *Session) AdvanceTurn() {
	that.Turn = that.Turn.Opponent()
	that.Touch()
}

// MarkAbandoned is the hook for the external abandon/timeout policy.
// It may fire in any state and does not touch the game progression.
func (that *Session) MarkAbandoned() {
	that.IsActive = false
	that.Joinable = false
	that.Touch()
}

// Touch stamps UpdatedAt, keeping it monotonically non-decreasing even
// if the clock steps backwards.
func (that *Session) Touch() {
	if now := time.Now().Unix(); now > that.UpdatedAt {
		that.UpdatedAt = now
	}
}
