package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGamePlay(t *testing.T) (GamePlayService, *memorySessionRepo) {
	t.Helper()

	repo := newMemorySessionRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	directory := NewDirectoryService(repo)
	sessions := NewSessionService(repo, directory)

	return NewGamePlayService(logger, sessions), repo
}

func TestGamePlayService_CreateSession(t *testing.T) {
	ctx := context.Background()

	// Given: a gameplay service over empty storage
	gamePlay, _ := newTestGamePlay(t)

	// When: U1 creates a session
	session, err := gamePlay.CreateSession(ctx, "U1")

	// Then: the session is open, joinable and owned by U1 as black
	require.NoError(t, err)
	assert.Equal(t, entity.StatusOpen, session.Status)
	assert.Equal(t, "U1", session.Player1ID)
	assert.Equal(t, entity.ColorBlack, session.Player1Color)
	assert.True(t, session.Joinable)
	assert.Len(t, session.JoinCode, 6)
	assert.NotEmpty(t, session.ID)
}

func TestGamePlayService_JoinSession(t *testing.T) {
	ctx := context.Background()

	t.Run("U2 joins with the correct code", func(t *testing.T) {
		// Given: a session created by U1
		gamePlay, _ := newTestGamePlay(t)
		created, err := gamePlay.CreateSession(ctx, "U1")
		require.NoError(t, err)

		// When: U2 joins with the session's code
		session, err := gamePlay.JoinSession(ctx, "U2", created.JoinCode)

		// Then: the session is active with U2 as white and no longer joinable
		require.NoError(t, err)
		assert.Equal(t, entity.StatusActive, session.Status)
		assert.Equal(t, "U2", session.Player2ID)
		assert.Equal(t, entity.ColorWhite, session.Player2Color)
		assert.False(t, session.Joinable)
	})

	t.Run("Unknown code fails with SessionNotFound", func(t *testing.T) {
		gamePlay, _ := newTestGamePlay(t)

		_, err := gamePlay.JoinSession(ctx, "U2", "000000")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("First successful join wins", func(t *testing.T) {
		// Given: a session U2 already joined
		gamePlay, _ := newTestGamePlay(t)
		created, err := gamePlay.CreateSession(ctx, "U1")
		require.NoError(t, err)
		_, err = gamePlay.JoinSession(ctx, "U2", created.JoinCode)
		require.NoError(t, err)

		// When: U3 tries the same code
		_, err = gamePlay.JoinSession(ctx, "U3", created.JoinCode)

		// Then: the code is already released, so the lookup fails
		require.Error(t, err)
		assert.True(t,
			errors.Is(err, apperror.ErrSessionNotFound) || errors.Is(err, apperror.ErrSessionNotJoinable),
			"expected a not-found or not-joinable error, got %v", err)
	})

	t.Run("The creator joining their own code gets the session back", func(t *testing.T) {
		// Given: an open session created by U1
		gamePlay, _ := newTestGamePlay(t)
		created, err := gamePlay.CreateSession(ctx, "U1")
		require.NoError(t, err)

		// When: U1 joins with their own code
		session, err := gamePlay.JoinSession(ctx, "U1", created.JoinCode)

		// Then: the session is returned unchanged, still waiting for U2
		require.NoError(t, err)
		assert.Equal(t, entity.StatusOpen, session.Status)
		assert.Empty(t, session.Player2ID)
		assert.True(t, session.Joinable)
	})

	t.Run("Abandoned session is not joinable", func(t *testing.T) {
		// Given: a session cleared by the lifecycle policy
		gamePlay, _ := newTestGamePlay(t)
		created, err := gamePlay.CreateSession(ctx, "U1")
		require.NoError(t, err)
		require.NoError(t, gamePlay.AbandonSession(ctx, created.ID))

		// When: U2 tries to join
		_, err = gamePlay.JoinSession(ctx, "U2", created.JoinCode)

		// Then: the join is rejected
		require.Error(t, err)
		assert.True(t,
			errors.Is(err, apperror.ErrSessionNotFound) || errors.Is(err, apperror.ErrSessionNotJoinable),
			"expected a not-found or not-joinable error, got %v", err)
	})
}

// startGame creates a session for U1 and joins U2.
func startGame(t *testing.T, ctx context.Context, gamePlay GamePlayService) *entity.Session {
	t.Helper()

	created, err := gamePlay.CreateSession(ctx, "U1")
	require.NoError(t, err)

	session, err := gamePlay.JoinSession(ctx, "U2", created.JoinCode)
	require.NoError(t, err)

	return session
}

func TestGamePlayService_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Black wins with five in a row", func(t *testing.T) {
		// Given: an active game
		gamePlay, _ := newTestGamePlay(t)
		session := startGame(t, ctx, gamePlay)

		// When: black builds a row at y=0 while white plays along y=1
		for i := 0; i < 4; i++ {
			_, err := gamePlay.MakeMove(ctx, "U1", session.ID, entity.Point{X: i, Y: 0})
			require.NoError(t, err)

			if i < 3 {
				_, err = gamePlay.MakeMove(ctx, "U2", session.ID, entity.Point{X: i, Y: 1})
				require.NoError(t, err)
			}
		}
		_, err := gamePlay.MakeMove(ctx, "U2", session.ID, entity.Point{X: 3, Y: 1})
		require.NoError(t, err)

		finished, err := gamePlay.MakeMove(ctx, "U1", session.ID, entity.Point{X: 4, Y: 0})

		// Then: the session finishes with black as the winner
		require.NoError(t, err)
		assert.Equal(t, entity.StatusFinished, finished.Status)
		assert.Equal(t, entity.ColorBlack, finished.Winner)

		// When: any further move is attempted
		_, err = gamePlay.MakeMove(ctx, "U2", session.ID, entity.Point{X: 9, Y: 9})

		// Then: it fails because the game is no longer in progress
		require.ErrorIs(t, err, apperror.ErrGameNotInProgress)
	})

	t.Run("White moving on black's turn changes nothing", func(t *testing.T) {
		// Given: an active game with black to move
		gamePlay, _ := newTestGamePlay(t)
		session := startGame(t, ctx, gamePlay)

		// When: white moves out of turn
		_, err := gamePlay.MakeMove(ctx, "U2", session.ID, entity.Point{X: 0, Y: 0})

		// Then: it fails and the stored board is unchanged
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)

		stored, err := gamePlay.GetStatus(ctx, "U1", session.ID)
		require.NoError(t, err)
		assert.Zero(t, stored.Board.StoneCount(entity.ColorBlack))
		assert.Zero(t, stored.Board.StoneCount(entity.ColorWhite))
	})

	t.Run("A stranger cannot move", func(t *testing.T) {
		gamePlay, _ := newTestGamePlay(t)
		session := startGame(t, ctx, gamePlay)

		_, err := gamePlay.MakeMove(ctx, "U9", session.ID, entity.Point{X: 0, Y: 0})

		require.ErrorIs(t, err, apperror.ErrNotAParticipant)
	})

	t.Run("Concurrent legal and illegal moves commit exactly one stone", func(t *testing.T) {
		// Given: an active game with black to move
		gamePlay, _ := newTestGamePlay(t)
		session := startGame(t, ctx, gamePlay)

		// When: black and white submit moves concurrently
		var wg sync.WaitGroup
		errs := make([]error, 2)

		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = gamePlay.MakeMove(ctx, "U1", session.ID, entity.Point{X: 5, Y: 5})
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = gamePlay.MakeMove(ctx, "U2", session.ID, entity.Point{X: 6, Y: 6})
		}()
		wg.Wait()

		// Then: the black move always commits
		require.NoError(t, errs[0])

		// Then: white either lost the turn race or moved legally after
		// black's commit; the board holds a consistent move count either way
		stored, err := gamePlay.GetStatus(ctx, "U1", session.ID)
		require.NoError(t, err)

		blackStones := stored.Board.StoneCount(entity.ColorBlack)
		whiteStones := stored.Board.StoneCount(entity.ColorWhite)

		require.Equal(t, 1, blackStones)
		if errs[1] != nil {
			require.ErrorIs(t, errs[1], apperror.ErrNotYourTurn)
			assert.Zero(t, whiteStones)
		} else {
			assert.Equal(t, 1, whiteStones)
		}
	})

	t.Run("A storage conflict is retried against fresh state", func(t *testing.T) {
		// Given: an active game whose next save loses an optimistic race
		gamePlay, repo := newTestGamePlay(t)
		session := startGame(t, ctx, gamePlay)
		repo.conflictNextSaves = 1

		// When: black moves
		updated, err := gamePlay.MakeMove(ctx, "U1", session.ID, entity.Point{X: 2, Y: 2})

		// Then: the move is re-validated and committed on the retry
		require.NoError(t, err)
		assert.Equal(t, entity.ColorBlack, updated.Board.ColorAt(entity.Point{X: 2, Y: 2}))
		assert.Equal(t, entity.ColorWhite, updated.Turn)
	})
}

func TestGamePlayService_GetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Participants can read, strangers cannot", func(t *testing.T) {
		gamePlay, _ := newTestGamePlay(t)
		session := startGame(t, ctx, gamePlay)

		// When/Then: both participants see the session
		for _, id := range []string{"U1", "U2"} {
			got, err := gamePlay.GetStatus(ctx, id, session.ID)
			require.NoError(t, err)
			assert.Equal(t, session.ID, got.ID)
		}

		// When/Then: a stranger is rejected
		_, err := gamePlay.GetStatus(ctx, "U9", session.ID)
		require.ErrorIs(t, err, apperror.ErrNotAParticipant)
	})

	t.Run("Reads are idempotent absent mutation", func(t *testing.T) {
		gamePlay, _ := newTestGamePlay(t)
		session := startGame(t, ctx, gamePlay)

		first, err := gamePlay.GetStatus(ctx, "U1", session.ID)
		require.NoError(t, err)

		second, err := gamePlay.GetStatus(ctx, "U1", session.ID)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("Missing session fails with SessionNotFound", func(t *testing.T) {
		gamePlay, _ := newTestGamePlay(t)

		_, err := gamePlay.GetStatus(ctx, "U1", "missing")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}
