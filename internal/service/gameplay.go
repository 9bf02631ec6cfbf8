package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

// saveAttempts bounds the reload-and-revalidate loop after an
// optimistic-concurrency conflict. The validator checks are idempotent
// against the session's current state, so re-running them after a
// reload is safe.
const saveAttempts = 3

// GamePlayService funnels every state change of a session through one
// place: per-session critical section, validate, commit, persist.
type GamePlayService interface {
	CreateSession(ctx context.Context, creatorID string) (*entity.Session, error)
	JoinSession(ctx context.Context, joinerID, joinCode string) (*entity.Session, error)
	MakeMove(ctx context.Context, actorID, sessionID string, pt entity.Point) (*entity.Session, error)
	GetStatus(ctx context.Context, requesterID, sessionID string) (*entity.Session, error)

	AbandonSession(ctx context.Context, sessionID string) error
}

type gamePlayService struct {
	logger *slog.Logger

	sessionService SessionService
	locks          *keyedMutex
}

func NewGamePlayService(logger *slog.Logger, sessionService SessionService) GamePlayService {
	return &gamePlayService{
		logger:         logger,
		sessionService: sessionService,
		locks:          newKeyedMutex(),
	}
}

func (that *gamePlayService) CreateSession(ctx context.Context, creatorID string) (*entity.Session, error) {
	session, err := that.sessionService.CreateSession(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (that *gamePlayService) JoinSession(ctx context.Context, joinerID, joinCode string) (*entity.Session, error) {
	session, err := that.sessionService.GetSessionByJoinCode(ctx, joinCode)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session by join code: %w", err)
	}

	unlock := that.locks.Lock(session.ID)
	defer unlock()

	for attempt := 0; attempt < saveAttempts; attempt++ {
		// A participant re-joining their own session gets it back as is.
		if session.IsParticipant(joinerID) {
			return session, nil
		}

		if err = session.BindSecondPlayer(joinerID); err != nil {
			return nil, err
		}

		err = that.sessionService.UpdateSession(ctx, session)
		if errors.Is(err, apperror.ErrStorageConflict) {
			if session, err = that.sessionService.GetSessionByID(ctx, session.ID); err != nil {
				return nil, fmt.Errorf("failed to reload session: %w", err)
			}
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to persist join: %w", err)
		}

		that.releaseJoinCode(ctx, session)

		return session, nil
	}

	return nil, fmt.Errorf("%w: join gave up after %d attempts", apperror.ErrStorageConflict, saveAttempts)
}

func (that *gamePlayService) MakeMove(ctx context.Context, actorID, sessionID string, pt entity.Point) (*entity.Session, error) {
	unlock := that.locks.Lock(sessionID)
	defer unlock()

	session, err := that.sessionService.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	for attempt := 0; attempt < saveAttempts; attempt++ {
		color, err := session.ColorOf(actorID)
		if err != nil {
			return nil, err
		}

		// Validation is fully decided before any mutation: a failed
		// move leaves the session untouched.
		if err = gomoku.ApplyMove(session, color, pt); err != nil {
			return nil, err
		}

		err = that.sessionService.UpdateSession(ctx, session)
		if errors.Is(err, apperror.ErrStorageConflict) {
			// Another instance committed first. Drop the local copy,
			// reload and re-validate against the fresh state.
			if session, err = that.sessionService.GetSessionByID(ctx, sessionID); err != nil {
				return nil, fmt.Errorf("failed to reload session: %w", err)
			}
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to persist move: %w", err)
		}

		return session, nil
	}

	return nil, fmt.Errorf("%w: move gave up after %d attempts", apperror.ErrStorageConflict, saveAttempts)
}

// GetStatus is the read-only view of a session, restricted to its
// participants so the board cannot be peeked at out of band.
func (that *gamePlayService) GetStatus(ctx context.Context, requesterID, sessionID string) (*entity.Session, error) {
	session, err := that.sessionService.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	if !session.IsParticipant(requesterID) {
		return nil, fmt.Errorf("%w: player %s", apperror.ErrNotAParticipant, requesterID)
	}

	return session, nil
}

// AbandonSession is the hook for the external abandon/timeout policy.
func (that *gamePlayService) AbandonSession(ctx context.Context, sessionID string) error {
	unlock := that.locks.Lock(sessionID)
	defer unlock()

	session, err := that.sessionService.GetSessionByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session by id: %w", err)
	}

	for attempt := 0; attempt < saveAttempts; attempt++ {
		wasJoinable := session.Joinable
		session.MarkAbandoned()

		err = that.sessionService.UpdateSession(ctx, session)
		if errors.Is(err, apperror.ErrStorageConflict) {
			if session, err = that.sessionService.GetSessionByID(ctx, sessionID); err != nil {
				return fmt.Errorf("failed to reload session: %w", err)
			}
			continue
		}

		if err != nil {
			return fmt.Errorf("failed to persist abandon: %w", err)
		}

		if wasJoinable {
			that.releaseJoinCode(ctx, session)
		}

		return nil
	}

	return fmt.Errorf("%w: abandon gave up after %d attempts", apperror.ErrStorageConflict, saveAttempts)
}

// releaseJoinCode frees the code index entry once a session stops
// being joinable. The session itself is already persisted; a stale
// index entry only costs one wasted draw at allocation time.
func (that *gamePlayService) releaseJoinCode(ctx context.Context, session *entity.Session) {
	log := that.logger.With("method", "releaseJoinCode", "sessionID", session.ID)

	if err := that.sessionService.ReleaseJoinCode(ctx, session.JoinCode); err != nil {
		log.Error("failed to release join code", "error", err)
	}
}
