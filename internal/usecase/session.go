package usecase

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// SessionUseCase is the surface the transport layer talks to: the four
// session operations and nothing else.
type SessionUseCase interface {
	CreateSession(ctx context.Context, creatorID string) (*entity.Session, error)
	JoinSession(ctx context.Context, joinerID, joinCode string) (*entity.Session, error)
	MakeMove(ctx context.Context, actorID, sessionID string, pt entity.Point) (*entity.Session, error)
	GetStatus(ctx context.Context, requesterID, sessionID string) (*entity.Session, error)
}

type gamePlayService interface {
	CreateSession(ctx context.Context, creatorID string) (*entity.Session, error)
	JoinSession(ctx context.Context, joinerID, joinCode string) (*entity.Session, error)
	MakeMove(ctx context.Context, actorID, sessionID string, pt entity.Point) (*entity.Session, error)
	GetStatus(ctx context.Context, requesterID, sessionID string) (*entity.Session, error)
}

type sessionUseCase struct {
	gamePlayService gamePlayService
}

func NewSessionUseCase(gamePlayService gamePlayService) SessionUseCase {
	return &sessionUseCase{
		gamePlayService: gamePlayService,
	}
}

func (that *sessionUseCase) CreateSession(ctx context.Context, creatorID string) (*entity.Session, error) {
	session, err := that.gamePlayService.CreateSession(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("could not create session: %w", err)
	}

	return session, nil
}

func (that *sessionUseCase) JoinSession(ctx context.Context, joinerID, joinCode string) (*entity.Session, error) {
	session, err := that.gamePlayService.JoinSession(ctx, joinerID, joinCode)
	if err != nil {
		return nil, fmt.Errorf("could not join session: %w", err)
	}

	return session, nil
}

func (that *sessionUseCase) MakeMove(ctx context.Context, actorID, sessionID string, pt entity.Point) (*entity.Session, error) {
	session, err := that.gamePlayService.MakeMove(ctx, actorID, sessionID, pt)
	if err != nil {
		return nil, fmt.Errorf("could not make move: %w", err)
	}

	return session, nil
}

func (that *sessionUseCase) GetStatus(ctx context.Context, requesterID, sessionID string) (*entity.Session, error) {
	session, err := that.gamePlayService.GetStatus(ctx, requesterID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("could not get session status: %w", err)
	}

	return session, nil
}
