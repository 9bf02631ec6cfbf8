package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/pkg"
)

type SessionService interface {
	CreateSession(ctx context.Context, creatorID string) (*entity.Session, error)
	UpdateSession(ctx context.Context, session *entity.Session) error

	GetSessionByID(ctx context.Context, id string) (*entity.Session, error)
	GetSessionByJoinCode(ctx context.Context, code string) (*entity.Session, error)

	ReleaseJoinCode(ctx context.Context, code string) error
}

type sessionRepo interface {
	Save(ctx context.Context, session *entity.Session) error

	GetByID(ctx context.Context, id string) (*entity.Session, error)
	GetByJoinCode(ctx context.Context, code string) (*entity.Session, error)

	ReleaseJoinCode(ctx context.Context, code string) error
}

type sessionService struct {
	sessionRepo sessionRepo
	directory   DirectoryService
}

func NewSessionService(sessionRepo sessionRepo, directory DirectoryService) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		directory:   directory,
	}
}

// CreateSession allocates an open session for the creator: fresh id,
// fresh board, a join code reserved through the directory.
func (that *sessionService) CreateSession(ctx context.Context, creatorID string) (*entity.Session, error) {
	sessionID := pkg.GenerateSessionID()

	joinCode, err := that.directory.AllocateJoinCode(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate join code: %w", err)
	}

	session := entity.NewSession(sessionID, joinCode, creatorID)
	if err = that.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session to storage: %w", err)
	}

	return session, nil
}

func (that *sessionService) GetSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session from storage: %w", err)
	}

	return session, nil
}

func (that *sessionService) GetSessionByJoinCode(ctx context.Context, code string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByJoinCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session by join code: %w", err)
	}

	return session, nil
}

func (that *sessionService) UpdateSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (that *sessionService) ReleaseJoinCode(ctx context.Context, code string) error {
	if err := that.sessionRepo.ReleaseJoinCode(ctx, code); err != nil {
		return fmt.Errorf("failed to release join code: %w", err)
	}

	return nil
}
