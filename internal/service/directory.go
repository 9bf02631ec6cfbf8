package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/pkg"
)

// joinCodeAttempts bounds the collision-retry loop. Failing after the
// budget is a capacity condition, not a caller error; looping forever
// would trade it for unbounded latency instead.
const joinCodeAttempts = 10

type DirectoryService interface {
	AllocateJoinCode(ctx context.Context, sessionID string) (string, error)
}

type codeReserver interface {
	ReserveJoinCode(ctx context.Context, code, sessionID string) (bool, error)
}

type directoryService struct {
	codes codeReserver
}

func NewDirectoryService(codes codeReserver) DirectoryService {
	return &directoryService{
		codes: codes,
	}
}

// AllocateJoinCode draws random codes until one is not held by any
// joinable session, up to the attempt budget.
func (that *directoryService) AllocateJoinCode(ctx context.Context, sessionID string) (string, error) {
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := pkg.GenerateJoinCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}

		reserved, err := that.codes.ReserveJoinCode(ctx, code, sessionID)
		if err != nil {
			return "", fmt.Errorf("failed to reserve join code: %w", err)
		}

		if reserved {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w: gave up after %d attempts", apperror.ErrCodeSpaceExhausted, joinCodeAttempts)
}
