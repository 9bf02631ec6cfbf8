package service

import (
	"context"
	"log/slog"
	"time"
)

// LifecyclePolicy is the external abandon/timeout policy the session
// state machine exposes a hook for. It periodically sweeps stored
// sessions and clears IsActive on those idle past the timeout, so
// half-open or deserted games stop being joinable.
type LifecyclePolicy struct {
	logger *slog.Logger

	lister         sessionLister
	sessionService SessionService
	gamePlay       sessionAbandoner

	idleTimeout   time.Duration
	sweepInterval time.Duration
}

type sessionLister interface {
	ListSessionIDs(ctx context.Context) ([]string, error)
}

type sessionAbandoner interface {
	AbandonSession(ctx context.Context, sessionID string) error
}

func NewLifecyclePolicy(
	logger *slog.Logger,
	lister sessionLister,
	sessionService SessionService,
	gamePlay sessionAbandoner,
	idleTimeout, sweepInterval time.Duration,
) *LifecyclePolicy {
	return &LifecyclePolicy{
		logger:         logger,
		lister:         lister,
		sessionService: sessionService,
		gamePlay:       gamePlay,
		idleTimeout:    idleTimeout,
		sweepInterval:  sweepInterval,
	}
}

// Run sweeps until the context is canceled.
func (that *LifecyclePolicy) Run(ctx context.Context) {
	log := that.logger.With("component", "lifecycle")

	ticker := time.NewTicker(that.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("lifecycle sweep stopped")
			return
		case <-ticker.C:
			that.Sweep(ctx)
		}
	}
}

// Sweep abandons every live session whose last update is older than
// the idle timeout. Finished sessions are immutable history and are
// left alone.
func (that *LifecyclePolicy) Sweep(ctx context.Context) {
	log := that.logger.With("component", "lifecycle")

	ids, err := that.lister.ListSessionIDs(ctx)
	if err != nil {
		log.Error("failed to list sessions", "error", err)
		return
	}

	cutoff := time.Now().Add(-that.idleTimeout).Unix()

	for _, id := range ids {
		session, err := that.sessionService.GetSessionByID(ctx, id)
		if err != nil {
			log.Error("failed to load session", "sessionID", id, "error", err)
			continue
		}

		if session.IsFinished() || !session.IsActive || session.UpdatedAt > cutoff {
			continue
		}

		if err = that.gamePlay.AbandonSession(ctx, id); err != nil {
			log.Error("failed to abandon session", "sessionID", id, "error", err)
			continue
		}

		log.Info("abandoned idle session", "sessionID", id)
	}
}
