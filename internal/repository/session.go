package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const (
	sessionKeyPrefix  = "session:"
	joinCodeKeyPrefix = "joincode:"
)

// SessionRepository is the persistence seam of the session core. Save
// is an optimistic-concurrency write: it fails with
// apperror.ErrStorageConflict when the stored document's version no
// longer matches the one the session was loaded with, which makes the
// per-session critical section effective across process instances.
type SessionRepository interface {
	Save(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	GetByJoinCode(ctx context.Context, code string) (*entity.Session, error)

	ReserveJoinCode(ctx context.Context, code, sessionID string) (bool, error)
	ReleaseJoinCode(ctx context.Context, code string) error

	ListSessionIDs(ctx context.Context) ([]string, error)
}

type dbSession struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) SessionRepository {
	return &dbSession{
		client: client,
	}
}

func (that *dbSession) Save(ctx context.Context, session *entity.Session) error {
	sessionKey := sessionKeyPrefix + session.ID
	loadedVersion := session.Version

	txn := func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, sessionKey).Result()

		switch {
		case errors.Is(err, redis.Nil):
			if loadedVersion != 0 {
				return apperror.ErrStorageConflict
			}
		case err != nil:
			return fmt.Errorf("failed to get session: %w", err)
		default:
			var current entity.Session
			if err = json.Unmarshal([]byte(stored), &current); err != nil {
				return fmt.Errorf("failed to unmarshal session: %w", err)
			}
			if current.Version != loadedVersion {
				return apperror.ErrStorageConflict
			}
		}

		session.Version = loadedVersion + 1
		sessionJSON, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, sessionKey, sessionJSON, 0)
			return nil
		})

		return err
	}

	err := that.client.Watch(ctx, txn, sessionKey)
	if err != nil {
		session.Version = loadedVersion

		if errors.Is(err, redis.TxFailedErr) {
			return apperror.ErrStorageConflict
		}

		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	sessionKey := sessionKeyPrefix + id

	response, err := that.client.Get(ctx, sessionKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	var session entity.Session
	if err = json.Unmarshal([]byte(response), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (that *dbSession) GetByJoinCode(ctx context.Context, code string) (*entity.Session, error) {
	codeKey := joinCodeKeyPrefix + code

	sessionID, err := that.client.Get(ctx, codeKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to resolve join code: %w", err)
	}

	return that.GetByID(ctx, sessionID)
}

// ReserveJoinCode atomically claims a code for a session. It returns
// false when another joinable session already holds the code.
func (that *dbSession) ReserveJoinCode(ctx context.Context, code, sessionID string) (bool, error) {
	codeKey := joinCodeKeyPrefix + code

	reserved, err := that.client.SetNX(ctx, codeKey, sessionID, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve join code: %w", err)
	}

	return reserved, nil
}

// ReleaseJoinCode frees a code once its session stops being joinable.
func (that *dbSession) ReleaseJoinCode(ctx context.Context, code string) error {
	codeKey := joinCodeKeyPrefix + code

	if err := that.client.Del(ctx, codeKey).Err(); err != nil {
		return fmt.Errorf("failed to release join code: %w", err)
	}

	return nil
}

// ListSessionIDs enumerates every stored session. The lifecycle sweep
// is the only caller; request paths never scan.
func (that *dbSession) ListSessionIDs(ctx context.Context) ([]string, error) {
	var ids []string

	iter := that.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), sessionKeyPrefix))
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}

	return ids, nil
}
