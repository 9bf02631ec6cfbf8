package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// memorySessionRepo is an in-memory stand-in for the Redis repository
// with the same optimistic-concurrency contract: a save whose version
// does not match the stored document fails with ErrStorageConflict.
type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string][]byte
	codes    map[string]string

	// conflictNextSaves makes the next N saves fail with a storage
	// conflict, simulating a concurrent commit from another instance.
	conflictNextSaves int
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{
		sessions: make(map[string][]byte),
		codes:    make(map[string]string),
	}
}

func (that *memorySessionRepo) Save(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.conflictNextSaves > 0 {
		that.conflictNextSaves--
		return apperror.ErrStorageConflict
	}

	if stored, ok := that.sessions[session.ID]; ok {
		var current entity.Session
		if err := json.Unmarshal(stored, &current); err != nil {
			return err
		}
		if current.Version != session.Version {
			return apperror.ErrStorageConflict
		}
	} else if session.Version != 0 {
		return apperror.ErrStorageConflict
	}

	session.Version++
	data, err := json.Marshal(session)
	if err != nil {
		session.Version--
		return err
	}
	that.sessions[session.ID] = data

	return nil
}

func (that *memorySessionRepo) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.decode(id)
}

func (that *memorySessionRepo) GetByJoinCode(_ context.Context, code string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	id, ok := that.codes[code]
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	return that.decode(id)
}

func (that *memorySessionRepo) ReserveJoinCode(_ context.Context, code, sessionID string) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, taken := that.codes[code]; taken {
		return false, nil
	}
	that.codes[code] = sessionID

	return true, nil
}

func (that *memorySessionRepo) ReleaseJoinCode(_ context.Context, code string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.codes, code)

	return nil
}

func (that *memorySessionRepo) ListSessionIDs(_ context.Context) ([]string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	ids := make([]string, 0, len(that.sessions))
	for id := range that.sessions {
		ids = append(ids, id)
	}

	return ids, nil
}

// decode hands out an independent copy so callers never share state
// with the store, the way a real document store behaves.
func (that *memorySessionRepo) decode(id string) (*entity.Session, error) {
	stored, ok := that.sessions[id]
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	var session entity.Session
	if err := json.Unmarshal(stored, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// exhaustedReserver refuses every code, driving the directory to its
// attempt budget.
type exhaustedReserver struct{}

func (exhaustedReserver) ReserveJoinCode(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

// singleCollisionReserver rejects the first code it sees and accepts
// every later one.
type singleCollisionReserver struct {
	mu       sync.Mutex
	rejected int
}

func (that *singleCollisionReserver) ReserveJoinCode(_ context.Context, code, _ string) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.rejected == 0 && strings.TrimSpace(code) != "" {
		that.rejected++
		return false, nil
	}

	return true, nil
}
