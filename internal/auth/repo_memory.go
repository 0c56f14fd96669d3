package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu                   sync.RWMutex
	usersByID            map[string]User
	userIDByEmail        map[string]string
	tokensByID           map[string]LoginToken
	tokenIDByHash        map[string]string
	sessionsByID         map[string]Session
	sessionIDByTokenHash map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		usersByID:            map[string]User{},
		userIDByEmail:        map[string]string{},
		tokensByID:           map[string]LoginToken{},
		tokenIDByHash:        map[string]string{},
		sessionsByID:         map[string]Session{},
		sessionIDByTokenHash: map[string]string{},
	}
}

func newID(prefix string) string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return prefix + "_" + hex.EncodeToString(b[:])
}

func (r *MemoryRepo) GetOrCreateUser(_ context.Context, email string, now time.Time) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.userIDByEmail[email]; ok {
		return r.usersByID[id], false, nil
	}
	u := User{ID: newID("user"), Email: email, CreatedAt: now}
	r.usersByID[u.ID] = u
	r.userIDByEmail[email] = u.ID
	return u, true, nil
}

func (r *MemoryRepo) GetUserByID(_ context.Context, id string) (User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.usersByID[id]
	return u, ok, nil
}

func (r *MemoryRepo) PutLoginToken(_ context.Context, t LoginToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokensByID[t.ID] = t
	r.tokenIDByHash[t.TokenHash] = t.ID
	return nil
}

func (r *MemoryRepo) GetLoginTokenByHash(_ context.Context, tokenHash string) (LoginToken, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.tokenIDByHash[tokenHash]
	if !ok {
		return LoginToken{}, false, nil
	}
	t, ok := r.tokensByID[id]
	return t, ok, nil
}

func (r *MemoryRepo) DeleteLoginToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tokensByID[id]; ok {
		delete(r.tokenIDByHash, t.TokenHash)
		delete(r.tokensByID, id)
	}
	return nil
}

func (r *MemoryRepo) CreateSession(_ context.Context, s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessionsByID[s.ID] = s
	r.sessionIDByTokenHash[s.TokenHash] = s.ID
	return nil
}

func (r *MemoryRepo) GetSessionByTokenHash(_ context.Context, tokenHash string) (Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.sessionIDByTokenHash[tokenHash]
	if !ok {
		return Session{}, false, nil
	}
	s, ok := r.sessionsByID[id]
	return s, ok, nil
}

func (r *MemoryRepo) TouchSession(_ context.Context, id string, seen time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessionsByID[id]; ok {
		s.LastSeen = seen
		r.sessionsByID[id] = s
	}
	return nil
}

func (r *MemoryRepo) DeleteSessionByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessionsByID[id]; ok {
		delete(r.sessionIDByTokenHash, s.TokenHash)
		delete(r.sessionsByID, id)
	}
	return nil
}

func (r *MemoryRepo) DeleteSessionByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.sessionIDByTokenHash[tokenHash]; ok {
		delete(r.sessionsByID, id)
		delete(r.sessionIDByTokenHash, tokenHash)
	}
	return nil
}

func (r *MemoryRepo) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.tokensByID {
		if now.After(t.ExpiresAt) {
			delete(r.tokenIDByHash, t.TokenHash)
			delete(r.tokensByID, id)
			n++
		}
	}
	for id, s := range r.sessionsByID {
		if now.After(s.ExpiresAt) {
			delete(r.sessionIDByTokenHash, s.TokenHash)
			delete(r.sessionsByID, id)
			n++
		}
	}
	return n, nil
}
