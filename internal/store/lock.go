package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrLocked = errors.New("already locked")

const lockKeyPrefix = "site:lock:"

// Locker grants at most one holder per key. The in-process map rejects
// duplicates inside one instance without a round trip; the KV entry covers
// other instances sharing the same Redis.
type Locker struct {
	mu    sync.Mutex
	local map[string]string // key -> token
	kv    KV
}

func NewLocker(kv KV) *Locker {
	return &Locker{local: map[string]string{}, kv: kv}
}

// Lock acquires key for ttl and returns the token needed to unlock it.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()

	l.mu.Lock()
	if _, held := l.local[key]; held {
		l.mu.Unlock()
		return "", ErrLocked
	}
	l.local[key] = token
	l.mu.Unlock()

	ok, err := l.kv.SetNX(ctx, lockKeyPrefix+key, token, ttl)
	if err != nil || !ok {
		l.mu.Lock()
		delete(l.local, key)
		l.mu.Unlock()
		if err != nil {
			return "", fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		return "", ErrLocked
	}
	return token, nil
}

// Unlock releases key if token still holds it.
func (l *Locker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	if l.local[key] == token {
		delete(l.local, key)
	}
	l.mu.Unlock()

	if _, err := l.kv.CompareAndDelete(ctx, lockKeyPrefix+key, token); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}
