package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const claimKeyPrefix = "site:claim:"

// Claims are advisory markers for names with a publish in flight. The
// authoritative check is the compare-and-set at persist time; claims only let
// other operators see "pending" while a publish runs.
type Claims struct {
	kv KV
}

func NewClaims(kv KV) *Claims { return &Claims{kv: kv} }

// Mark records owner as claiming name until ttl elapses. It reports false
// when another owner already holds the claim.
func (c *Claims) Mark(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	key := claimKeyPrefix + name
	ok, err := c.kv.SetNX(ctx, key, owner, ttl)
	if err != nil {
		return false, fmt.Errorf("failed to mark claim %s: %w", name, err)
	}
	if ok {
		return true, nil
	}
	holder, err := c.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrMiss) {
			// expired between the two calls
			return c.kv.SetNX(ctx, key, owner, ttl)
		}
		return false, fmt.Errorf("failed to read claim %s: %w", name, err)
	}
	if holder != owner {
		return false, nil
	}
	// refresh our own claim
	if err := c.kv.Set(ctx, key, owner, ttl); err != nil {
		return false, fmt.Errorf("failed to refresh claim %s: %w", name, err)
	}
	return true, nil
}

// PendingOwner returns the owner currently claiming name.
func (c *Claims) PendingOwner(ctx context.Context, name string) (string, bool, error) {
	owner, err := c.kv.Get(ctx, claimKeyPrefix+name)
	if err != nil {
		if errors.Is(err, ErrMiss) {
			return "", false, nil
		}
		return "", false, err
	}
	return owner, true, nil
}

// Release drops the claim if owner still holds it.
func (c *Claims) Release(ctx context.Context, name, owner string) error {
	if _, err := c.kv.CompareAndDelete(ctx, claimKeyPrefix+name, owner); err != nil {
		return fmt.Errorf("failed to release claim %s: %w", name, err)
	}
	return nil
}
