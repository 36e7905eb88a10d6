// Package auth issues and verifies owner tokens. A token is
// "<ownerID>.<secret>"; only a bcrypt hash of the secret is stored.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/repository"
)

// ErrInvalidToken covers malformed tokens, unknown owners and wrong secrets alike.
var ErrInvalidToken = errors.New("invalid owner token")

const secretBytes = 24

// Owners is the storage the tokens live in.
type Owners interface {
	GetOwner(ctx context.Context, ownerID string) (*domain.Owner, error)
	SaveOwner(ctx context.Context, owner *domain.Owner) error
}

// Tokens issues and verifies owner tokens.
type Tokens struct {
	owners Owners
	cost   int
	logger *zap.Logger
}

// NewTokens creates a token service. cost <= 0 uses bcrypt.DefaultCost.
func NewTokens(owners Owners, cost int, logger *zap.Logger) *Tokens {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tokens{owners: owners, cost: cost, logger: logger}
}

// Issue creates the owner if needed and rotates its token. The plain token
// is returned once and never stored.
func (t *Tokens) Issue(ctx context.Context, ownerID, name string) (string, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" || strings.Contains(ownerID, ".") {
		return "", fmt.Errorf("owner id must be non-empty and must not contain '.'")
	}
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(buf)
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), t.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token secret: %w", err)
	}
	if err := t.owners.SaveOwner(ctx, &domain.Owner{OwnerID: ownerID, Name: name, TokenHash: string(hash)}); err != nil {
		return "", err
	}
	t.logger.Info("Owner token issued", zap.String("owner_id", ownerID))
	return ownerID + "." + secret, nil
}

// Verify returns the owner a token belongs to.
func (t *Tokens) Verify(ctx context.Context, token string) (string, error) {
	ownerID, secret, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || ownerID == "" || secret == "" {
		return "", ErrInvalidToken
	}
	owner, err := t.owners.GetOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to load owner: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(owner.TokenHash), []byte(secret)) != nil {
		return "", ErrInvalidToken
	}
	return owner.OwnerID, nil
}
