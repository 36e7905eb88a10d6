package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
)

// PostgresOwnersRepository 所有者Repository实现
type PostgresOwnersRepository struct {
	db *sql.DB
}

func NewPostgresOwnersRepository(db *sql.DB) *PostgresOwnersRepository {
	return &PostgresOwnersRepository{db: db}
}

var _ OwnersRepository = (*PostgresOwnersRepository)(nil)

func (r *PostgresOwnersRepository) GetOwner(ctx context.Context, ownerID string) (*domain.Owner, error) {
	var o domain.Owner
	err := r.db.QueryRowContext(ctx,
		`SELECT owner_id, name, token_hash, created_at FROM owners WHERE owner_id = $1`, ownerID,
	).Scan(&o.OwnerID, &o.Name, &o.TokenHash, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	return &o, nil
}

// SaveOwner 创建或轮换 token
func (r *PostgresOwnersRepository) SaveOwner(ctx context.Context, owner *domain.Owner) error {
	if owner == nil || owner.OwnerID == "" || owner.TokenHash == "" {
		return fmt.Errorf("owner_id and token_hash are required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (owner_id, name, token_hash, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (owner_id) DO UPDATE SET name = EXCLUDED.name, token_hash = EXCLUDED.token_hash
	`, owner.OwnerID, owner.Name, owner.TokenHash)
	if err != nil {
		return fmt.Errorf("failed to save owner: %w", err)
	}
	return nil
}
