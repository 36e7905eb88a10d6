package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
)

// PostgresConfigurationsRepository 配置 + 地址命名空间Repository实现
// 配置内容存放在 data JSONB 中；发布字段是独立列，读取时以列为准
type PostgresConfigurationsRepository struct {
	db *sql.DB
}

// NewPostgresConfigurationsRepository 创建配置Repository
func NewPostgresConfigurationsRepository(db *sql.DB) *PostgresConfigurationsRepository {
	return &PostgresConfigurationsRepository{db: db}
}

// 确保实现了接口
var (
	_ ConfigurationsRepository = (*PostgresConfigurationsRepository)(nil)
	_ AddressRepository        = (*PostgresConfigurationsRepository)(nil)
)

const selectConfiguration = `
	SELECT
		configuration_id::text,
		owner_id,
		status,
		COALESCE(published_address, '') AS published_address,
		published_at,
		COALESCE(custom_domain, '') AS custom_domain,
		data,
		updated_at
	FROM configurations
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfiguration(row rowScanner) (*domain.Configuration, error) {
	var (
		id, ownerID, status, address, customDomain string
		publishedAt                                sql.NullTime
		data                                       []byte
		updatedAt                                  time.Time
	)
	if err := row.Scan(&id, &ownerID, &status, &address, &publishedAt, &customDomain, &data, &updatedAt); err != nil {
		return nil, err
	}

	var cfg domain.Configuration
	if len(data) > 0 {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode configuration %s: %w", id, err)
		}
	}
	cfg.ID = id
	cfg.OwnerID = ownerID
	cfg.Status = status
	cfg.PublishedAddress = address
	cfg.PublishedAt = nil
	if publishedAt.Valid {
		t := publishedAt.Time.UTC()
		cfg.PublishedAt = &t
	}
	cfg.CustomDomain = customDomain
	cfg.UpdatedAt = updatedAt.UTC()
	return &cfg, nil
}

func (r *PostgresConfigurationsRepository) getOne(ctx context.Context, where string, arg any) (*domain.Configuration, error) {
	cfg, err := scanConfiguration(r.db.QueryRowContext(ctx, selectConfiguration+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}
	return cfg, nil
}

// GetConfiguration 根据 id 获取配置
func (r *PostgresConfigurationsRepository) GetConfiguration(ctx context.Context, id string) (*domain.Configuration, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return r.getOne(ctx, `WHERE configuration_id = $1::uuid`, id)
}

// GetConfigurationBySlug 根据已发布地址获取配置
func (r *PostgresConfigurationsRepository) GetConfigurationBySlug(ctx context.Context, slug string) (*domain.Configuration, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	return r.getOne(ctx, `WHERE published_address = $1 AND status = 'published'`, slug)
}

// GetConfigurationByDomain 根据自定义域名获取已发布配置
func (r *PostgresConfigurationsRepository) GetConfigurationByDomain(ctx context.Context, host string) (*domain.Configuration, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return nil, ErrNotFound
	}
	return r.getOne(ctx, `WHERE lower(custom_domain) = $1 AND status = 'published'`, host)
}

func (r *PostgresConfigurationsRepository) list(ctx context.Context, where string, args ...any) ([]*domain.Configuration, error) {
	rows, err := r.db.QueryContext(ctx, selectConfiguration+where+` ORDER BY updated_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Configuration
	for rows.Next() {
		cfg, err := scanConfiguration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan configuration: %w", err)
		}
		out = append(out, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate configurations: %w", err)
	}
	return out, nil
}

// ListPublished 列出所有已发布配置
func (r *PostgresConfigurationsRepository) ListPublished(ctx context.Context) ([]*domain.Configuration, error) {
	return r.list(ctx, `WHERE status = 'published' AND published_address IS NOT NULL`)
}

// ListByOwner 列出某个 owner 的配置
func (r *PostgresConfigurationsRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Configuration, error) {
	return r.list(ctx, `WHERE owner_id = $1`, ownerID)
}

// draftDocument strips publish metadata; those columns are authoritative.
func draftDocument(cfg *domain.Configuration) ([]byte, error) {
	doc := *cfg
	doc.Status = ""
	doc.PublishedAddress = ""
	doc.PublishedAt = nil
	doc.UpdatedAt = time.Time{}
	return json.Marshal(&doc)
}

// CreateConfiguration 创建草稿
func (r *PostgresConfigurationsRepository) CreateConfiguration(ctx context.Context, cfg *domain.Configuration) (string, error) {
	if cfg == nil || cfg.OwnerID == "" {
		return "", fmt.Errorf("owner_id is required")
	}
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("invalid configuration id %q", id)
	}
	doc, err := draftDocument(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode configuration: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO configurations (configuration_id, owner_id, status, custom_domain, data, created_at, updated_at)
		VALUES ($1::uuid, $2, 'draft', NULLIF($3, ''), $4, now(), now())
	`, id, cfg.OwnerID, strings.ToLower(strings.TrimSpace(cfg.CustomDomain)), doc)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrDomainTaken
		}
		return "", fmt.Errorf("failed to create configuration: %w", err)
	}
	return id, nil
}

// UpdateConfiguration 更新草稿内容（owner 必须匹配）
func (r *PostgresConfigurationsRepository) UpdateConfiguration(ctx context.Context, cfg *domain.Configuration) error {
	if cfg == nil || cfg.ID == "" {
		return fmt.Errorf("configuration_id is required")
	}
	if _, err := uuid.Parse(cfg.ID); err != nil {
		return ErrNotFound
	}
	doc, err := draftDocument(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE configurations
		SET data = $3, custom_domain = NULLIF($4, ''), updated_at = now()
		WHERE configuration_id = $1::uuid AND owner_id = $2
	`, cfg.ID, cfg.OwnerID, doc, strings.ToLower(strings.TrimSpace(cfg.CustomDomain)))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDomainTaken
		}
		return fmt.Errorf("failed to update configuration: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update configuration: %w", err)
	}
	if n == 0 {
		return r.missingOrForeign(ctx, cfg.ID)
	}
	return nil
}

func (r *PostgresConfigurationsRepository) missingOrForeign(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM configurations WHERE configuration_id = $1::uuid)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check configuration: %w", err)
	}
	if exists {
		return ErrOwnerMismatch
	}
	return ErrNotFound
}

// LookupAddress 查询地址记录
func (r *PostgresConfigurationsRepository) LookupAddress(ctx context.Context, name string) (*domain.AddressRecord, bool, error) {
	var rec domain.AddressRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT name, COALESCE(owner_id, ''), COALESCE(configuration_id::text, ''), status, created_at, updated_at
		FROM address_records
		WHERE name = $1
	`, name).Scan(&rec.Name, &rec.OwnerID, &rec.ConfigurationID, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up address: %w", err)
	}
	return &rec, true, nil
}

// ReserveAddress 标记系统保留名称
func (r *PostgresConfigurationsRepository) ReserveAddress(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO address_records (name, status, created_at, updated_at)
		VALUES ($1, 'reserved', now(), now())
		ON CONFLICT (name) DO NOTHING
	`, name)
	if err != nil {
		return fmt.Errorf("failed to reserve address: %w", err)
	}
	return nil
}

// Publish 原子发布
//  1. 锁定配置行并校验 owner
//  2. 认领地址：不存在则插入；存在时仅当同一 owner 持有（compare-and-set）
//  3. 该地址之前指向的其它配置、该配置之前的地址一并释放
//  4. 配置设为 published
func (r *PostgresConfigurationsRepository) Publish(ctx context.Context, cmd domain.PublishCommand) error {
	if cmd.ConfigurationID == "" || cmd.OwnerID == "" || cmd.Address == "" {
		return fmt.Errorf("configuration_id, owner_id and address are required")
	}
	at := cmd.PublishedAt.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin publish: %w", err)
	}
	defer tx.Rollback()

	var ownerID string
	err = tx.QueryRowContext(ctx,
		`SELECT owner_id FROM configurations WHERE configuration_id = $1::uuid FOR UPDATE`,
		cmd.ConfigurationID,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock configuration: %w", err)
	}
	if ownerID != cmd.OwnerID {
		return ErrOwnerMismatch
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO address_records (name, owner_id, configuration_id, status, created_at, updated_at)
		VALUES ($1, $2, $3::uuid, 'owned', $4, $4)
		ON CONFLICT (name) DO UPDATE
		SET configuration_id = EXCLUDED.configuration_id, updated_at = EXCLUDED.updated_at
		WHERE address_records.status = 'owned' AND address_records.owner_id = EXCLUDED.owner_id
	`, cmd.Address, cmd.OwnerID, cmd.ConfigurationID, at)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAddressTaken
		}
		return fmt.Errorf("failed to claim address: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to claim address: %w", err)
	}
	if n == 0 {
		return ErrAddressTaken
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE configurations
		SET status = 'draft', published_address = NULL, published_at = NULL, updated_at = $3
		WHERE published_address = $1 AND configuration_id <> $2::uuid
	`, cmd.Address, cmd.ConfigurationID, at); err != nil {
		return fmt.Errorf("failed to release sibling configuration: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM address_records
		WHERE configuration_id = $1::uuid AND name <> $2 AND status = 'owned'
	`, cmd.ConfigurationID, cmd.Address); err != nil {
		return fmt.Errorf("failed to release previous address: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE configurations
		SET status = 'published', published_address = $2, published_at = $3, updated_at = $3
		WHERE configuration_id = $1::uuid
	`, cmd.ConfigurationID, cmd.Address, at); err != nil {
		if isUniqueViolation(err) {
			return ErrAddressTaken
		}
		return fmt.Errorf("failed to mark configuration published: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit publish: %w", err)
	}
	return nil
}
