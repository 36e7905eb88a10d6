package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
)

// MemoryConfigurationsRepo serves configurations and the address namespace when
// the DB is disabled. One mutex guards both maps so Publish is a single
// critical section.
type MemoryConfigurationsRepo struct {
	mu        sync.RWMutex
	configs   map[string]*domain.Configuration // configurationID -> Configuration
	addresses map[string]*domain.AddressRecord // name -> record
	now       func() time.Time
}

func NewMemoryConfigurationsRepo() *MemoryConfigurationsRepo {
	return &MemoryConfigurationsRepo{
		configs:   map[string]*domain.Configuration{},
		addresses: map[string]*domain.AddressRecord{},
		now:       time.Now,
	}
}

var (
	_ ConfigurationsRepository = (*MemoryConfigurationsRepo)(nil)
	_ AddressRepository        = (*MemoryConfigurationsRepo)(nil)
)

// clone deep-copies through JSON so callers never share nested slices with
// the store.
func clone(cfg *domain.Configuration) *domain.Configuration {
	b, err := json.Marshal(cfg)
	if err != nil {
		panic(fmt.Sprintf("clone configuration: %v", err))
	}
	var out domain.Configuration
	if err := json.Unmarshal(b, &out); err != nil {
		panic(fmt.Sprintf("clone configuration: %v", err))
	}
	return &out
}

func (r *MemoryConfigurationsRepo) GetConfiguration(_ context.Context, id string) (*domain.Configuration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(cfg), nil
}

func (r *MemoryConfigurationsRepo) GetConfigurationBySlug(_ context.Context, slug string) (*domain.Configuration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cfg := range r.configs {
		if slug != "" && cfg.Status == domain.StatusPublished && cfg.PublishedAddress == slug {
			return clone(cfg), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryConfigurationsRepo) GetConfigurationByDomain(_ context.Context, host string) (*domain.Configuration, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cfg := range r.configs {
		if host != "" && cfg.Status == domain.StatusPublished && strings.EqualFold(cfg.CustomDomain, host) {
			return clone(cfg), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryConfigurationsRepo) listWhere(keep func(*domain.Configuration) bool) []*domain.Configuration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Configuration
	for _, cfg := range r.configs {
		if keep(cfg) {
			out = append(out, clone(cfg))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *MemoryConfigurationsRepo) ListPublished(_ context.Context) ([]*domain.Configuration, error) {
	return r.listWhere(func(c *domain.Configuration) bool { return c.IsPublished() }), nil
}

func (r *MemoryConfigurationsRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.Configuration, error) {
	return r.listWhere(func(c *domain.Configuration) bool { return c.OwnerID == ownerID }), nil
}

func (r *MemoryConfigurationsRepo) domainInUse(host, exceptID string) bool {
	if host == "" {
		return false
	}
	for id, cfg := range r.configs {
		if id != exceptID && strings.EqualFold(cfg.CustomDomain, host) {
			return true
		}
	}
	return false
}

func (r *MemoryConfigurationsRepo) CreateConfiguration(_ context.Context, cfg *domain.Configuration) (string, error) {
	if cfg == nil || cfg.OwnerID == "" {
		return "", fmt.Errorf("owner_id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c := clone(cfg)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := r.configs[c.ID]; exists {
		return "", fmt.Errorf("configuration %s already exists", c.ID)
	}
	c.CustomDomain = strings.ToLower(strings.TrimSpace(c.CustomDomain))
	if r.domainInUse(c.CustomDomain, c.ID) {
		return "", ErrDomainTaken
	}
	c.Status = domain.StatusDraft
	c.PublishedAddress = ""
	c.PublishedAt = nil
	c.UpdatedAt = r.now().UTC()
	r.configs[c.ID] = c
	return c.ID, nil
}

func (r *MemoryConfigurationsRepo) UpdateConfiguration(_ context.Context, cfg *domain.Configuration) error {
	if cfg == nil || cfg.ID == "" {
		return fmt.Errorf("configuration_id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.configs[cfg.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.OwnerID != cfg.OwnerID {
		return ErrOwnerMismatch
	}
	c := clone(cfg)
	c.CustomDomain = strings.ToLower(strings.TrimSpace(c.CustomDomain))
	if r.domainInUse(c.CustomDomain, c.ID) {
		return ErrDomainTaken
	}
	c.Status = cur.Status
	c.PublishedAddress = cur.PublishedAddress
	c.PublishedAt = cur.PublishedAt
	c.UpdatedAt = r.now().UTC()
	r.configs[c.ID] = c
	return nil
}

func (r *MemoryConfigurationsRepo) LookupAddress(_ context.Context, name string) (*domain.AddressRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.addresses[name]
	if !ok {
		return nil, false, nil
	}
	cp := *rec
	return &cp, true, nil
}

func (r *MemoryConfigurationsRepo) ReserveAddress(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.addresses[name]; ok {
		return nil
	}
	now := r.now().UTC()
	r.addresses[name] = &domain.AddressRecord{Name: name, Status: domain.AddressReserved, CreatedAt: now, UpdatedAt: now}
	return nil
}

// Publish mirrors the Postgres transaction: every check happens before the
// first write, so a failure leaves both maps untouched.
func (r *MemoryConfigurationsRepo) Publish(_ context.Context, cmd domain.PublishCommand) error {
	if cmd.ConfigurationID == "" || cmd.OwnerID == "" || cmd.Address == "" {
		return fmt.Errorf("configuration_id, owner_id and address are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.configs[cmd.ConfigurationID]
	if !ok {
		return ErrNotFound
	}
	if cfg.OwnerID != cmd.OwnerID {
		return ErrOwnerMismatch
	}
	rec, exists := r.addresses[cmd.Address]
	if exists && (rec.Status != domain.AddressOwned || rec.OwnerID != cmd.OwnerID) {
		return ErrAddressTaken
	}

	at := cmd.PublishedAt.UTC()
	if exists {
		rec.ConfigurationID = cmd.ConfigurationID
		rec.UpdatedAt = at
	} else {
		r.addresses[cmd.Address] = &domain.AddressRecord{
			Name:            cmd.Address,
			OwnerID:         cmd.OwnerID,
			ConfigurationID: cmd.ConfigurationID,
			Status:          domain.AddressOwned,
			CreatedAt:       at,
			UpdatedAt:       at,
		}
	}

	for id, other := range r.configs {
		if id != cmd.ConfigurationID && other.PublishedAddress == cmd.Address {
			other.Status = domain.StatusDraft
			other.PublishedAddress = ""
			other.PublishedAt = nil
			other.UpdatedAt = at
		}
	}
	for name, a := range r.addresses {
		if name != cmd.Address && a.Status == domain.AddressOwned && a.ConfigurationID == cmd.ConfigurationID {
			delete(r.addresses, name)
		}
	}

	cfg.Status = domain.StatusPublished
	cfg.PublishedAddress = cmd.Address
	cfg.PublishedAt = &at
	cfg.UpdatedAt = at
	return nil
}

// MemoryOwnersRepo 内存所有者Repository
type MemoryOwnersRepo struct {
	mu     sync.RWMutex
	owners map[string]domain.Owner
}

func NewMemoryOwnersRepo() *MemoryOwnersRepo {
	return &MemoryOwnersRepo{owners: map[string]domain.Owner{}}
}

var _ OwnersRepository = (*MemoryOwnersRepo)(nil)

func (r *MemoryOwnersRepo) GetOwner(_ context.Context, ownerID string) (*domain.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.owners[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (r *MemoryOwnersRepo) SaveOwner(_ context.Context, owner *domain.Owner) error {
	if owner == nil || owner.OwnerID == "" || owner.TokenHash == "" {
		return fmt.Errorf("owner_id and token_hash are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o := *owner
	if cur, ok := r.owners[o.OwnerID]; ok {
		o.CreatedAt = cur.CreatedAt
	} else if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	r.owners[o.OwnerID] = o
	return nil
}
