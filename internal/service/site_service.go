package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/render"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/repository"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/store"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/theme"
)

// SiteService 站点读取、渲染与草稿管理
type SiteService interface {
	// TenantBySlug 返回已发布地址对应的配置；未发布或路由未激活时返回 repository.ErrNotFound
	TenantBySlug(ctx context.Context, slug string) (*domain.Configuration, error)
	// TenantByDomain 同上，按自定义域名
	TenantByDomain(ctx context.Context, host string) (*domain.Configuration, error)
	// RenderPage 解析样式并渲染页面（纯计算）
	RenderPage(cfg *domain.Configuration, page string) *RenderPageResponse

	CreateDraft(ctx context.Context, req CreateDraftRequest) (*domain.Configuration, error)
	GetDraft(ctx context.Context, id, ownerID string) (*domain.Configuration, error)
	UpdateDraft(ctx context.Context, req UpdateDraftRequest) (*domain.Configuration, error)
	ListDrafts(ctx context.Context, ownerID string) ([]*domain.Configuration, error)

	ListTemplates() []theme.Template

	// WarmRoutes 根据已发布配置重建路由表，返回激活的主机数
	WarmRoutes(ctx context.Context) (int, error)
}

// RouteTable is the read/activate side of the route table.
type RouteTable interface {
	Activate(ctx context.Context, kind, host, configID string) (bool, error)
	Lookup(ctx context.Context, kind, host string) (string, error)
}

type siteService struct {
	configs  repository.ConfigurationsRepository
	routes   RouteTable
	themes   *theme.Resolver
	renderer *render.Renderer
	logger   *zap.Logger
}

// NewSiteService 创建 SiteService 实例
func NewSiteService(configs repository.ConfigurationsRepository, routes RouteTable, themes *theme.Resolver, renderer *render.Renderer, logger *zap.Logger) SiteService {
	if themes == nil {
		themes = theme.NewResolver(nil)
	}
	if renderer == nil {
		renderer = render.NewRenderer(0)
	}
	return &siteService{configs: configs, routes: routes, themes: themes, renderer: renderer, logger: logger}
}

// RenderPageResponse 渲染结果
type RenderPageResponse struct {
	Styles  theme.StyleSet     `json:"styles"`
	Content render.PageContent `json:"content"`
}

// CreateDraftRequest 创建草稿请求
type CreateDraftRequest struct {
	OwnerID       string
	Configuration domain.Configuration
}

// UpdateDraftRequest 更新草稿请求（整体替换草稿字段，发布字段保持不变）
type UpdateDraftRequest struct {
	ID            string
	OwnerID       string
	Configuration domain.Configuration
}

func (s *siteService) TenantBySlug(ctx context.Context, slug string) (*domain.Configuration, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, repository.ErrNotFound
	}
	return s.resolve(ctx, store.RouteKindSlug, slug, func(cfg *domain.Configuration) bool {
		return cfg.PublishedAddress == slug
	}, s.configs.GetConfigurationBySlug)
}

func (s *siteService) TenantByDomain(ctx context.Context, host string) (*domain.Configuration, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return nil, repository.ErrNotFound
	}
	return s.resolve(ctx, store.RouteKindDomain, host, func(cfg *domain.Configuration) bool {
		return strings.EqualFold(cfg.CustomDomain, host)
	}, s.configs.GetConfigurationByDomain)
}

// resolve serves only hosts the route table knows. When the route table
// itself is unavailable it falls back to the repository so a Redis outage
// does not take every tenant site down.
func (s *siteService) resolve(ctx context.Context, kind, host string, matches func(*domain.Configuration) bool,
	fallback func(context.Context, string) (*domain.Configuration, error)) (*domain.Configuration, error) {
	id, err := s.routes.Lookup(ctx, kind, host)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrMiss):
		return nil, repository.ErrNotFound
	default:
		s.logger.Warn("Route table unavailable, reading repository",
			zap.String("kind", kind), zap.String("host", host), zap.Error(err))
		return fallback(ctx, host)
	}

	cfg, err := s.configs.GetConfiguration(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Route points at a missing configuration",
				zap.String("host", host), zap.String("configuration_id", id))
		}
		return nil, err
	}
	if !cfg.IsPublished() || !matches(cfg) {
		s.logger.Debug("Stale route", zap.String("host", host), zap.String("configuration_id", id))
		return nil, repository.ErrNotFound
	}
	return cfg, nil
}

func (s *siteService) RenderPage(cfg *domain.Configuration, page string) *RenderPageResponse {
	styles := s.themes.Resolve(cfg.Template, theme.OverridesFromConfiguration(cfg))
	return &RenderPageResponse{
		Styles:  styles,
		Content: s.renderer.Render(cfg, styles, page),
	}
}

func (s *siteService) checkTemplate(id string) error {
	if id != "" && !s.themes.Catalog().Has(id) {
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return nil
}

func (s *siteService) CreateDraft(ctx context.Context, req CreateDraftRequest) (*domain.Configuration, error) {
	if req.OwnerID == "" {
		return nil, fmt.Errorf("owner_id is required")
	}
	if err := s.checkTemplate(req.Configuration.Template); err != nil {
		return nil, err
	}
	cfg := req.Configuration
	cfg.ID = ""
	cfg.OwnerID = req.OwnerID
	id, err := s.configs.CreateConfiguration(ctx, &cfg)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Draft created", zap.String("configuration_id", id), zap.String("owner_id", req.OwnerID))
	return s.configs.GetConfiguration(ctx, id)
}

func (s *siteService) GetDraft(ctx context.Context, id, ownerID string) (*domain.Configuration, error) {
	cfg, err := s.configs.GetConfiguration(ctx, id)
	if err != nil {
		return nil, err
	}
	if cfg.OwnerID != ownerID {
		return nil, repository.ErrOwnerMismatch
	}
	return cfg, nil
}

func (s *siteService) UpdateDraft(ctx context.Context, req UpdateDraftRequest) (*domain.Configuration, error) {
	if err := s.checkTemplate(req.Configuration.Template); err != nil {
		return nil, err
	}
	cfg := req.Configuration
	cfg.ID = req.ID
	cfg.OwnerID = req.OwnerID
	if err := s.configs.UpdateConfiguration(ctx, &cfg); err != nil {
		return nil, err
	}
	return s.configs.GetConfiguration(ctx, req.ID)
}

func (s *siteService) ListDrafts(ctx context.Context, ownerID string) ([]*domain.Configuration, error) {
	return s.configs.ListByOwner(ctx, ownerID)
}

func (s *siteService) ListTemplates() []theme.Template {
	return s.themes.Catalog().List()
}

func (s *siteService) WarmRoutes(ctx context.Context) (int, error) {
	published, err := s.configs.ListPublished(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list published configurations: %w", err)
	}
	n := 0
	for _, cfg := range published {
		if _, err := s.routes.Activate(ctx, store.RouteKindSlug, cfg.PublishedAddress, cfg.ID); err != nil {
			return n, fmt.Errorf("failed to activate %s: %w", cfg.PublishedAddress, err)
		}
		n++
		if cfg.CustomDomain != "" {
			if _, err := s.routes.Activate(ctx, store.RouteKindDomain, cfg.CustomDomain, cfg.ID); err != nil {
				return n, fmt.Errorf("failed to activate %s: %w", cfg.CustomDomain, err)
			}
			n++
		}
	}
	s.logger.Info("Routes warmed", zap.Int("hosts", n))
	return n, nil
}
