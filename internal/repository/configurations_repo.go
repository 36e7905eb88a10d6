package repository

import (
	"context"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
)

// ConfigurationsRepository 站点配置Repository接口
// 草稿字段由向导写入；发布字段（status/publishedAddress/publishedAt）只能通过 AddressRepository.Publish 修改
type ConfigurationsRepository interface {
	// GetConfiguration 根据 id 获取配置
	GetConfiguration(ctx context.Context, id string) (*domain.Configuration, error)

	// GetConfigurationBySlug 根据已发布地址获取配置
	GetConfigurationBySlug(ctx context.Context, slug string) (*domain.Configuration, error)

	// GetConfigurationByDomain 根据自定义域名获取已发布配置
	GetConfigurationByDomain(ctx context.Context, host string) (*domain.Configuration, error)

	// ListPublished 列出所有已发布配置（启动时重建路由表）
	ListPublished(ctx context.Context) ([]*domain.Configuration, error)

	// ListByOwner 列出某个 owner 的配置
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Configuration, error)

	// CreateConfiguration 创建草稿，返回 id
	CreateConfiguration(ctx context.Context, cfg *domain.Configuration) (string, error)

	// UpdateConfiguration 更新草稿内容，不修改发布字段
	UpdateConfiguration(ctx context.Context, cfg *domain.Configuration) error
}

// AddressRepository 地址命名空间Repository接口
type AddressRepository interface {
	// LookupAddress 查询地址记录；不存在时 found=false
	LookupAddress(ctx context.Context, name string) (*domain.AddressRecord, bool, error)

	// ReserveAddress 将名称标记为系统保留（已被认领的名称不会被覆盖）
	ReserveAddress(ctx context.Context, name string) error

	// Publish 一次原子提交：认领地址（compare-and-set）、释放该配置之前的地址、
	// 设置配置为 published。冲突返回 ErrAddressTaken。
	Publish(ctx context.Context, cmd domain.PublishCommand) error
}

// OwnersRepository 所有者Repository接口
type OwnersRepository interface {
	GetOwner(ctx context.Context, ownerID string) (*domain.Owner, error)
	SaveOwner(ctx context.Context, owner *domain.Owner) error
}
