package domain

import "time"

// 地址记录存储状态
const (
	AddressOwned    = "owned"
	AddressReserved = "reserved"
)

// AddressRecord 地址命名空间记录（对应 address_records 表）
// 名称唯一；只能由同一 owner 重新认领
type AddressRecord struct {
	Name            string    `db:"name"`             // VARCHAR(63), PRIMARY KEY, normalized
	OwnerID         string    `db:"owner_id"`         // nullable for system reserved names
	ConfigurationID string    `db:"configuration_id"` // UUID, nullable
	Status          string    `db:"status"`           // owned | reserved
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// PublishCommand 发布写入命令（persisting 阶段的一次原子提交）
type PublishCommand struct {
	ConfigurationID string
	OwnerID         string
	Address         string
	PublishedAt     time.Time
}
