package domain

import "time"

// Owner 站点所有者（发布请求通过 owner token 认证）
type Owner struct {
	OwnerID   string    `db:"owner_id" json:"ownerId"`
	Name      string    `db:"name" json:"name"`
	TokenHash string    `db:"token_hash" json:"-"` // bcrypt hash of the token secret
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
