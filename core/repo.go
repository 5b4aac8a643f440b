package core

import (
	"context"
	"time"
)

// 仓储接口：引擎通过这些接口消费已鉴权的用户/商品/交互记录，
// 从不直接触碰全局可变状态。实现方（内存/Redis/...）注入到引擎。

// UserStore 是用户记录仓储。
type UserStore interface {
	// GetUser 获取用户；不存在时返回 NOT_FOUND 的 DomainError。
	GetUser(ctx context.Context, id string) (*User, error)

	// PutUser 写入/覆盖用户（显式偏好更新走这里）。
	PutUser(ctx context.Context, u *User) error
}

// CatalogStore 是商品目录仓储，对引擎只读。
type CatalogStore interface {
	// GetProduct 获取单个商品。
	GetProduct(ctx context.Context, id string) (*Product, error)

	// ListProducts 列出商品；availableOnly=true 时只返回可售商品。
	// 返回顺序按商品 ID 升序，保证链路确定性。
	ListProducts(ctx context.Context, availableOnly bool) ([]*Product, error)
}

// InteractionStore 是交互日志仓储：只追加，不修改。
type InteractionStore interface {
	// Append 追加一条交互。幂等键已存在时返回 (false, nil)：
	// 重复是上报信息，不是错误。
	Append(ctx context.Context, in *Interaction) (bool, error)

	// ListByUser 返回某用户的全部交互，按 (Timestamp, IdemKey) 升序。
	ListByUser(ctx context.Context, userID string) ([]*Interaction, error)

	// ListAll 返回 since 之后的全部交互（协同打分用），
	// 按 (Timestamp, IdemKey) 升序。
	ListAll(ctx context.Context, since time.Time) ([]*Interaction, error)

	// CountByUser 返回某用户的交互条数。
	CountByUser(ctx context.Context, userID string) (int, error)
}
