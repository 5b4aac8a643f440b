package core

import "time"

// InteractionType 是交互行为类型。
// 权重语义：purchase > like > view > dismiss（dismiss 为负向信号，主动压制相似物品）。
type InteractionType string

const (
	InteractionView     InteractionType = "view"
	InteractionLike     InteractionType = "like"
	InteractionPurchase InteractionType = "purchase"
	InteractionDismiss  InteractionType = "dismiss"
)

// Valid 判断交互类型是否合法。
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionLike, InteractionPurchase, InteractionDismiss:
		return true
	}
	return false
}

// Interaction 是一条用户-商品交互事件，追加型日志的最小单元。
// 日志只追加、不修改；时间衰减在读取侧（画像构建）完成。
//
// IdemKey 是幂等键：同一 (userID, productID, type, timestamp) 的重放
// 不允许被重复计权，靠 IdemKey 去重。
type Interaction struct {
	UserID    string
	ProductID string
	Type      InteractionType
	Timestamp time.Time
	IdemKey   string
}

// Validate 校验交互事件的结构合法性。
func (i *Interaction) Validate() error {
	if i == nil {
		return NewDomainError(ModuleIngest, ErrorCodeInvalidInput, "interaction: nil")
	}
	if i.UserID == "" || i.ProductID == "" {
		return NewDomainError(ModuleIngest, ErrorCodeInvalidInput, "interaction: missing user or product id")
	}
	if !i.Type.Valid() {
		return NewDomainError(ModuleIngest, ErrorCodeInvalidInput, "interaction: unknown type "+string(i.Type))
	}
	if i.Timestamp.IsZero() {
		return NewDomainError(ModuleIngest, ErrorCodeInvalidInput, "interaction: zero timestamp")
	}
	if i.IdemKey == "" {
		return NewDomainError(ModuleIngest, ErrorCodeInvalidInput, "interaction: missing idempotency key")
	}
	return nil
}
