package core

// Preferences 是用户的显式偏好集合。
// 只能通过显式的偏好更新接口修改，不随交互行为隐式变化。
type Preferences struct {
	Categories []string
	Brands     []string
	StyleTags  []string

	// 价格区间（PriceMin <= PriceMax）。两者都为 0 表示未设置。
	PriceMin float64
	PriceMax float64
}

// Validate 校验偏好的结构合法性。
// 非法偏好在入口处拒绝，不会进入引擎内部。
func (p *Preferences) Validate() error {
	if p == nil {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidInput, "preferences: nil")
	}
	if p.PriceMin < 0 || p.PriceMax < 0 {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidInput, "preferences: negative price bound")
	}
	if p.PriceMax > 0 && p.PriceMin > p.PriceMax {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidInput, "preferences: price min > max")
	}
	return nil
}

// HasPriceRange 判断是否设置了价格区间。
func (p *Preferences) HasPriceRange() bool {
	return p != nil && (p.PriceMin > 0 || p.PriceMax > 0)
}

// User 是推荐目标用户：ID + 显式偏好。
// 交互历史单独存放在 InteractionStore（追加型日志），不挂在 User 上。
type User struct {
	ID          string
	Preferences Preferences
}
