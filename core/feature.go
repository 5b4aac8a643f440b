package core

import "context"

// FeatureSource 是外部特征源的领域接口（如 Feast 在线特征存储）。
// 内容打分可以把外部特征并入商品向量；特征源不可用只影响个性化程度，
// 不影响链路可用性。
type FeatureSource interface {
	// Name 返回特征源名称（用于日志/观测）
	Name() string

	// GetProductFeatures 获取商品的外部特征，key 为特征维度名。
	GetProductFeatures(ctx context.Context, productID string) (map[string]float64, error)
}
