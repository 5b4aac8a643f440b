package core

import (
	"sort"
	"strconv"
	"time"
)

// 特征维度命名空间。画像向量与商品向量使用同一套维度命名，
// 保证内容打分时两侧向量在固定的维度序上对齐。
const (
	DimPrefixCategory = "category:"
	DimPrefixBrand    = "brand:"
	DimPrefixStyle    = "style:"
	DimPrefixPrice    = "price:"
)

// DimCategory 构造类别维度 key。
func DimCategory(category string) string { return DimPrefixCategory + category }

// DimBrand 构造品牌维度 key。
func DimBrand(brand string) string { return DimPrefixBrand + brand }

// DimStyle 构造风格标签维度 key。
func DimStyle(tag string) string { return DimPrefixStyle + tag }

// DimPriceBucket 构造价格分桶维度 key（b0、b1、...）。
func DimPriceBucket(bucket int) string { return DimPrefixPrice + "b" + strconv.Itoa(bucket) }

// DefaultPriceEdges 是默认的价格分桶边界（左闭右开）。
// 价格偏好以"分桶分布"表达而非单一均值：同时喜欢高价和低价的用户
// 会在两端各保留一个峰，折算成中间价只会推荐两头都不想要的东西。
var DefaultPriceEdges = []float64{10, 50, 100, 500, 1000, 5000}

// PriceBucket 返回 price 落入的分桶下标。
// edges 为空时使用 DefaultPriceEdges；分桶数 = len(edges)+1。
func PriceBucket(price float64, edges []float64) int {
	if len(edges) == 0 {
		edges = DefaultPriceEdges
	}
	for i, e := range edges {
		if price < e {
			return i
		}
	}
	return len(edges)
}

// PriceBucketsInRange 返回与 [min, max] 有交集的所有分桶下标（升序）。
// 用于把显式价格区间摊到覆盖的各分桶上。
func PriceBucketsInRange(min, max float64, edges []float64) []int {
	if len(edges) == 0 {
		edges = DefaultPriceEdges
	}
	lo := PriceBucket(min, edges)
	hi := PriceBucket(max, edges)
	if hi < lo {
		lo, hi = hi, lo
	}
	out := make([]int, 0, hi-lo+1)
	for b := lo; b <= hi; b++ {
		out = append(out, b)
	}
	return out
}

// ProductDims 把商品属性展开成特征向量（各维度权重 1.0）。
// 画像与候选打分共用此展开，维度命名保持一致。
func ProductDims(p *Product, priceEdges []float64) map[string]float64 {
	if p == nil {
		return nil
	}
	dims := make(map[string]float64, 3+len(p.StyleTags))
	if p.Category != "" {
		dims[DimCategory(p.Category)] = 1.0
	}
	if p.Brand != "" {
		dims[DimBrand(p.Brand)] = 1.0
	}
	for _, tag := range p.StyleTags {
		if tag != "" {
			dims[DimStyle(tag)] = 1.0
		}
	}
	dims[DimPriceBucket(PriceBucket(p.Price, priceEdges))] = 1.0
	return dims
}

// PreferenceProfile 是用户偏好画像：显式偏好 + 交互历史折算出的加权特征向量。
//
// 画像是派生物，不做权威持久化——任何时刻都可以由
// (User, Interaction 日志, asOf) 确定性重建。相同输入重建两次，
// 输出逐位一致（构建侧保证折算顺序固定，不依赖无序集合的遍历顺序）。
type PreferenceProfile struct {
	UserID string
	AsOf   time.Time

	// Dims 是加权特征向量。dismiss 贡献负权重，表示主动压制。
	Dims map[string]float64

	// InteractionCount 参与折算的交互条数，供融合侧估计协同信号置信度。
	InteractionCount int

	// ExplicitOnly 表示画像只来自显式偏好（零交互冷启动）。
	// 冷启动是正常状态，不是错误。
	ExplicitOnly bool
}

// Dim 读取单个维度权重，不存在返回 0。
func (p *PreferenceProfile) Dim(key string) float64 {
	if p == nil || p.Dims == nil {
		return 0
	}
	return p.Dims[key]
}

// SortedDims 返回按 key 排序的维度列表，用于序列化与确定性遍历。
func (p *PreferenceProfile) SortedDims() []string {
	if p == nil || len(p.Dims) == 0 {
		return nil
	}
	keys := make([]string, 0, len(p.Dims))
	for k := range p.Dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ActiveDims 返回指定前缀下权重 > 0 的维度名（去掉前缀，升序）。
// 候选生成用它做类别/品牌/价格分桶的重叠过滤；负权重（dismiss 压制）
// 不算作"感兴趣"，不参与召回过滤。
func (p *PreferenceProfile) ActiveDims(prefix string) []string {
	if p == nil || len(p.Dims) == 0 {
		return nil
	}
	out := make([]string, 0, 8)
	for k, w := range p.Dims {
		if w > 0 && len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, k[len(prefix):])
		}
	}
	sort.Strings(out)
	return out
}
