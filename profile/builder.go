package profile

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rushteam/recsys/core"
)

// Builder 把显式偏好 + 交互历史折算成偏好画像（加权特征向量）。
//
// 核心思想："显式偏好给底，历史行为加权"
//
// 折算规则：
//  1. 显式偏好的每个维度贡献固定底权重 BaseWeight；
//     价格区间摊成覆盖分桶上的均匀分布（多峰保留，不折算成均值）
//  2. 每条交互按 typeWeight(type) × exp(-ln2 × age / HalfLife)
//     贡献到对应商品的类别/品牌/风格/价格分桶维度
//  3. typeWeight 排序：purchase > like > view > dismiss，
//     dismiss 为负权重（主动压制），不是 0
//
// 确定性：相同 (user, interactions, asOf) 两次构建输出逐位一致——
// 交互先按 (Timestamp, IdemKey) 排序再折算，浮点累加顺序固定，
// 全程不依赖 map 遍历顺序。
//
// 冷启动：零交互时画像退化为纯显式偏好向量，这是正常状态，从不报错。
type Builder struct {
	// Catalog 用于查商品属性（交互只带 productID）。
	// 目录里已不存在的商品跳过贡献，不中断构建。
	Catalog core.CatalogStore

	// BaseWeight 显式偏好维度的底权重，默认 1.0。
	BaseWeight float64

	// HalfLife 交互权重的半衰期，默认 30 天。
	HalfLife time.Duration

	// TypeWeights 各交互类型的权重，默认 purchase=1.0 like=0.6 view=0.2 dismiss=-0.5。
	TypeWeights map[core.InteractionType]float64

	// PriceEdges 价格分桶边界，默认 core.DefaultPriceEdges。
	PriceEdges []float64
}

// DefaultTypeWeights 返回默认的交互类型权重。
func DefaultTypeWeights() map[core.InteractionType]float64 {
	return map[core.InteractionType]float64{
		core.InteractionPurchase: 1.0,
		core.InteractionLike:     0.6,
		core.InteractionView:     0.2,
		core.InteractionDismiss:  -0.5,
	}
}

// Build 构建 asOf 时刻的偏好画像。
// interactions 只取 asOf 之前（含）的部分；时间衰减以 asOf 为基准。
func (b *Builder) Build(
	ctx context.Context,
	user *core.User,
	interactions []*core.Interaction,
	asOf time.Time,
) (*core.PreferenceProfile, error) {
	if user == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "profile: nil user")
	}

	baseWeight := b.BaseWeight
	if baseWeight <= 0 {
		baseWeight = 1.0
	}
	halfLife := b.HalfLife
	if halfLife <= 0 {
		halfLife = 30 * 24 * time.Hour
	}
	typeWeights := b.TypeWeights
	if typeWeights == nil {
		typeWeights = DefaultTypeWeights()
	}

	dims := make(map[string]float64, 16)

	// 1. 显式偏好：固定底权重
	for _, c := range user.Preferences.Categories {
		if c != "" {
			dims[core.DimCategory(c)] += baseWeight
		}
	}
	for _, br := range user.Preferences.Brands {
		if br != "" {
			dims[core.DimBrand(br)] += baseWeight
		}
	}
	for _, tag := range user.Preferences.StyleTags {
		if tag != "" {
			dims[core.DimStyle(tag)] += baseWeight
		}
	}
	if user.Preferences.HasPriceRange() {
		buckets := core.PriceBucketsInRange(user.Preferences.PriceMin, user.Preferences.PriceMax, b.PriceEdges)
		if len(buckets) > 0 {
			// 摊成均匀分布：区间覆盖的每个分桶分到等份底权重
			share := baseWeight / float64(len(buckets))
			for _, bucket := range buckets {
				dims[core.DimPriceBucket(bucket)] += share
			}
		}
	}

	// 2. 交互折算：排序后按固定顺序累加，保证逐位确定性
	sorted := make([]*core.Interaction, 0, len(interactions))
	for _, in := range interactions {
		if in == nil || in.Timestamp.After(asOf) {
			continue
		}
		sorted = append(sorted, in)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].IdemKey < sorted[j].IdemKey
	})

	counted := 0
	for _, in := range sorted {
		tw, ok := typeWeights[in.Type]
		if !ok {
			continue
		}

		p, err := b.Catalog.GetProduct(ctx, in.ProductID)
		if err != nil || p == nil {
			// 商品已下架/删除：跳过贡献，画像仍然可建
			continue
		}

		age := asOf.Sub(in.Timestamp)
		if age < 0 {
			age = 0
		}
		w := tw * math.Exp(-math.Ln2*age.Seconds()/halfLife.Seconds())

		if p.Category != "" {
			dims[core.DimCategory(p.Category)] += w
		}
		if p.Brand != "" {
			dims[core.DimBrand(p.Brand)] += w
		}
		for _, tag := range p.StyleTags {
			if tag != "" {
				dims[core.DimStyle(tag)] += w
			}
		}
		dims[core.DimPriceBucket(core.PriceBucket(p.Price, b.PriceEdges))] += w
		counted++
	}

	return &core.PreferenceProfile{
		UserID:           user.ID,
		AsOf:             asOf,
		Dims:             dims,
		InteractionCount: counted,
		ExplicitOnly:     counted == 0,
	}, nil
}
