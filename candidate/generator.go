package candidate

import (
	"context"

	"github.com/rushteam/recsys/core"
	"github.com/rushteam/recsys/pipeline"
	"github.com/rushteam/recsys/pkg/utils"
)

// Generator 是候选生成 Node：把商品目录筛成一个有界、可打分的候选集。
//
// 算法流程：
//  1. 首轮按画像的非零维度做重叠过滤：类别、品牌、价格分桶
//     三类约束同时生效（画像在某一类上没有正权重维度时该类不约束）
//  2. 候选数 < MinSize 时渐进放宽：先丢价格约束，再丢品牌，最后丢类别，
//     直到凑够 MinSize 或整个可售目录都已纳入
//
// 放宽意味着"个性化程度逐级下降而不是返回空结果"：
// 目录很薄时依然有推荐可出，只是会打上 widened 降级标记。
type Generator struct {
	Catalog core.CatalogStore

	// MinSize 候选集最小规模，默认 20；rctx.MinCandidates > 0 时以请求为准。
	MinSize int

	// PriceEdges 价格分桶边界，需与画像构建侧一致。
	PriceEdges []float64
}

func (g *Generator) Name() string        { return "candidate.generator" }
func (g *Generator) Kind() pipeline.Kind { return pipeline.KindCandidate }

// 约束放宽级别：级别越高约束越少。
const (
	levelFull     = iota // 类别 + 品牌 + 价格分桶
	levelNoPrice         // 类别 + 品牌
	levelNoBrand         // 仅类别
	levelUnbound         // 无约束（整个可售目录）
)

func (g *Generator) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Candidate,
) ([]*core.Candidate, error) {
	if g.Catalog == nil || rctx == nil {
		return nil, nil
	}

	products, err := g.Catalog.ListProducts(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}

	minSize := g.MinSize
	if rctx.MinCandidates > 0 {
		minSize = rctx.MinCandidates
	}
	if minSize <= 0 {
		minSize = 20
	}

	prof := rctx.Profile
	categories := toSet(prof.ActiveDims(core.DimPrefixCategory))
	brands := toSet(prof.ActiveDims(core.DimPrefixBrand))
	priceBuckets := toSet(prof.ActiveDims(core.DimPrefixPrice))

	// 逐级放宽，每一级把新命中的商品补进候选集（按目录的 ID 升序，保证确定性）
	out := make([]*core.Candidate, 0, minSize)
	seen := make(map[string]bool, minSize)
	usedLevel := levelFull

	for level := levelFull; level <= levelUnbound; level++ {
		for _, p := range products {
			if seen[p.ID] {
				continue
			}
			if !g.match(p, level, categories, brands, priceBuckets) {
				continue
			}
			seen[p.ID] = true
			c := core.NewCandidate(p)
			c.PutLabel("candidate_source", utils.Label{Value: levelName(level), Source: "candidate"})
			out = append(out, c)
		}
		usedLevel = level
		if len(out) >= minSize {
			break
		}
	}

	if usedLevel > levelFull {
		rctx.MarkDegraded("sparse_catalog")
		rctx.PutLabel("widened", utils.Label{Value: levelName(usedLevel), Source: "candidate"})
	}

	return out, nil
}

// match 判断商品在给定放宽级别下是否满足约束。
// 空约束集（画像在该类上无正权重）不参与判定。
func (g *Generator) match(
	p *core.Product,
	level int,
	categories, brands, priceBuckets map[string]bool,
) bool {
	if level < levelUnbound && len(categories) > 0 && !categories[p.Category] {
		return false
	}
	if level < levelNoBrand && len(brands) > 0 && !brands[p.Brand] {
		return false
	}
	if level < levelNoPrice && len(priceBuckets) > 0 {
		bucket := core.DimPriceBucket(core.PriceBucket(p.Price, g.PriceEdges))
		// ActiveDims 已去掉前缀，这里对齐
		if !priceBuckets[bucket[len(core.DimPrefixPrice):]] {
			return false
		}
	}
	return true
}

func levelName(level int) string {
	switch level {
	case levelFull:
		return "full_match"
	case levelNoPrice:
		return "no_price"
	case levelNoBrand:
		return "no_brand"
	default:
		return "unbound"
	}
}

func toSet(keys []string) map[string]bool {
	if len(keys) == 0 {
		return nil
	}
	s := make(map[string]bool, len(keys))
	for _, k := range keys {
		s[k] = true
	}
	return s
}
