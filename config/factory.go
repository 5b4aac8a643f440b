package config

import (
	"time"

	"github.com/rushteam/recsys/candidate"
	"github.com/rushteam/recsys/core"
	"github.com/rushteam/recsys/filter"
	"github.com/rushteam/recsys/pipeline"
	"github.com/rushteam/recsys/pkg/conv"
	"github.com/rushteam/recsys/rank"
	"github.com/rushteam/recsys/score"
)

// Deps 是 Node 构建器需要的外部依赖。
// Node 参数走配置，仓储/特征源这类有状态依赖走注入，
// 二者分离后同一份链路配置可以在不同后端上复用。
type Deps struct {
	Catalog      core.CatalogStore
	Interactions core.InteractionStore
	Features     core.FeatureSource // 可为 nil
}

// NewFactory 创建 NodeFactory 并注册全部内置 Node 构建器。
//
// 支持的 Node 类型：
//   - candidate.generator
//   - filter.node
//   - score.content
//   - score.collaborative
//   - score.hybrid
//   - rank.topn
func NewFactory(deps Deps) *pipeline.NodeFactory {
	f := pipeline.NewNodeFactory()

	f.Register("candidate.generator", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &candidate.Generator{
			Catalog:    deps.Catalog,
			MinSize:    conv.ConfigGetInt(cfg, "min_size", 0),
			PriceEdges: priceEdges(cfg),
		}, nil
	})

	f.Register("filter.node", func(cfg map[string]interface{}) (pipeline.Node, error) {
		filters := []filter.Filter{&filter.AvailabilityFilter{}}
		if exprs := conv.SliceAnyToString(cfg["rules"]); len(exprs) > 0 {
			filters = append(filters, &filter.RuleFilter{Exprs: exprs})
		}
		return &filter.FilterNode{Filters: filters}, nil
	})

	f.Register("score.content", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &score.ContentNode{
			PriceEdges:    priceEdges(cfg),
			Features:      deps.Features,
			MaxConcurrent: conv.ConfigGetInt(cfg, "max_concurrent", 0),
		}, nil
	})

	f.Register("score.collaborative", func(cfg map[string]interface{}) (pipeline.Node, error) {
		node := &score.CollabNode{
			Interactions: deps.Interactions,
			Metric:       conv.ConfigGet(cfg, "metric", ""),
			MaxNeighbors: conv.ConfigGetInt(cfg, "max_neighbors", 0),
			TypeWeights:  typeWeights(cfg),
		}
		if ms := conv.ConfigGetInt(cfg, "timeout_ms", 0); ms > 0 {
			node.Timeout = time.Duration(ms) * time.Millisecond
		}
		return node, nil
	})

	f.Register("score.hybrid", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &score.HybridNode{
			AlphaMin:   conv.ConfigGetFloat64(cfg, "alpha_min", 0),
			AlphaMax:   conv.ConfigGetFloat64(cfg, "alpha_max", 0),
			AlphaPivot: conv.ConfigGetInt(cfg, "alpha_pivot", 0),
		}, nil
	})

	f.Register("rank.topn", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &rank.TopNNode{
			N:                conv.ConfigGetInt(cfg, "n", 0),
			DiversityDivisor: conv.ConfigGetInt(cfg, "diversity_divisor", 0),
		}, nil
	})

	return f
}

func priceEdges(cfg map[string]interface{}) []float64 {
	raw, ok := cfg["price_edges"].([]any)
	if !ok {
		return nil
	}
	return conv.ConvertSlice(raw, func(v any) (float64, bool) { return conv.ToFloat64(v) })
}

func typeWeights(cfg map[string]interface{}) map[core.InteractionType]float64 {
	raw, ok := cfg["type_weights"].(map[string]any)
	if !ok {
		return nil
	}
	weights := make(map[core.InteractionType]float64, len(raw))
	for k, v := range raw {
		if f, ok := conv.ToFloat64(v); ok {
			weights[core.InteractionType(k)] = f
		}
	}
	if len(weights) == 0 {
		return nil
	}
	return weights
}
