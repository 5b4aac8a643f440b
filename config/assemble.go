package config

import (
	"fmt"

	"github.com/rushteam/recsys/candidate"
	"github.com/rushteam/recsys/core"
	"github.com/rushteam/recsys/engine"
	"github.com/rushteam/recsys/feature"
	"github.com/rushteam/recsys/filter"
	"github.com/rushteam/recsys/ingest"
	"github.com/rushteam/recsys/pipeline"
	"github.com/rushteam/recsys/profile"
	"github.com/rushteam/recsys/rank"
	"github.com/rushteam/recsys/score"
	"github.com/rushteam/recsys/store"
)

// Assemble 按配置装配一个完整可用的推荐引擎。
//
// 装配顺序：
//  1. 存储后端（memory / redis）→ 用户/目录/交互三个仓储
//  2. 可选的 Feast 在线特征源
//  3. 画像构建器
//  4. 默认链路：候选生成 → 过滤 → 内容打分 → 协同打分 → 融合 → 排序
//  5. 摄入器 + 引擎门面
//
// 需要自定义链路编排时，用 pipeline.LoadFromYAML + NewFactory 替换第 4 步。
func Assemble(cfg *EngineConfig) (*engine.Engine, error) {
	if cfg == nil {
		cfg = &EngineConfig{}
	}

	kv, err := buildKV(cfg.Store)
	if err != nil {
		return nil, err
	}

	users := store.NewUserKV(kv)
	catalog := store.NewCatalogKV(kv)
	interactions := store.NewInteractionKV(kv)

	var features core.FeatureSource
	if cfg.Feast.Host != "" {
		src, err := feature.NewFeastSource(cfg.Feast.Host, cfg.Feast.Port, cfg.Feast.Project, cfg.Feast.Features)
		if err != nil {
			return nil, fmt.Errorf("assemble feast: %w", err)
		}
		features = src
	}

	builder := &profile.Builder{
		Catalog:     catalog,
		BaseWeight:  cfg.Profile.BaseWeight,
		HalfLife:    cfg.Profile.HalfLife.Std(),
		TypeWeights: interactionWeights(cfg.Profile.TypeWeights),
		PriceEdges:  cfg.Profile.PriceEdges,
	}

	filters := []filter.Filter{&filter.AvailabilityFilter{}}
	if len(cfg.Rules) > 0 {
		filters = append(filters, &filter.RuleFilter{Exprs: cfg.Rules})
	}

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&candidate.Generator{
				Catalog:    catalog,
				MinSize:    cfg.Engine.MinCandidates,
				PriceEdges: cfg.Profile.PriceEdges,
			},
			&filter.FilterNode{Filters: filters},
			&score.ContentNode{
				PriceEdges: cfg.Profile.PriceEdges,
				Features:   features,
			},
			&score.CollabNode{
				Interactions: interactions,
				Metric:       cfg.Collab.Metric,
				MaxNeighbors: cfg.Collab.MaxNeighbors,
				Timeout:      cfg.Collab.Timeout.Std(),
				TypeWeights:  interactionWeights(cfg.Profile.TypeWeights),
			},
			&score.HybridNode{
				AlphaMin:   cfg.Blend.AlphaMin,
				AlphaMax:   cfg.Blend.AlphaMax,
				AlphaPivot: cfg.Blend.AlphaPivot,
			},
			&rank.TopNNode{
				DiversityDivisor: cfg.Rank.DiversityDivisor,
			},
		},
	}

	return &engine.Engine{
		Users:          users,
		Catalog:        catalog,
		Interactions:   interactions,
		Builder:        builder,
		Pipeline:       p,
		Ingestor:       ingest.NewIngestor(interactions),
		MinCandidates:  cfg.Engine.MinCandidates,
		RequestTimeout: cfg.Engine.RequestTimeout.Std(),
	}, nil
}

func buildKV(cfg StoreSection) (core.KeyValueStore, error) {
	switch cfg.Backend {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		kv, err := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("assemble redis: %w", err)
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}

func interactionWeights(raw map[string]float64) map[core.InteractionType]float64 {
	if len(raw) == 0 {
		return nil
	}
	weights := make(map[core.InteractionType]float64, len(raw))
	for k, v := range raw {
		weights[core.InteractionType(k)] = v
	}
	return weights
}
