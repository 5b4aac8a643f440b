package pipeline

import (
	"context"

	"github.com/rushteam/recsys/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindCandidate Kind = "candidate" // 候选生成阶段：从目录筛出可打分的候选集
	KindFilter    Kind = "filter"    // 过滤阶段：剔除不符合业务规则的候选
	KindScore     Kind = "score"     // 打分阶段：内容分 / 协同分
	KindCombine   Kind = "combine"   // 融合阶段：置信度加权合并各路分数
	KindRank      Kind = "rank"      // 排序阶段：最终排序、多样性约束、截断
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入 candidates -> 输出 candidates"的形态，
// 方便候选生成、打分标注、重排截断等操作串联。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		cands []*core.Candidate,
	) ([]*core.Candidate, error)
}

// NodeBuilder 根据配置构建 Node，供配置驱动的装配使用。
type NodeBuilder func(config map[string]interface{}) (Node, error)
