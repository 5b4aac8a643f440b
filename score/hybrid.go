package score

import (
	"context"

	"github.com/rushteam/recsys/core"
	"github.com/rushteam/recsys/pipeline"
	"github.com/rushteam/recsys/pkg/utils"
)

// HybridNode 是融合 Node：置信度加权合并内容分与协同分。
//
// 融合规则：
//   - 协同分无置信度（HasCollab=false）时完全回退：combined = content，
//     不和一个未定义的信号做混合
//   - 否则 combined = α × collab + (1-α) × content，
//     α 随交互条数单调上升（历史越多越信协同信号），
//     并被夹在 [AlphaMin, AlphaMax]：两路信号都可用时谁都不会被完全压制
//
// α 曲线：α = n / (n + AlphaPivot)，n 为画像的交互条数。
type HybridNode struct {
	// AlphaMin / AlphaMax α 的上下界，默认 0.1 / 0.9。
	AlphaMin float64
	AlphaMax float64

	// AlphaPivot α 曲线的半饱和点：n = pivot 时 α = 0.5（夹取前），默认 10。
	AlphaPivot int
}

func (n *HybridNode) Name() string        { return "score.hybrid" }
func (n *HybridNode) Kind() pipeline.Kind { return pipeline.KindCombine }

func (n *HybridNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	cands []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(cands) == 0 {
		return cands, nil
	}

	alphaMin := n.AlphaMin
	if alphaMin <= 0 {
		alphaMin = 0.1
	}
	alphaMax := n.AlphaMax
	if alphaMax <= 0 || alphaMax > 1 {
		alphaMax = 0.9
	}
	pivot := n.AlphaPivot
	if pivot <= 0 {
		pivot = 10
	}

	interactionCount := 0
	if rctx != nil && rctx.Profile != nil {
		interactionCount = rctx.Profile.InteractionCount
	}

	alpha := float64(interactionCount) / float64(interactionCount+pivot)
	if alpha < alphaMin {
		alpha = alphaMin
	}
	if alpha > alphaMax {
		alpha = alphaMax
	}

	for _, c := range cands {
		if c == nil {
			continue
		}
		if !c.HasCollab {
			c.CombinedScore = c.ContentScore
			c.PutLabel("blend", utils.Label{Value: "content_only", Source: "combine"})
			continue
		}
		c.CombinedScore = alpha*c.CollabScore + (1-alpha)*c.ContentScore
		c.PutLabel("blend", utils.Label{Value: "hybrid", Source: "combine"})
	}

	return cands, nil
}
