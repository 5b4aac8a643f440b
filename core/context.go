package core

import "github.com/rushteam/recsys/pkg/utils"

// RecommendContext 承载单次推荐请求的用户/画像/参数信息，贯穿整个 Pipeline 透传。
// 请求之间相互独立：Pipeline 只读共享存储 + 纯计算，不同用户的请求无需加锁并行。
type RecommendContext struct {
	UserID string

	// User 是已鉴权的目标用户（含显式偏好）。
	User *User

	// Profile 是本次请求开始时惰性重建的偏好画像。
	Profile *PreferenceProfile

	// Count 期望返回的推荐条数。
	Count int

	// MinCandidates 候选集的最小规模，候选生成不足时触发渐进放宽。
	MinCandidates int

	// Labels 是请求级标签：各阶段把降级原因（cold_start / widened /
	// collab_timeout 等）写在这里，最终折算成结果上的 Degraded 标记。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（场景、实验桶等），引擎不解释其语义。
	Params map[string]any

	degraded bool
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// MarkDegraded 标记本次请求走了回退路径，并记录原因。
// 数据稀疏类情况在链路内部就地消化，只通过该标记向调用方上报。
func (rctx *RecommendContext) MarkDegraded(reason string) {
	rctx.degraded = true
	rctx.PutLabel("degraded", utils.Label{Value: reason, Source: "engine"})
}

// Degraded 返回本次请求是否发生过降级。
func (rctx *RecommendContext) Degraded() bool {
	return rctx.degraded
}
