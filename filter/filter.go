package filter

import (
	"context"

	"github.com/rushteam/recsys/core"
)

// Filter 表示一个候选过滤器：返回 true 表示该候选应被剔除。
type Filter interface {
	Name() string
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, cand *core.Candidate) (bool, error)
}
