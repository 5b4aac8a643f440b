package filter

import (
	"context"

	"github.com/rushteam/recsys/core"
	"github.com/rushteam/recsys/pkg/dsl"
)

// RuleFilter 是规则过滤器：用 CEL 表达式描述业务剔除规则。
// 任一表达式对候选求值为 true 即剔除。规则来自配置，可在线调整，
// 不需要改代码发版。
//
// 示例规则：
//   - `product.price > 10000.0`
//   - `product.category == "Adult"`
type RuleFilter struct {
	// Exprs CEL 布尔表达式列表。
	Exprs []string
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	cand *core.Candidate,
) (bool, error) {
	if len(f.Exprs) == 0 || cand == nil {
		return false, nil
	}

	ev := dsl.NewEval(cand, rctx)
	for _, expr := range f.Exprs {
		if expr == "" {
			continue
		}
		hit, err := ev.Evaluate(expr)
		if err != nil {
			// 规则写错不应拖垮链路：跳过该条规则
			continue
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}
