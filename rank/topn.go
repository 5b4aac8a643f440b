package rank

import (
	"context"
	"sort"

	"github.com/rushteam/recsys/core"
	"github.com/rushteam/recsys/pipeline"
	"github.com/rushteam/recsys/pkg/utils"
)

// TopNNode 是最终排序 Node：排序、tie-break、多样性约束、去重、截断。
//
// 算法流程：
//  1. 按商品 ID 去重（防御性的；候选生成本应已保证唯一）
//  2. 按 CombinedScore 降序排序，同分按商品 ID 升序（确定性 tie-break）
//  3. 多样性贪心：同一类别/品牌在最终 Top-N 里最多占 ceil(N / DiversityDivisor) 个，
//     超限的候选先跳过，结果凑不够 N 时再从被跳过者里按序回填
//  4. 截断到 N
type TopNNode struct {
	// N 要保留的条数；rctx.Count > 0 时以请求为准，都没有则默认 10。
	N int

	// DiversityDivisor 多样性分母：同类上限 = ceil(N / divisor)，默认 3。
	DiversityDivisor int
}

func (n *TopNNode) Name() string        { return "rank.topn" }
func (n *TopNNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	cands []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(cands) == 0 {
		return cands, nil
	}

	count := n.N
	if rctx != nil && rctx.Count > 0 {
		count = rctx.Count
	}
	if count <= 0 {
		count = 10
	}

	// 1. 去重：同一商品保留 CombinedScore 更高的那份
	byID := make(map[string]*core.Candidate, len(cands))
	order := make([]string, 0, len(cands))
	for _, c := range cands {
		if c == nil || c.Product == nil {
			continue
		}
		old, ok := byID[c.Product.ID]
		if !ok {
			byID[c.Product.ID] = c
			order = append(order, c.Product.ID)
			continue
		}
		if c.CombinedScore > old.CombinedScore {
			byID[c.Product.ID] = c
		}
	}

	deduped := make([]*core.Candidate, 0, len(order))
	for _, id := range order {
		deduped = append(deduped, byID[id])
	}

	// 2. 排序：分数降序，同分按商品 ID 升序
	sort.Slice(deduped, func(i, j int) bool {
		if deduped[i].CombinedScore != deduped[j].CombinedScore {
			return deduped[i].CombinedScore > deduped[j].CombinedScore
		}
		return deduped[i].Product.ID < deduped[j].Product.ID
	})

	// 3. 多样性贪心
	divisor := n.DiversityDivisor
	if divisor <= 0 {
		divisor = 3
	}
	limit := (count + divisor - 1) / divisor // ceil(count / divisor)

	catCount := make(map[string]int, 8)
	brandCount := make(map[string]int, 8)
	out := make([]*core.Candidate, 0, count)
	skipped := make([]*core.Candidate, 0, len(deduped))

	for _, c := range deduped {
		if len(out) >= count {
			break
		}
		cat := c.Product.Category
		brand := c.Product.Brand
		if (cat != "" && catCount[cat] >= limit) || (brand != "" && brandCount[brand] >= limit) {
			skipped = append(skipped, c)
			continue
		}
		catCount[cat]++
		brandCount[brand]++
		out = append(out, c)
	}

	// 4. 回填：多样性约束导致凑不够 N 时，从被跳过者里按原序补齐
	for _, c := range skipped {
		if len(out) >= count {
			break
		}
		c.PutLabel("diversity", utils.Label{Value: "backfill", Source: "rank"})
		out = append(out, c)
	}

	return out, nil
}
