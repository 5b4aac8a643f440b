package score

import (
	"context"
	"sort"
	"time"

	"github.com/rushteam/recsys/core"
	"github.com/rushteam/recsys/pipeline"
	"github.com/rushteam/recsys/pkg/utils"
)

// CollabNode 是协同打分 Node（User-based Collaborative Scoring）。
//
// 核心思想："兴趣相似的用户，喜欢相似的商品"
//
// 算法流程：
//  1. 全量交互日志 → 每个用户的商品亲和度向量（类型权重累加，截断到 [0,1]）
//  2. 计算目标用户与其他用户的相似度（Jaccard / Cosine）
//  3. 取 TopK 相似邻居，候选得分 = 邻居对候选的亲和度按相似度加权平均
//
// 无置信度语义：目标用户零历史时算不出邻居，所有候选标记
// HasCollab=false——绝不能用 0 顶替，0 意味着"相似用户不喜欢"，
// 会污染后面的融合。单个候选没有任何邻居交互过时同样无置信度。
//
// 超时降级：邻居计算在大日志上可能超过请求截止时间。节点在循环内
// 检查 ctx，超时后把剩余候选标成无置信度并打 collab_timeout 降级标记，
// 链路退化为纯内容打分继续走，不阻塞、不报错。
type CollabNode struct {
	Interactions core.InteractionStore

	// Metric 相似度度量方式：jaccard / cosine，默认 jaccard。
	Metric string

	// MaxNeighbors 参与加权的 TopK 相似邻居数，默认 50。
	MaxNeighbors int

	// Timeout 本节点的独立超时（0 表示完全跟随请求 ctx）。
	Timeout time.Duration

	// TypeWeights 交互类型权重，需与画像构建侧一致。
	TypeWeights map[core.InteractionType]float64
}

func (n *CollabNode) Name() string        { return "score.collaborative" }
func (n *CollabNode) Kind() pipeline.Kind { return pipeline.KindScore }

func (n *CollabNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	cands []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(cands) == 0 || rctx == nil {
		return cands, nil
	}

	// 零历史：没有邻居可算，全部无置信度
	if rctx.Profile == nil || rctx.Profile.InteractionCount == 0 {
		n.markNoConfidence(cands, "no_history")
		return cands, nil
	}

	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	all, err := n.Interactions.ListAll(ctx, time.Time{})
	if err != nil {
		// 日志读取超时/失败：降级为纯内容打分，不中断链路
		n.markNoConfidence(cands, "unavailable")
		rctx.MarkDegraded("collab_timeout")
		return cands, nil
	}

	affinity := n.buildAffinity(all)
	target := affinity[rctx.UserID]
	if len(target) == 0 {
		n.markNoConfidence(cands, "no_history")
		return cands, nil
	}

	neighbors, timedOut := n.findNeighbors(ctx, rctx.UserID, target, affinity)
	if timedOut {
		n.markNoConfidence(cands, "timeout")
		rctx.MarkDegraded("collab_timeout")
		return cands, nil
	}
	if len(neighbors) == 0 {
		n.markNoConfidence(cands, "no_neighbors")
		return cands, nil
	}

	for i, cand := range cands {
		if cand == nil || cand.Product == nil {
			continue
		}
		if ctx.Err() != nil {
			// 截止时间已到：剩余候选全部无置信度，链路继续
			n.markNoConfidence(cands[i:], "timeout")
			rctx.MarkDegraded("collab_timeout")
			break
		}

		var num, den float64
		for _, nb := range neighbors {
			aff, ok := affinity[nb.userID][cand.Product.ID]
			if !ok {
				continue
			}
			num += nb.similarity * aff
			den += nb.similarity
		}

		if den == 0 {
			cand.HasCollab = false
			cand.PutLabel("collab", utils.Label{Value: "no_confidence", Source: "score"})
			continue
		}

		s := num / den
		if s < 0 {
			s = 0
		}
		if s > 1 {
			s = 1
		}
		cand.CollabScore = s
		cand.HasCollab = true
	}

	return cands, nil
}

// markNoConfidence 把候选批量标成"协同信号无置信度"。
func (n *CollabNode) markNoConfidence(cands []*core.Candidate, reason string) {
	for _, c := range cands {
		if c == nil {
			continue
		}
		c.HasCollab = false
		c.PutLabel("collab", utils.Label{Value: "no_confidence:" + reason, Source: "score"})
	}
}

// buildAffinity 把交互日志折成 用户 → 商品 → 亲和度 的两级 map。
// 亲和度 = 类型权重累加，截断到 [0,1]；dismiss 的负权重会压低甚至清零亲和度。
func (n *CollabNode) buildAffinity(all []*core.Interaction) map[string]map[string]float64 {
	typeWeights := n.TypeWeights
	if typeWeights == nil {
		typeWeights = map[core.InteractionType]float64{
			core.InteractionPurchase: 1.0,
			core.InteractionLike:     0.6,
			core.InteractionView:     0.2,
			core.InteractionDismiss:  -0.5,
		}
	}

	raw := make(map[string]map[string]float64, 64)
	for _, in := range all {
		if in == nil {
			continue
		}
		tw, ok := typeWeights[in.Type]
		if !ok {
			continue
		}
		if raw[in.UserID] == nil {
			raw[in.UserID] = make(map[string]float64, 8)
		}
		raw[in.UserID][in.ProductID] += tw
	}

	// 截断到 [0,1]；清零的条目删除，避免把"被 dismiss 压没"的商品算进相似度集合
	for _, items := range raw {
		for pid, w := range items {
			if w <= 0 {
				delete(items, pid)
				continue
			}
			if w > 1 {
				items[pid] = 1
			}
		}
	}
	return raw
}

type neighbor struct {
	userID     string
	similarity float64
}

// findNeighbors 计算目标用户的 TopK 相似邻居。
// 排序带 userID 升序 tie-break，保证结果确定性。
func (n *CollabNode) findNeighbors(
	ctx context.Context,
	targetID string,
	target map[string]float64,
	affinity map[string]map[string]float64,
) ([]neighbor, bool) {
	metric := n.Metric
	if metric == "" {
		metric = "jaccard"
	}

	// map 遍历顺序不确定，先收集再排序
	userIDs := make([]string, 0, len(affinity))
	for uid := range affinity {
		if uid != targetID {
			userIDs = append(userIDs, uid)
		}
	}
	sort.Strings(userIDs)

	neighbors := make([]neighbor, 0, len(userIDs))
	for i, uid := range userIDs {
		// 相似度计算是 O(用户数 × 商品数)，每批检查一次截止时间
		if i%64 == 0 && ctx.Err() != nil {
			return nil, true
		}

		items := affinity[uid]
		if len(items) == 0 {
			continue
		}

		var sim float64
		switch metric {
		case "cosine":
			sim = cosineSimilarity(target, items)
		case "jaccard":
			fallthrough
		default:
			sim = jaccardSimilarity(target, items)
		}

		if sim > 0 {
			neighbors = append(neighbors, neighbor{userID: uid, similarity: sim})
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}
		return neighbors[i].userID < neighbors[j].userID
	})

	topK := n.MaxNeighbors
	if topK <= 0 {
		topK = 50
	}
	if len(neighbors) > topK {
		neighbors = neighbors[:topK]
	}
	return neighbors, false
}

// jaccardSimilarity 计算两个商品集合的 Jaccard 相似度（按 key 集合）。
func jaccardSimilarity(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
