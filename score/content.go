package score

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/recsys/core"
	"github.com/rushteam/recsys/pipeline"
	"github.com/rushteam/recsys/pkg/utils"
)

// ContentNode 是内容打分 Node（Content-Based Scoring）。
//
// 核心思想："用户喜欢具有某些特征的商品，相似特征的商品得分更高"
//
// 算法：画像向量与候选商品特征向量的余弦相似度。
// 两侧向量使用同一套维度命名（类别/品牌/风格/价格分桶），
// 在维度 key 的并集上对齐计算。
//
// 约定：
//   - 任一侧为零向量时得分为 0，不产生 NaN
//   - 画像里的负权重（dismiss 压制）可能导致负余弦，截断到 [0,1]
//
// 候选之间的打分互不依赖，用 errgroup 并发执行，信号量限流。
type ContentNode struct {
	// PriceEdges 价格分桶边界，需与画像构建侧一致。
	PriceEdges []float64

	// Features 可选的外部特征源（如 Feast 在线特征），
	// 拉到的特征并入商品向量；拉取失败不影响打分。
	Features core.FeatureSource

	// MaxConcurrent 最大并发打分数，默认 8。
	MaxConcurrent int
}

func (n *ContentNode) Name() string        { return "score.content" }
func (n *ContentNode) Kind() pipeline.Kind { return pipeline.KindScore }

func (n *ContentNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	cands []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(cands) == 0 || rctx == nil || rctx.Profile == nil {
		return cands, nil
	}

	maxConcurrent := n.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrent)

	for _, c := range cands {
		cand := c
		eg.Go(func() error {
			if cand == nil || cand.Product == nil {
				return nil
			}

			vec := core.ProductDims(cand.Product, n.PriceEdges)

			// 外部特征并入商品向量；特征源不可用时静默跳过
			if n.Features != nil {
				if extra, err := n.Features.GetProductFeatures(egCtx, cand.Product.ID); err == nil {
					for k, v := range extra {
						vec[k] = v
					}
				}
			}

			s := cosineSimilarity(rctx.Profile.Dims, vec)
			if s < 0 {
				s = 0
			}
			if s > 1 {
				s = 1
			}

			mu.Lock()
			cand.ContentScore = s
			cand.PutLabel("content_metric", utils.Label{Value: "cosine", Source: "score"})
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return cands, nil
}

// cosineSimilarity 计算两个稀疏特征向量的余弦相似度。
// 任一侧模长为 0 时返回 0。
func cosineSimilarity(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for k, va := range a {
		normA += va * va
		if vb, ok := b[k]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
