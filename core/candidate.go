package core

import (
	"sort"

	"github.com/rushteam/recsys/pkg/utils"
)

// Candidate 是推荐链路中的统一承载结构：商品、各路分数、标签。
// Labels 用于解释与策略驱动；CombinedScore 用于最终排序决策。
//
// 分数约定：
//   - ContentScore / CollabScore / CombinedScore 均在 [0,1]
//   - HasCollab=false 表示协同分数"无置信度"（算不出来），
//     与协同分数为 0（相似用户不喜欢）是两种完全不同的状态
type Candidate struct {
	Product *Product

	ContentScore  float64
	CollabScore   float64
	HasCollab     bool
	CombinedScore float64

	Labels map[string]utils.Label
}

// NewCandidate 以商品为底创建候选。
func NewCandidate(p *Product) *Candidate {
	return &Candidate{
		Product: p,
		Labels:  make(map[string]utils.Label),
	}
}

// ID 返回商品 ID（候选按商品去重）。
func (c *Candidate) ID() string {
	if c == nil || c.Product == nil {
		return ""
	}
	return c.Product.ID
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (c *Candidate) PutLabel(key string, lbl utils.Label) {
	if c.Labels == nil {
		c.Labels = make(map[string]utils.Label)
	}
	if old, ok := c.Labels[key]; ok {
		c.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	c.Labels[key] = lbl
}

// Reasons 把 Labels 汇总成可读的推荐理由列表（按 key 排序，保证稳定输出）。
func (c *Candidate) Reasons() []string {
	if c == nil || len(c.Labels) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Labels))
	for k := range c.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+c.Labels[k].Value)
	}
	return out
}

// Recommendation 是一次推荐请求的最终结果。
//
// 约定：
//   - Items 按 CombinedScore 降序，分数相同按商品 ID 升序
//   - 按商品 ID 去重，长度不超过请求的 count
//   - Degraded=true 表示走了回退路径（冷启动 / 候选放宽 / 协同超时），
//     对调用方不算错误
type Recommendation struct {
	Items    []*Candidate
	Degraded bool
}
