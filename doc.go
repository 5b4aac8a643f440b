// Package recsys 是一个个性化推荐引擎（Recommendation System）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（候选生成 → 过滤 → 打分 → 融合 → 排序）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 降级上报
// - 混合打分: 内容相似度 + 用户协同过滤，按置信度加权融合
// - 确定性: 同样的输入两次请求输出一致，排序全程带显式 tie-break
package recsys

import "github.com/rushteam/recsys/pipeline"

// 轻量 facade：便于用户直接 import "recsys" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindCandidate = pipeline.KindCandidate
	KindFilter    = pipeline.KindFilter
	KindScore     = pipeline.KindScore
	KindCombine   = pipeline.KindCombine
	KindRank      = pipeline.KindRank
)
