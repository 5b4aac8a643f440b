package engine

import (
	"context"
	"time"

	"github.com/rushteam/recsys/core"
	"github.com/rushteam/recsys/ingest"
	"github.com/rushteam/recsys/pipeline"
	"github.com/rushteam/recsys/profile"
)

const (
	// DefaultCount 未指定条数时的默认推荐条数。
	DefaultCount = 10

	// MaxCount 单次请求条数上限（防御性，不让一次请求拖垮打分）。
	MaxCount = 100
)

// Engine 是推荐引擎的对外门面，聚合整条链路：
//
//	交互事件 → Ingestor → 交互日志
//	显式偏好 + 交互日志 → 画像 → 候选生成 → {内容打分, 协同打分} → 融合 → 排序 → 结果
//
// 请求之间相互独立：每次 Recommend 只读存储 + 纯计算，
// 不同用户的请求天然可并行，无需加锁。
type Engine struct {
	Users        core.UserStore
	Catalog      core.CatalogStore
	Interactions core.InteractionStore

	Builder  *profile.Builder
	Pipeline *pipeline.Pipeline
	Ingestor *ingest.Ingestor

	// MinCandidates 候选集最小规模（透传给候选生成的放宽逻辑）。
	MinCandidates int

	// RequestTimeout 单次推荐请求的截止时间，默认 2s。
	// 协同打分超时会降级为纯内容打分，而不是让请求失败。
	RequestTimeout time.Duration
}

// Recommend 为用户生成 Top-count 推荐。
//
// 错误约定：
//   - 用户不存在 → NOT_FOUND
//   - 整个目录为空 → EMPTY_CATALOG（结果允许为空的唯一合法情形）
//   - 数据稀疏（冷启动/薄目录/协同超时）不是错误，
//     体现在 Recommendation.Degraded=true
func (e *Engine) Recommend(ctx context.Context, userID string, count int) (*core.Recommendation, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "recommend: missing user id")
	}

	// 条数默认值与上限
	if count <= 0 {
		count = DefaultCount
	} else if count > MaxCount {
		count = MaxCount
	}

	timeout := e.RequestTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	user, err := e.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 整目录为空是唯一允许空结果的情形，且以错误上报
	whole, err := e.Catalog.ListProducts(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(whole) == 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeEmptyCatalog, "recommend: catalog is empty")
	}

	interactions, err := e.Interactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 画像惰性重建：摄入侧只追加日志，这里才做衰减折算
	prof, err := e.Builder.Build(ctx, user, interactions, time.Now())
	if err != nil {
		return nil, err
	}

	rctx := &core.RecommendContext{
		UserID:        userID,
		User:          user,
		Profile:       prof,
		Count:         count,
		MinCandidates: e.MinCandidates,
	}
	if prof.ExplicitOnly {
		rctx.MarkDegraded("cold_start")
	}

	cands, err := e.Pipeline.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	return &core.Recommendation{
		Items:    cands,
		Degraded: rctx.Degraded(),
	}, nil
}

// IngestInteraction 摄入一条交互事件。
// 幂等键重复时 accepted=false、reason="duplicate"，不是错误。
func (e *Engine) IngestInteraction(ctx context.Context, in *core.Interaction) (accepted bool, reason string, err error) {
	if e.Ingestor == nil {
		return false, "", core.NewDomainError(core.ModuleEngine, core.ErrorCodeUnavailable, "engine: no ingestor")
	}
	accepted, err = e.Ingestor.Ingest(ctx, in)
	if err != nil {
		return false, "", err
	}
	if !accepted {
		return false, "duplicate", nil
	}
	return true, "", nil
}

// UpdatePreferences 更新用户的显式偏好（覆盖语义）。
// 结构非法（如 min > max）在入口处拒绝，不进入引擎内部。
func (e *Engine) UpdatePreferences(ctx context.Context, userID string, prefs *core.Preferences) error {
	if userID == "" {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "preferences: missing user id")
	}
	if err := prefs.Validate(); err != nil {
		return err
	}

	user, err := e.Users.GetUser(ctx, userID)
	if err != nil {
		if core.IsNotFound(err) {
			// PUT 语义：用户记录不存在时创建
			user = &core.User{ID: userID}
		} else {
			return err
		}
	}
	user.Preferences = *prefs
	return e.Users.PutUser(ctx, user)
}
