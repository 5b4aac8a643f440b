package store

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/rushteam/recsys/core"
)

const (
	interIdemPrefix = "inter:idem:" // 幂等键去重标记
	interUserPrefix = "inter:user:" // 单用户交互日志（zset，score=时间戳）
	interAllKey     = "inter:all"   // 全量交互日志（协同打分用）
)

// InteractionKV 是基于 KeyValueStore 的交互日志仓储实现。
//
// 存储布局：
//   - 幂等键：SetNX inter:idem:{idemKey}，先到先得
//   - 单用户日志：ZAdd inter:user:{userID}，score 为时间戳纳秒，member 为事件 JSON
//   - 全量日志：ZAdd inter:all，同上
//
// 日志只追加；member 里带 IdemKey，天然互不覆盖。
// 并发安全依赖上层摄入器的按用户串行化 + 这里的 SetNX 原子去重。
type InteractionKV struct {
	KV core.KeyValueStore
}

func NewInteractionKV(kv core.KeyValueStore) *InteractionKV {
	return &InteractionKV{KV: kv}
}

func (s *InteractionKV) Append(ctx context.Context, in *core.Interaction) (bool, error) {
	if err := in.Validate(); err != nil {
		return false, err
	}

	ok, err := s.KV.SetNX(ctx, interIdemPrefix+in.IdemKey, []byte("1"))
	if err != nil {
		return false, err
	}
	if !ok {
		// 幂等键已存在：重放事件，丢弃且不报错
		return false, nil
	}

	data, err := json.Marshal(in)
	if err != nil {
		return false, err
	}
	score := float64(in.Timestamp.UnixNano())
	if err := s.KV.ZAdd(ctx, interUserPrefix+in.UserID, score, string(data)); err != nil {
		return false, err
	}
	if err := s.KV.ZAdd(ctx, interAllKey, score, string(data)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *InteractionKV) ListByUser(ctx context.Context, userID string) ([]*core.Interaction, error) {
	return s.list(ctx, interUserPrefix+userID, time.Time{})
}

func (s *InteractionKV) ListAll(ctx context.Context, since time.Time) ([]*core.Interaction, error) {
	return s.list(ctx, interAllKey, since)
}

func (s *InteractionKV) CountByUser(ctx context.Context, userID string) (int, error) {
	members, err := s.KV.ZRangeAsc(ctx, interUserPrefix+userID, 0, -1)
	if err != nil {
		return 0, err
	}
	return len(members), nil
}

// list 读取并解码日志，统一按 (Timestamp, IdemKey) 升序返回。
// zset 已按时间戳排好，重排只为给同时间戳事件一个确定的次序。
func (s *InteractionKV) list(ctx context.Context, key string, since time.Time) ([]*core.Interaction, error) {
	members, err := s.KV.ZRangeAsc(ctx, key, 0, -1)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Interaction, 0, len(members))
	for _, m := range members {
		var in core.Interaction
		if err := json.Unmarshal([]byte(m), &in); err != nil {
			continue
		}
		if !since.IsZero() && in.Timestamp.Before(since) {
			continue
		}
		out = append(out, &in)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].IdemKey < out[j].IdemKey
	})
	return out, nil
}

var _ core.InteractionStore = (*InteractionKV)(nil)
