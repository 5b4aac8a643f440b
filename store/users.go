package store

import (
	"context"
	"encoding/json"

	"github.com/rushteam/recsys/core"
)

const usersHashKey = "users"

// UserKV 是基于 KeyValueStore 的用户仓储实现。
// 用户记录以 JSON 存在 Hash 的字段里，内存/Redis 后端通用。
type UserKV struct {
	KV core.KeyValueStore
}

func NewUserKV(kv core.KeyValueStore) *UserKV {
	return &UserKV{KV: kv}
}

func (s *UserKV) GetUser(ctx context.Context, id string) (*core.User, error) {
	data, err := s.KV.HGet(ctx, usersHashKey, id)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound, "user not found: "+id)
		}
		return nil, err
	}

	var u core.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInternalError, "user decode: "+err.Error())
	}
	return &u, nil
}

func (s *UserKV) PutUser(ctx context.Context, u *core.User) error {
	if u == nil || u.ID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "user: missing id")
	}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.KV.HSet(ctx, usersHashKey, u.ID, data)
}

var _ core.UserStore = (*UserKV)(nil)
