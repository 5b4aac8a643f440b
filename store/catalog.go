package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/rushteam/recsys/core"
)

const catalogHashKey = "catalog"

// CatalogKV 是基于 KeyValueStore 的商品目录仓储实现。
// 商品以 JSON 存在 Hash 字段里；目录对推荐引擎只读，
// PutProduct 供目录归属方/测试灌数用。
type CatalogKV struct {
	KV core.KeyValueStore
}

func NewCatalogKV(kv core.KeyValueStore) *CatalogKV {
	return &CatalogKV{KV: kv}
}

func (s *CatalogKV) GetProduct(ctx context.Context, id string) (*core.Product, error) {
	data, err := s.KV.HGet(ctx, catalogHashKey, id)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound, "product not found: "+id)
		}
		return nil, err
	}

	var p core.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInternalError, "product decode: "+err.Error())
	}
	return &p, nil
}

// ListProducts 列出商品，按 ID 升序（HGetAll 的 map 无序，这里排序保证链路确定性）。
func (s *CatalogKV) ListProducts(ctx context.Context, availableOnly bool) ([]*core.Product, error) {
	fields, err := s.KV.HGetAll(ctx, catalogHashKey)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Product, 0, len(fields))
	for _, data := range fields {
		var p core.Product
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}
		if availableOnly && !p.Available {
			continue
		}
		out = append(out, &p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PutProduct 写入/覆盖商品记录。
func (s *CatalogKV) PutProduct(ctx context.Context, p *core.Product) error {
	if p == nil || p.ID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "product: missing id")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.KV.HSet(ctx, catalogHashKey, p.ID, data)
}

var _ core.CatalogStore = (*CatalogKV)(nil)
