package candidate

import (
	"context"
	"sort"
	"testing"

	"github.com/rushteam/recsys/core"
)

type stubCatalog struct {
	products []*core.Product
}

func (s *stubCatalog) GetProduct(_ context.Context, id string) (*core.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound, "product not found: "+id)
}

func (s *stubCatalog) ListProducts(_ context.Context, availableOnly bool) ([]*core.Product, error) {
	out := make([]*core.Product, 0, len(s.products))
	for _, p := range s.products {
		if availableOnly && !p.Available {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func profileWith(dims map[string]float64) *core.PreferenceProfile {
	return &core.PreferenceProfile{UserID: "u1", Dims: dims}
}

func candidateIDs(cands []*core.Candidate) []string {
	ids := make([]string, 0, len(cands))
	for _, c := range cands {
		ids = append(ids, c.ID())
	}
	return ids
}

func TestProcess_FullMatchNoWidening(t *testing.T) {
	catalog := &stubCatalog{products: []*core.Product{
		{ID: "e1", Category: "Electronics", Brand: "Acme", Price: 30, Available: true},
		{ID: "e2", Category: "Electronics", Brand: "Acme", Price: 40, Available: true},
		{ID: "b1", Category: "Books", Brand: "Pressly", Price: 20, Available: true},
	}}
	g := &Generator{Catalog: catalog, MinSize: 2}

	rctx := &core.RecommendContext{
		UserID: "u1",
		Profile: profileWith(map[string]float64{
			core.DimCategory("Electronics"): 1.0,
			core.DimBrand("Acme"):           1.0,
			core.DimPriceBucket(1):          1.0, // [10, 50)
		}),
	}

	cands, err := g.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	ids := candidateIDs(cands)
	if len(ids) != 2 || ids[0] != "e1" || ids[1] != "e2" {
		t.Errorf("candidates = %v, want [e1 e2]", ids)
	}
	if rctx.Degraded() {
		t.Error("Degraded = true, want false when first pass fills MinSize")
	}
}

func TestProcess_WidensUntilMinSize(t *testing.T) {
	// 只有 1 个全匹配商品：价格约束先放掉，再放品牌，候选按级别累积
	catalog := &stubCatalog{products: []*core.Product{
		{ID: "e1", Category: "Electronics", Brand: "Acme", Price: 30, Available: true},
		{ID: "e2", Category: "Electronics", Brand: "Acme", Price: 800, Available: true},
		{ID: "e3", Category: "Electronics", Brand: "Bolt", Price: 900, Available: true},
		{ID: "b1", Category: "Books", Brand: "Pressly", Price: 20, Available: true},
	}}
	g := &Generator{Catalog: catalog, MinSize: 3}

	rctx := &core.RecommendContext{
		UserID: "u1",
		Profile: profileWith(map[string]float64{
			core.DimCategory("Electronics"): 1.0,
			core.DimBrand("Acme"):           1.0,
			core.DimPriceBucket(1):          1.0,
		}),
	}

	cands, err := g.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	ids := candidateIDs(cands)
	if len(ids) != 3 {
		t.Fatalf("candidates = %v, want 3 after widening", ids)
	}
	// e1 全匹配先进，e2 在放掉价格后进，e3 在放掉品牌后进
	if ids[0] != "e1" || ids[1] != "e2" || ids[2] != "e3" {
		t.Errorf("candidates = %v, want [e1 e2 e3]", ids)
	}
	if !rctx.Degraded() {
		t.Error("Degraded = false, want true when widening was needed")
	}
	if lbl, ok := rctx.GetLabel("widened"); !ok || lbl.Value != "no_brand" {
		t.Errorf("widened label = %v, want no_brand", lbl.Value)
	}
}

func TestProcess_ThinCatalogReturnsEverything(t *testing.T) {
	catalog := &stubCatalog{products: []*core.Product{
		{ID: "b1", Category: "Books", Brand: "Pressly", Price: 20, Available: true},
		{ID: "b2", Category: "Books", Brand: "Inko", Price: 30, Available: true},
	}}
	g := &Generator{Catalog: catalog, MinSize: 20}

	rctx := &core.RecommendContext{
		UserID: "u1",
		Profile: profileWith(map[string]float64{
			core.DimCategory("Garden"): 1.0,
		}),
	}

	cands, err := g.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(cands) != 2 {
		t.Errorf("candidates = %v, want whole catalog when it cannot fill MinSize", candidateIDs(cands))
	}
	if !rctx.Degraded() {
		t.Error("Degraded = false, want true for unbound fallback")
	}
}

func TestProcess_EmptyProfileMatchesAll(t *testing.T) {
	catalog := &stubCatalog{products: []*core.Product{
		{ID: "a", Category: "X", Brand: "Y", Price: 10, Available: true},
		{ID: "b", Category: "Z", Brand: "W", Price: 20, Available: true},
	}}
	g := &Generator{Catalog: catalog, MinSize: 2}

	rctx := &core.RecommendContext{UserID: "u1", Profile: profileWith(nil)}

	cands, err := g.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(cands) != 2 {
		t.Errorf("candidates = %v, want all products for empty profile", candidateIDs(cands))
	}
	if rctx.Degraded() {
		t.Error("empty constraints should not count as widening")
	}
}

func TestProcess_SkipsUnavailable(t *testing.T) {
	catalog := &stubCatalog{products: []*core.Product{
		{ID: "a", Category: "X", Brand: "Y", Price: 10, Available: true},
		{ID: "gone", Category: "X", Brand: "Y", Price: 10, Available: false},
	}}
	g := &Generator{Catalog: catalog, MinSize: 5}

	rctx := &core.RecommendContext{UserID: "u1", Profile: profileWith(nil)}

	cands, err := g.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	for _, c := range cands {
		if c.ID() == "gone" {
			t.Error("unavailable product leaked into candidates")
		}
	}
}
