package score

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/recsys/core"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b map[string]float64
		want float64
	}{
		{
			name: "identical vectors",
			a:    map[string]float64{"x": 1, "y": 2},
			b:    map[string]float64{"x": 1, "y": 2},
			want: 1.0,
		},
		{
			name: "orthogonal vectors",
			a:    map[string]float64{"x": 1},
			b:    map[string]float64{"y": 1},
			want: 0,
		},
		{
			name: "zero left vector",
			a:    map[string]float64{},
			b:    map[string]float64{"x": 1},
			want: 0,
		},
		{
			name: "zero right vector",
			a:    map[string]float64{"x": 1},
			b:    map[string]float64{},
			want: 0,
		},
		{
			name: "opposite sign yields negative",
			a:    map[string]float64{"x": 1},
			b:    map[string]float64{"x": -1},
			want: -1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity() = %v, want %v", got, tt.want)
			}
			if math.IsNaN(got) {
				t.Error("cosineSimilarity() returned NaN")
			}
		})
	}
}

func TestContentNode_ScoresByProfileMatch(t *testing.T) {
	node := &ContentNode{}

	rctx := &core.RecommendContext{
		UserID: "u1",
		Profile: &core.PreferenceProfile{
			Dims: map[string]float64{
				core.DimCategory("Electronics"): 1.0,
				core.DimBrand("Acme"):           1.0,
			},
		},
	}

	match := core.NewCandidate(&core.Product{ID: "hit", Category: "Electronics", Brand: "Acme", Price: 30, Available: true})
	miss := core.NewCandidate(&core.Product{ID: "miss", Category: "Garden", Brand: "Weedly", Price: 30, Available: true})

	cands, err := node.Process(context.Background(), rctx, []*core.Candidate{match, miss})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if cands[0].ContentScore <= cands[1].ContentScore {
		t.Errorf("matching product scored %v, non-matching %v; want match higher",
			cands[0].ContentScore, cands[1].ContentScore)
	}
	for _, c := range cands {
		if c.ContentScore < 0 || c.ContentScore > 1 {
			t.Errorf("score %v out of [0,1]", c.ContentScore)
		}
	}
}

func TestContentNode_NegativeProfileClampedToZero(t *testing.T) {
	node := &ContentNode{}

	// 画像里只有被 dismiss 压成负权重的维度：余弦为负，分数截断到 0
	rctx := &core.RecommendContext{
		UserID: "u1",
		Profile: &core.PreferenceProfile{
			Dims: map[string]float64{core.DimCategory("Spam"): -0.5},
		},
	}
	cand := core.NewCandidate(&core.Product{ID: "s1", Category: "Spam", Price: 5, Available: true})

	cands, err := node.Process(context.Background(), rctx, []*core.Candidate{cand})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if cands[0].ContentScore != 0 {
		t.Errorf("score = %v, want 0 after clamping negative cosine", cands[0].ContentScore)
	}
}

type stubFeatures struct {
	features map[string]map[string]float64
}

func (s *stubFeatures) Name() string { return "feature.stub" }

func (s *stubFeatures) GetProductFeatures(_ context.Context, productID string) (map[string]float64, error) {
	return s.features[productID], nil
}

func TestContentNode_MergesExternalFeatures(t *testing.T) {
	node := &ContentNode{
		Features: &stubFeatures{features: map[string]map[string]float64{
			"p1": {"popularity": 1.0},
		}},
	}

	rctx := &core.RecommendContext{
		UserID: "u1",
		Profile: &core.PreferenceProfile{
			Dims: map[string]float64{"popularity": 1.0},
		},
	}
	cand := core.NewCandidate(&core.Product{ID: "p1", Category: "X", Price: 5, Available: true})

	cands, err := node.Process(context.Background(), rctx, []*core.Candidate{cand})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if cands[0].ContentScore == 0 {
		t.Error("external feature did not contribute to the score")
	}
}
