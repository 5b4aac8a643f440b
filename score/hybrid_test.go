package score

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/recsys/core"
)

func TestHybridNode_ContentOnlyFallback(t *testing.T) {
	node := &HybridNode{}
	cand := core.NewCandidate(&core.Product{ID: "p1"})
	cand.ContentScore = 0.7
	cand.CollabScore = 0 // 无置信度时这个值没有含义
	cand.HasCollab = false

	cands, err := node.Process(context.Background(), collabRctx(5), []*core.Candidate{cand})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if cands[0].CombinedScore != 0.7 {
		t.Errorf("CombinedScore = %v, want content score verbatim on fallback", cands[0].CombinedScore)
	}
	if lbl, ok := cands[0].Labels["blend"]; !ok || lbl.Value != "content_only" {
		t.Errorf("blend label = %v, want content_only", lbl.Value)
	}
}

func TestHybridNode_BlendWeightedByHistory(t *testing.T) {
	node := &HybridNode{}

	blend := func(n int) float64 {
		cand := core.NewCandidate(&core.Product{ID: "p1"})
		cand.ContentScore = 0.0
		cand.CollabScore = 1.0
		cand.HasCollab = true
		cands, err := node.Process(context.Background(), collabRctx(n), []*core.Candidate{cand})
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		return cands[0].CombinedScore
	}

	// content=0, collab=1 时 combined 就是 α 本身
	tests := []struct {
		name         string
		interactions int
		want         float64
	}{
		{"no history clamps to alpha min", 0, 0.1},
		{"pivot point", 10, 0.5},
		{"heavy history clamps to alpha max", 10000, 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := blend(tt.interactions)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("alpha(%d interactions) = %v, want %v", tt.interactions, got, tt.want)
			}
		})
	}

	// α 随历史单调不减
	prev := -1.0
	for _, n := range []int{0, 1, 5, 10, 50, 200} {
		cur := blend(n)
		if cur < prev {
			t.Errorf("alpha decreased from %v to %v at n=%d", prev, cur, n)
		}
		prev = cur
	}
}

func TestHybridNode_BothSignalsAlwaysContribute(t *testing.T) {
	node := &HybridNode{}

	// 即便历史极多，内容分也不会被完全压制（α ≤ 0.9）
	cand := core.NewCandidate(&core.Product{ID: "p1"})
	cand.ContentScore = 1.0
	cand.CollabScore = 0.0
	cand.HasCollab = true

	cands, err := node.Process(context.Background(), collabRctx(100000), []*core.Candidate{cand})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if math.Abs(cands[0].CombinedScore-0.1) > 1e-9 {
		t.Errorf("CombinedScore = %v, want 0.1 (content keeps 1-alphaMax share)", cands[0].CombinedScore)
	}
}
