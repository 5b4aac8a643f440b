package rank

import (
	"context"
	"testing"

	"github.com/rushteam/recsys/core"
)

func scored(id, category, brand string, score float64) *core.Candidate {
	c := core.NewCandidate(&core.Product{ID: id, Category: category, Brand: brand, Available: true})
	c.CombinedScore = score
	return c
}

func ids(cands []*core.Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.ID())
	}
	return out
}

func TestTopNNode_SortAndTieBreak(t *testing.T) {
	node := &TopNNode{N: 10, DiversityDivisor: 100} // 放大上限，先只验证排序

	cands := []*core.Candidate{
		scored("b", "C1", "B1", 0.5),
		scored("a", "C2", "B2", 0.5), // 同分，ID 升序在前
		scored("c", "C3", "B3", 0.9),
	}

	out, err := node.Process(context.Background(), nil, cands)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := []string{"c", "a", "b"}
	got := ids(out)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestTopNNode_DeduplicatesByProduct(t *testing.T) {
	node := &TopNNode{N: 10, DiversityDivisor: 100}

	low := scored("dup", "C", "B", 0.2)
	high := scored("dup", "C", "B", 0.8)

	out, err := node.Process(context.Background(), nil, []*core.Candidate{low, high})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d candidates, want 1 after dedupe", len(out))
	}
	if out[0].CombinedScore != 0.8 {
		t.Errorf("kept score = %v, want the higher duplicate", out[0].CombinedScore)
	}
}

func TestTopNNode_DiversityCap(t *testing.T) {
	// count=6, divisor=3 → 同类别/品牌最多 2 个
	node := &TopNNode{N: 6}

	cands := []*core.Candidate{
		scored("e1", "Electronics", "A1", 0.9),
		scored("e2", "Electronics", "A2", 0.8),
		scored("e3", "Electronics", "A3", 0.7), // 类别超限，被挤出
		scored("b1", "Books", "P1", 0.6),
		scored("g1", "Garden", "G1", 0.5),
		scored("t1", "Toys", "T1", 0.4),
		scored("m1", "Music", "M1", 0.3),
	}

	out, err := node.Process(context.Background(), nil, cands)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	got := ids(out)
	want := []string{"e1", "e2", "b1", "g1", "t1", "m1"}
	if len(got) != len(want) {
		t.Fatalf("result = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result = %v, want %v", got, want)
		}
	}
}

func TestTopNNode_BackfillWhenCapStarves(t *testing.T) {
	// 全部同类别：贪心只留 2 个，但 count=4，被跳过者按序回填
	node := &TopNNode{N: 4}

	cands := []*core.Candidate{
		scored("e1", "Electronics", "A1", 0.9),
		scored("e2", "Electronics", "A2", 0.8),
		scored("e3", "Electronics", "A3", 0.7),
		scored("e4", "Electronics", "A4", 0.6),
	}

	out, err := node.Process(context.Background(), nil, cands)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	got := ids(out)
	want := []string{"e1", "e2", "e3", "e4"}
	if len(got) != 4 {
		t.Fatalf("result = %v, want 4 items after backfill", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result = %v, want %v", got, want)
		}
	}

	if lbl, ok := out[2].Labels["diversity"]; !ok || lbl.Value != "backfill" {
		t.Errorf("backfilled item should carry the diversity=backfill label, got %v", lbl.Value)
	}
}

func TestTopNNode_RequestCountWins(t *testing.T) {
	node := &TopNNode{N: 10, DiversityDivisor: 100}
	rctx := &core.RecommendContext{Count: 2}

	cands := []*core.Candidate{
		scored("a", "C1", "B1", 0.9),
		scored("b", "C2", "B2", 0.8),
		scored("c", "C3", "B3", 0.7),
	}

	out, err := node.Process(context.Background(), rctx, cands)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 2 {
		t.Errorf("got %d items, want request count 2", len(out))
	}
}
