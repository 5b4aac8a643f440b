package score

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rushteam/recsys/core"
)

type stubInteractions struct {
	all     []*core.Interaction
	listErr error
}

func (s *stubInteractions) Append(_ context.Context, _ *core.Interaction) (bool, error) {
	return false, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported, "read-only stub")
}

func (s *stubInteractions) ListByUser(_ context.Context, userID string) ([]*core.Interaction, error) {
	out := make([]*core.Interaction, 0)
	for _, in := range s.all {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	return out, nil
}

func (s *stubInteractions) ListAll(_ context.Context, _ time.Time) ([]*core.Interaction, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.all, nil
}

func (s *stubInteractions) CountByUser(ctx context.Context, userID string) (int, error) {
	list, err := s.ListByUser(ctx, userID)
	return len(list), err
}

func event(user, product string, typ core.InteractionType, key string) *core.Interaction {
	return &core.Interaction{
		UserID:    user,
		ProductID: product,
		Type:      typ,
		Timestamp: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		IdemKey:   key,
	}
}

func collabRctx(interactionCount int) *core.RecommendContext {
	return &core.RecommendContext{
		UserID:  "target",
		Profile: &core.PreferenceProfile{UserID: "target", InteractionCount: interactionCount},
	}
}

func TestCollabNode_ZeroHistoryHasNoConfidence(t *testing.T) {
	node := &CollabNode{Interactions: &stubInteractions{}}
	cand := core.NewCandidate(&core.Product{ID: "p1", Available: true})

	cands, err := node.Process(context.Background(), collabRctx(0), []*core.Candidate{cand})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if cands[0].HasCollab {
		t.Error("HasCollab = true, want false for zero-history user")
	}
	if cands[0].CollabScore != 0 {
		t.Errorf("CollabScore = %v; the no-confidence path must not fabricate a score", cands[0].CollabScore)
	}
}

func TestCollabNode_NeighborWeightedAverage(t *testing.T) {
	// target 和 n1 买过同一个商品（Jaccard=1/2），n1 还买了 p2
	interactions := []*core.Interaction{
		event("target", "p1", core.InteractionPurchase, "t1"),
		event("n1", "p1", core.InteractionPurchase, "a1"),
		event("n1", "p2", core.InteractionPurchase, "a2"),
	}
	node := &CollabNode{Interactions: &stubInteractions{all: interactions}}

	p2 := core.NewCandidate(&core.Product{ID: "p2", Available: true})
	lonely := core.NewCandidate(&core.Product{ID: "p9", Available: true})

	cands, err := node.Process(context.Background(), collabRctx(1), []*core.Candidate{p2, lonely})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !cands[0].HasCollab {
		t.Fatal("p2 should carry a collaborative score: a similar user purchased it")
	}
	// 唯一邻居对 p2 的亲和度为 1.0（purchase），加权平均 = 1.0
	if math.Abs(cands[0].CollabScore-1.0) > 1e-9 {
		t.Errorf("CollabScore = %v, want 1.0", cands[0].CollabScore)
	}

	if cands[1].HasCollab {
		t.Error("p9 has no neighbor interactions; must be no-confidence, not zero")
	}
}

func TestCollabNode_DismissedNeighborItemExcluded(t *testing.T) {
	// n1 对 p2 的 view(0.2) 被 dismiss(-0.5) 压到负数：亲和度条目被清掉
	interactions := []*core.Interaction{
		event("target", "p1", core.InteractionPurchase, "t1"),
		event("n1", "p1", core.InteractionPurchase, "a1"),
		event("n1", "p2", core.InteractionView, "a2"),
		event("n1", "p2", core.InteractionDismiss, "a3"),
	}
	node := &CollabNode{Interactions: &stubInteractions{all: interactions}}

	p2 := core.NewCandidate(&core.Product{ID: "p2", Available: true})
	cands, err := node.Process(context.Background(), collabRctx(1), []*core.Candidate{p2})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if cands[0].HasCollab {
		t.Error("suppressed neighbor affinity should leave the candidate with no confidence")
	}
}

func TestCollabNode_StoreFailureDegradesNotFails(t *testing.T) {
	node := &CollabNode{Interactions: &stubInteractions{
		listErr: core.NewDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "log scan timed out"),
	}}
	cand := core.NewCandidate(&core.Product{ID: "p1", Available: true})
	rctx := collabRctx(3)

	cands, err := node.Process(context.Background(), rctx, []*core.Candidate{cand})
	if err != nil {
		t.Fatalf("Process() must degrade instead of failing, got error = %v", err)
	}
	if cands[0].HasCollab {
		t.Error("HasCollab = true after store failure")
	}
	if !rctx.Degraded() {
		t.Error("Degraded = false, want true after collaborative fallback")
	}
}

func TestCollabNode_ExpiredContextDegrades(t *testing.T) {
	interactions := []*core.Interaction{
		event("target", "p1", core.InteractionPurchase, "t1"),
		event("n1", "p1", core.InteractionPurchase, "a1"),
		event("n1", "p2", core.InteractionPurchase, "a2"),
	}
	node := &CollabNode{Interactions: &stubInteractions{all: interactions}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // 截止时间已到

	rctx := collabRctx(1)
	cand := core.NewCandidate(&core.Product{ID: "p2", Available: true})

	cands, err := node.Process(ctx, rctx, []*core.Candidate{cand})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if cands[0].HasCollab {
		t.Error("HasCollab = true, want no-confidence after deadline")
	}
	if !rctx.Degraded() {
		t.Error("Degraded = false, want true after timeout")
	}
}

func TestJaccardSimilarity(t *testing.T) {
	a := map[string]float64{"p1": 1, "p2": 1}
	b := map[string]float64{"p2": 1, "p3": 1, "p4": 1}

	got := jaccardSimilarity(a, b)
	want := 1.0 / 4.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("jaccardSimilarity() = %v, want %v", got, want)
	}

	if got := jaccardSimilarity(nil, b); got != 0 {
		t.Errorf("jaccardSimilarity(nil, b) = %v, want 0", got)
	}
}
