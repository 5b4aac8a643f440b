package ingest

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rushteam/recsys/core"
)

// shardCount 每用户串行锁的分片数。
const shardCount = 64

// Ingestor 是交互事件摄入器：幂等追加到交互日志。
//
// 约定：
//   - 幂等键已存在的事件返回 (false, nil)：重复是上报信息，不是错误
//   - 同一用户的摄入串行化（画像的衰减折算依赖该用户历史的一致有序视图），
//     不同用户的摄入流相互独立——按用户 ID 哈希到分片锁，没有全局锁，
//     任何推荐请求都不会被其他用户的摄入阻塞
//   - 摄入只追加日志，不急切重建画像；画像在下一次 Build 时惰性重建，
//     摄入保持均摊 O(1)
type Ingestor struct {
	Interactions core.InteractionStore

	shards [shardCount]sync.Mutex
}

// NewIngestor 创建摄入器。
func NewIngestor(interactions core.InteractionStore) *Ingestor {
	return &Ingestor{Interactions: interactions}
}

// Ingest 摄入一条交互事件。
// 返回 accepted=false 表示幂等键重复（事件被丢弃，不计权）。
func (g *Ingestor) Ingest(ctx context.Context, in *core.Interaction) (bool, error) {
	if err := in.Validate(); err != nil {
		return false, err
	}
	if g.Interactions == nil {
		return false, core.NewDomainError(core.ModuleIngest, core.ErrorCodeUnavailable, "ingest: no interaction store")
	}

	mu := &g.shards[shardIndex(in.UserID)]
	mu.Lock()
	defer mu.Unlock()

	return g.Interactions.Append(ctx, in)
}

func shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % shardCount)
}
