package filter

import (
	"context"

	"github.com/rushteam/recsys/core"
)

// AvailabilityFilter 剔除不可售商品。
// 候选生成只读可售目录，这里是防御性的最后一道闸，
// 防止自定义候选源把下架商品混进链路。
type AvailabilityFilter struct{}

func (f *AvailabilityFilter) Name() string {
	return "filter.availability"
}

func (f *AvailabilityFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	cand *core.Candidate,
) (bool, error) {
	if cand == nil || cand.Product == nil {
		return true, nil
	}
	return !cand.Product.Available, nil
}
