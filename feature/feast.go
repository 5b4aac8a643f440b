package feature

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/rushteam/recsys/core"
)

// FeastSource 是基于 Feast 在线特征存储的商品特征源。
//
// Feast 是开源 Feature Store，在线存储面向实时预测场景。
// 这里只消费在线特征：按商品实体拉一行特征，并入内容打分的商品向量。
//
// 设计原则（DDD）：
//   - 领域层：core.FeatureSource 接口
//   - 基础设施层：FeastSource 实现该接口，可整体替换
//
// 特征源不可用只影响个性化程度，不影响推荐链路可用性
// （内容打分侧静默跳过拉取失败）。
type FeastSource struct {
	client *feastsdk.GrpcClient

	// Project Feast 项目名。
	Project string

	// Features 要拉取的特征名列表，例如 ["product_stats:ctr_7d"]。
	Features []string

	// EntityKey 商品实体在 Feast 里的实体名，默认 "product_id"。
	EntityKey string
}

// NewFeastSource 创建 Feast 特征源（gRPC，默认端口 6565）。
func NewFeastSource(host string, port int, project string, features []string) (*FeastSource, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feast grpc client: %w", err)
	}
	return &FeastSource{
		client:   client,
		Project:  project,
		Features: features,
	}, nil
}

func (s *FeastSource) Name() string { return "feature.feast" }

// GetProductFeatures 拉取单个商品的在线特征。
// 只保留可折算成 float64 的特征值。
func (s *FeastSource) GetProductFeatures(ctx context.Context, productID string) (map[string]float64, error) {
	if s.client == nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeUnavailable, "feast: client not initialized")
	}
	if len(s.Features) == 0 {
		return nil, nil
	}

	entityKey := s.EntityKey
	if entityKey == "" {
		entityKey = "product_id"
	}

	req := &feastsdk.OnlineFeaturesRequest{
		Features: s.Features,
		Entities: []feastsdk.Row{
			{entityKey: feastsdk.StrVal(productID)},
		},
		Project: s.Project,
	}

	resp, err := s.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeUnavailable, "feast: "+err.Error())
	}

	rows := resp.Rows()
	if len(rows) == 0 {
		return nil, nil
	}

	out := make(map[string]float64, len(s.Features))
	for _, name := range s.Features {
		val, ok := rows[0][name]
		if !ok || val == nil {
			continue
		}
		if f, ok := valueToFloat64(val); ok {
			out[name] = f
		}
	}
	return out, nil
}

// valueToFloat64 把 Feast 的 proto Value 折算成 float64 特征值。
// 非数值类型（字符串/字节）跳过。
func valueToFloat64(val *feasttypes.Value) (float64, bool) {
	switch v := val.Val.(type) {
	case *feasttypes.Value_DoubleVal:
		return v.DoubleVal, true
	case *feasttypes.Value_FloatVal:
		return float64(v.FloatVal), true
	case *feasttypes.Value_Int64Val:
		return float64(v.Int64Val), true
	case *feasttypes.Value_Int32Val:
		return float64(v.Int32Val), true
	case *feasttypes.Value_BoolVal:
		if v.BoolVal {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// Close 释放客户端连接。
func (s *FeastSource) Close() error {
	s.client = nil
	return nil
}

var _ core.FeatureSource = (*FeastSource)(nil)
