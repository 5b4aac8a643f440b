// Package config 提供引擎级配置的加载与装配。
//
// 配置分两层：
//   - EngineConfig：存储后端、画像、打分、排序等引擎参数（本文件）
//   - pipeline.Config：推荐链路的 Node 编排（pipeline 包）
//
// 所有参数均可缺省，零值走各组件内置默认值。
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration 是支持 "2s" / "720h" 写法的 time.Duration。
// yaml.v3 不识别 duration 字符串，这里补上解析。
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std 转回标准库的 time.Duration。
func (d Duration) Std() time.Duration { return time.Duration(d) }

// EngineConfig 是推荐引擎的顶层配置。
type EngineConfig struct {
	Engine  EngineSection  `yaml:"engine"`
	Profile ProfileSection `yaml:"profile"`
	Collab  CollabSection  `yaml:"collab"`
	Blend   BlendSection   `yaml:"blend"`
	Rank    RankSection    `yaml:"rank"`
	Rules   []string       `yaml:"rules"` // CEL 过滤规则表达式
	Store   StoreSection   `yaml:"store"`
	Feast   FeastSection   `yaml:"feast"`
}

// EngineSection 请求入口参数。
type EngineSection struct {
	MinCandidates  int      `yaml:"min_candidates"`  // 候选集最小规模，默认 20
	RequestTimeout Duration `yaml:"request_timeout"` // 单次请求截止时间，默认 2s
}

// ProfileSection 画像构建参数。
type ProfileSection struct {
	BaseWeight  float64            `yaml:"base_weight"`  // 显式偏好底权重，默认 1.0
	HalfLife    Duration           `yaml:"half_life"`    // 交互衰减半衰期，默认 720h（30 天）
	TypeWeights map[string]float64 `yaml:"type_weights"` // 交互类型权重
	PriceEdges  []float64          `yaml:"price_edges"`  // 价格分桶边界
}

// CollabSection 协同打分参数。
type CollabSection struct {
	Metric       string   `yaml:"metric"`        // jaccard / cosine
	MaxNeighbors int      `yaml:"max_neighbors"` // TopK 邻居数，默认 50
	Timeout      Duration `yaml:"timeout"`       // 协同打分独立超时
}

// BlendSection 融合参数。
type BlendSection struct {
	AlphaMin   float64 `yaml:"alpha_min"`   // 默认 0.1
	AlphaMax   float64 `yaml:"alpha_max"`   // 默认 0.9
	AlphaPivot int     `yaml:"alpha_pivot"` // 默认 10
}

// RankSection 排序参数。
type RankSection struct {
	DiversityDivisor int `yaml:"diversity_divisor"` // 同类上限分母，默认 3
}

// StoreSection 存储后端选择。
type StoreSection struct {
	Backend string       `yaml:"backend"` // memory / redis，默认 memory
	Redis   RedisSection `yaml:"redis"`
}

// RedisSection Redis 连接参数。
type RedisSection struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// FeastSection 可选的 Feast 在线特征源。Host 为空表示不启用。
type FeastSection struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"` // 默认 6565
	Project  string   `yaml:"project"`
	Features []string `yaml:"features"`
}

// Load 从 YAML 文件加载引擎配置。
func Load(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
