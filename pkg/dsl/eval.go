package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/recsys/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("candidate", cel.DynType),
		cel.Variable("product", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是业务规则表达式的解释器，使用 CEL (Common Expression Language) 实现。
// 用于规则过滤器：对候选求值布尔表达式，决定是否剔除。
//
// 表达式语法（CEL 标准语法）：
//   - 商品属性：product.category == "Electronics" / product.price > 1000.0
//   - 分数：candidate.content_score > 0.7
//   - 标签：label.candidate_source == "unbound"
//   - 逻辑：product.brand == "A" && candidate.combined_score < 0.2
//
// 示例：
//   - `product.price > 10000.0` → 剔除超高价商品
//   - `label.candidate_source == "unbound" && candidate.content_score == 0.0`
//     → 剔除放宽兜底且毫无内容匹配的候选
type Eval struct {
	cand *core.Candidate
	rctx *core.RecommendContext
	env  *cel.Env
}

// NewEval 创建一个新的规则解释器。
func NewEval(cand *core.Candidate, rctx *core.RecommendContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		cand: cand,
		rctx: rctx,
		env:  env,
	}
}

// Evaluate 解析并执行规则表达式，返回布尔结果。
// 空表达式视为 true。
//
// 注意：CEL 访问不存在的 key 会报错，检查存在性请用 label.key != null。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	if e.env == nil {
		return false, fmt.Errorf("cel env not initialized")
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}

	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	labels := make(map[string]interface{})
	if e.cand != nil {
		for k, v := range e.cand.Labels {
			labels[k] = v.Value
		}
	}

	product := map[string]interface{}{}
	candidate := map[string]interface{}{}
	if e.cand != nil {
		candidate = map[string]interface{}{
			"content_score":  e.cand.ContentScore,
			"collab_score":   e.cand.CollabScore,
			"has_collab":     e.cand.HasCollab,
			"combined_score": e.cand.CombinedScore,
		}
		if p := e.cand.Product; p != nil {
			product = map[string]interface{}{
				"id":        p.ID,
				"category":  p.Category,
				"brand":     p.Brand,
				"price":     p.Price,
				"available": p.Available,
			}
		}
	}

	rctx := map[string]interface{}{}
	if e.rctx != nil {
		rctx = map[string]interface{}{
			"user_id": e.rctx.UserID,
			"count":   e.rctx.Count,
			"params":  e.rctx.Params,
		}
	}

	return map[string]interface{}{
		"candidate": candidate,
		"product":   product,
		"label":     labels,
		"rctx":      rctx,
	}
}
