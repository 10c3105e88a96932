package fortune

import (
	"fmt"
	"math/rand"

	"github.com/CtrlC703/himamikuji-bot/pkg/tree"
)

// Outcome 定义了一种签的标识和相对权重。
// 权重只要求为正数，不要求总和为100。
type Outcome struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// Table 是一张固定的签表。
// 签的集合和权重在构建后不再变化，抽签通过内部的加权采样器完成。
type Table struct {
	outcomes []Outcome
	index    map[string]int
	sampler  *tree.WeightedSampler
}

// NewTable 从一组签构建签表。
// 签表不能为空，所有权重必须为正数，标识不能重复。
func NewTable(outcomes []Outcome) (*Table, error) {
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("签表不能为空")
	}

	index := make(map[string]int, len(outcomes))
	weights := make([]float64, len(outcomes))
	for i, o := range outcomes {
		if o.ID == "" {
			return nil, fmt.Errorf("签表第 %d 项缺少标识", i)
		}
		if _, exists := index[o.ID]; exists {
			return nil, fmt.Errorf("签表中存在重复的标识 '%s'", o.ID)
		}
		if o.Weight <= 0 {
			return nil, fmt.Errorf("签 '%s' 的权重 %f 不是正数", o.ID, o.Weight)
		}
		index[o.ID] = i
		weights[i] = o.Weight
	}

	sampler, err := tree.NewWeightedSampler(weights)
	if err != nil {
		return nil, fmt.Errorf("无法构建加权采样器: %w", err)
	}

	return &Table{
		outcomes: append([]Outcome(nil), outcomes...),
		index:    index,
		sampler:  sampler,
	}, nil
}

// Draw 使用注入的随机源从签表中加权抽取一支签，返回其标识。
// 这是一个纯函数：除了消耗随机源之外没有任何副作用。
func (t *Table) Draw(rng *rand.Rand) string {
	// rng.Float64() 均匀分布于 [0,1)，映射到 [0, totalWeight)
	value := rng.Float64() * t.sampler.Total()
	idx, err := t.sampler.Find(value)
	if err != nil {
		// Find 只在值超出 [0, Total) 时报错，上面的映射保证了这不可能发生
		panic(fmt.Sprintf("加权采样失败: %v", err))
	}
	return t.outcomes[idx].ID
}

// Outcomes 返回签表中所有签的副本，保持固定顺序。
func (t *Table) Outcomes() []Outcome {
	return append([]Outcome(nil), t.outcomes...)
}

// IDs 返回签表中所有签的标识，保持固定顺序。
// 表格镜像的结果列顺序就来自这里。
func (t *Table) IDs() []string {
	ids := make([]string, len(t.outcomes))
	for i, o := range t.outcomes {
		ids[i] = o.ID
	}
	return ids
}

// Contains 判断一个标识是否属于这张签表。
func (t *Table) Contains(id string) bool {
	_, ok := t.index[id]
	return ok
}

// TotalWeight 返回签表的总权重。
func (t *Table) TotalWeight() float64 {
	return t.sampler.Total()
}
