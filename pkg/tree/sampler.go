package tree

import (
	"fmt"
	"math/bits"
)

// WeightedSampler 是一个为加权随机抽样构建的、基于线段树的采样器。
// 权重表在构建后固定不变，因此只支持构建和前缀查找两种操作。
type WeightedSampler struct {
	tree         []float64 // 存储树的节点，大小为 2 * alignedSize
	originalSize int       // 权重表的原始大小 (N)
	alignedSize  int       // 对齐到2的幂次后的大小
}

// NewWeightedSampler 从一个权重数组构建采样器。
// 所有权重必须为正数。
func NewWeightedSampler(weights []float64) (*WeightedSampler, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("权重表不能为空")
	}
	for i, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf("权重表第 %d 项的权重 %f 不是正数", i, w)
		}
	}

	alignedSize := 1 << bits.Len(uint(len(weights)))
	ws := &WeightedSampler{
		tree:         make([]float64, 2*alignedSize),
		originalSize: len(weights),
		alignedSize:  alignedSize,
	}

	// 1. 填充叶子节点，多余的叶子保持为0
	for i, w := range weights {
		ws.tree[alignedSize+i] = w
	}

	// 2. 非递归地从下到上构建父节点
	for i := alignedSize - 1; i > 0; i-- {
		ws.tree[i] = ws.tree[2*i] + ws.tree[2*i+1]
	}
	return ws, nil
}

// Total 返回所有权重的总和。
func (ws *WeightedSampler) Total() float64 {
	return ws.tree[1]
}

// Size 返回权重表的原始大小。
func (ws *WeightedSampler) Size() int {
	return ws.originalSize
}

// Find 查找第一个其前缀和大于给定值的索引，用于加权随机抽样。
// 传入一个 [0, Total()) 区间内的均匀随机值，即可按权重比例选中一项。
func (ws *WeightedSampler) Find(value float64) (int, error) {
	if value < 0 || value >= ws.Total() {
		return -1, fmt.Errorf("查找值 %f 超出总权重范围 [0, %f)", value, ws.Total())
	}

	pos := 1
	for pos < ws.alignedSize { // 只要还没到叶子层
		leftChild := 2 * pos

		if value < ws.tree[leftChild] {
			// 如果随机值落在左子树的权重区间内，则进入左子树
			pos = leftChild
		} else {
			// 否则，减去左子树的权重，然后进入右子树
			value -= ws.tree[leftChild]
			pos = leftChild + 1
		}
	}
	return pos - ws.alignedSize, nil
}
