package fortune

// defaultOutcomes 是ひまみくじ的11种签和它们的相对权重。
// 顺序同时决定了表格镜像中结果列的排列，不要随意调整。
var defaultOutcomes = []Outcome{
	{ID: "大大吉", Weight: 0.3},
	{ID: "大吉", Weight: 15},
	{ID: "吉", Weight: 20},
	{ID: "中吉", Weight: 25},
	{ID: "小吉", Weight: 35},
	{ID: "末吉", Weight: 1},
	{ID: "凶", Weight: 10},
	{ID: "大凶", Weight: 5},
	{ID: "大大凶", Weight: 0.1},
	{ID: "ひま吉", Weight: 0.5},
	{ID: "C賞", Weight: 0.5},
}

// DefaultTable 构建默认的ひまみくじ签表。
func DefaultTable() *Table {
	table, err := NewTable(defaultOutcomes)
	if err != nil {
		// 默认签表是硬编码的常量，构建失败说明代码本身有问题
		panic("无法构建默认签表: " + err.Error())
	}
	return table
}
