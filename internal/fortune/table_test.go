package fortune

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTableValidation(t *testing.T) {
	_, err := NewTable(nil)
	require.Error(t, err)

	_, err = NewTable([]Outcome{{ID: "吉", Weight: 0}})
	require.Error(t, err)

	_, err = NewTable([]Outcome{{ID: "吉", Weight: 1}, {ID: "吉", Weight: 2}})
	require.Error(t, err)

	_, err = NewTable([]Outcome{{ID: "", Weight: 1}})
	require.Error(t, err)
}

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	require.Len(t, table.IDs(), 11)
	require.InDelta(t, 112.4, table.TotalWeight(), 1e-9)
	require.True(t, table.Contains("大大吉"))
	require.True(t, table.Contains("C賞"))
	require.False(t, table.Contains("なし"))
}

func TestDrawIsReproducible(t *testing.T) {
	table := DefaultTable()

	first := make([]string, 50)
	rng := rand.New(rand.NewSource(42))
	for i := range first {
		first[i] = table.Draw(rng)
	}

	// 相同的随机源种子必须产生完全相同的抽签序列
	rng = rand.New(rand.NewSource(42))
	for i := range first {
		require.Equal(t, first[i], table.Draw(rng))
	}
}

func TestDrawFrequencyMatchesWeights(t *testing.T) {
	table, err := NewTable([]Outcome{
		{ID: "a", Weight: 1},
		{ID: "b", Weight: 2},
		{ID: "c", Weight: 7},
	})
	require.NoError(t, err)

	const samples = 200000
	rng := rand.New(rand.NewSource(7))
	counts := make(map[string]int)
	for i := 0; i < samples; i++ {
		counts[table.Draw(rng)]++
	}

	// 经验频率应当收敛到 weight / totalWeight，容忍1个百分点的偏差
	total := table.TotalWeight()
	for _, o := range table.Outcomes() {
		expected := o.Weight / total
		actual := float64(counts[o.ID]) / samples
		require.InDelta(t, expected, actual, 0.01, "outcome %s", o.ID)
	}
}

func TestDrawCoversRareOutcomes(t *testing.T) {
	table := DefaultTable()

	const samples = 500000
	rng := rand.New(rand.NewSource(3))
	counts := make(map[string]int)
	for i := 0; i < samples; i++ {
		counts[table.Draw(rng)]++
	}

	// 权重最低的签 (大大凶, 0.1/112.4) 在50万次抽签中也应该出现
	require.Greater(t, counts["大大凶"], 0)
	// 没有任何抽签落在签表之外
	sum := 0
	for id, c := range counts {
		require.True(t, table.Contains(id))
		sum += c
	}
	require.Equal(t, samples, sum)
}
