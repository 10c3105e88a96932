package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validRecord() *UserRecord {
	return &UserRecord{
		UserID:        "42",
		DisplayName:   "テスト",
		LastDrawDate:  "2024-01-10",
		LastDrawTime:  "12:34",
		LastOutcome:   "吉",
		CurrentStreak: 3,
		TotalDraws:    5,
		BestStreak:    4,
		OutcomeCounts: map[string]int{"吉": 3, "凶": 2},
	}
}

func TestValidateAcceptsConsistentRecord(t *testing.T) {
	require.NoError(t, validRecord().Validate())

	// 全零的新记录也是合法的
	require.NoError(t, NewUserRecord("42", "テスト").Validate())
}

func TestValidateFailsClosed(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*UserRecord)
	}{
		{"负的连续天数", func(r *UserRecord) { r.CurrentStreak = -1; r.BestStreak = 0 }},
		{"负的累计次数", func(r *UserRecord) { r.TotalDraws = -1 }},
		{"最高连续天数小于当前", func(r *UserRecord) { r.BestStreak = 2 }},
		{"负的签计数", func(r *UserRecord) { r.OutcomeCounts["吉"] = -1 }},
		{"计数总和与累计不符", func(r *UserRecord) { r.TotalDraws = 99 }},
		{"无日期但计数非零", func(r *UserRecord) { r.LastDrawDate = "" }},
		{"日期无法解析", func(r *UserRecord) { r.LastDrawDate = "10/01/2024" }},
		{"缺少用户标识", func(r *UserRecord) { r.UserID = "" }},
	}
	for _, c := range cases {
		rec := validRecord()
		c.mutate(rec)
		err := rec.Validate()
		require.ErrorIs(t, err, ErrInvalidRecordState, c.name)
	}
}

func TestApplyReset(t *testing.T) {
	rec := validRecord()
	rec.ApplyReset()

	// 连续天数和最近的签被清空
	require.Equal(t, 0, rec.CurrentStreak)
	require.Empty(t, rec.LastOutcome)
	require.Empty(t, rec.LastDrawTime)
	// 抽过签的用户落到哨兵日期，保证下一次抽签按断签处理
	require.Equal(t, ResetSentinelDate, rec.LastDrawDate)
	// 累计统计原样保留
	require.Equal(t, 5, rec.TotalDraws)
	require.Equal(t, 4, rec.BestStreak)
	require.Equal(t, 3, rec.OutcomeCounts["吉"])

	// 重置后的记录依然通过自检
	require.NoError(t, rec.Validate())

	// 从未抽签的用户重置后日期保持为空
	fresh := NewUserRecord("7", "")
	fresh.ApplyReset()
	require.Empty(t, fresh.LastDrawDate)
	require.NoError(t, fresh.Validate())
}

func TestCloneIsDeep(t *testing.T) {
	rec := validRecord()
	clone := rec.Clone()
	clone.OutcomeCounts["吉"] = 100
	require.Equal(t, 3, rec.OutcomeCounts["吉"])
}
