package sheet

import (
	"strconv"
	"testing"

	"github.com/CtrlC703/himamikuji-bot/internal/fortune"
	"github.com/CtrlC703/himamikuji-bot/internal/record"
	"github.com/stretchr/testify/require"
)

func TestHeaderRowLayout(t *testing.T) {
	table := fortune.DefaultTable()

	header := HeaderRow(table)
	require.Len(t, header, NumColumns(table))
	require.Len(t, header, 19) // 8个固定列 + 11种签

	require.Equal(t, []string{
		"user_id", "display_name", "date", "time", "result", "streak", "total", "best",
	}, header[:8])
	// 计数列的顺序必须与签表一致
	require.Equal(t, table.IDs(), header[8:])
}

func TestRowForRecord(t *testing.T) {
	table := fortune.DefaultTable()
	rec := &record.UserRecord{
		UserID:        "42",
		DisplayName:   "ひま",
		LastDrawDate:  "2024-01-10",
		LastDrawTime:  "09:30",
		LastOutcome:   "大吉",
		CurrentStreak: 3,
		TotalDraws:    5,
		BestStreak:    4,
		OutcomeCounts: map[string]int{"大吉": 2, "吉": 3},
	}

	row := RowForRecord(table, rec)
	require.Len(t, row, NumColumns(table))
	require.Equal(t, []string{
		"42", "ひま", "2024-01-10", "09:30", "大吉", "3", "5", "4",
	}, row[:8])

	// 抽中过的签落在对应计数列，其余列为0
	counts := row[8:]
	sum := 0
	for i, id := range table.IDs() {
		if id == "大吉" {
			require.Equal(t, "2", counts[i])
		}
		if id == "吉" {
			require.Equal(t, "3", counts[i])
		}
		n, err := strconv.Atoi(counts[i])
		require.NoError(t, err)
		sum += n
	}
	require.Equal(t, rec.TotalDraws, sum)
}

func TestRowForRecordNeverDrawn(t *testing.T) {
	table := fortune.DefaultTable()
	rec := record.NewUserRecord("42", "")

	row := RowForRecord(table, rec)
	require.Equal(t, []string{"42", "", "", "", "", "0", "0", "0"}, row[:8])
	for _, cell := range row[8:] {
		require.Equal(t, "0", cell)
	}
}
