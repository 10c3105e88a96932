package sheet

import (
	"strconv"

	"github.com/CtrlC703/himamikuji-bot/internal/fortune"
	"github.com/CtrlC703/himamikuji-bot/internal/record"
)

// 表格镜像采用固定的列布局（A列到S列）：
// 用户标识、显示名、日期、时刻、最近的签、连续天数、累计次数、最高连续天数，
// 之后是每种签一列的抽中次数，顺序与签表一致。
// 列顺序是镜像后端的对外约定，核心逻辑不依赖它。
const fixedColumnCount = 8

// NumColumns 返回一行的总列数。
func NumColumns(table *fortune.Table) int {
	return fixedColumnCount + len(table.IDs())
}

// HeaderRow 返回表头行。
func HeaderRow(table *fortune.Table) []string {
	row := make([]string, 0, NumColumns(table))
	row = append(row, "user_id", "display_name", "date", "time", "result", "streak", "total", "best")
	row = append(row, table.IDs()...)
	return row
}

// RowForRecord 把一条用户记录编码为一行。
// 任何表格类后端（CSV、电子表格客户端）都可以直接消费这一行。
func RowForRecord(table *fortune.Table, rec *record.UserRecord) []string {
	row := make([]string, 0, NumColumns(table))
	row = append(row,
		rec.UserID,
		rec.DisplayName,
		rec.LastDrawDate,
		rec.LastDrawTime,
		rec.LastOutcome,
		strconv.Itoa(rec.CurrentStreak),
		strconv.Itoa(rec.TotalDraws),
		strconv.Itoa(rec.BestStreak),
	)
	for _, id := range table.IDs() {
		row = append(row, strconv.Itoa(rec.OutcomeCounts[id]))
	}
	return row
}
