package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/CtrlC703/himamikuji-bot/internal/fortune"
	"github.com/CtrlC703/himamikuji-bot/internal/record"
)

// ExportCSV 把权威存储中的全部记录导出为一份CSV表格镜像。
// 镜像永远由权威存储喂数据，绝不会被读回。返回导出的记录数。
func ExportCSV(ctx context.Context, store record.BatchStore, table *fortune.Table, path string) (int, error) {
	records, err := store.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("无法读取全部用户记录: %w", err)
	}

	// 按用户标识排序，让两次导出的行序稳定可比
	sort.Slice(records, func(i, j int) bool {
		return records[i].UserID < records[j].UserID
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("无法创建导出目录 %s: %w", dir, err)
	}

	// 与记录文件一样采用临时文件加重命名，避免留下半写的镜像
	tmp, err := os.CreateTemp(dir, ".export-*.csv")
	if err != nil {
		return 0, fmt.Errorf("无法创建临时导出文件: %w", err)
	}
	tmpPath := tmp.Name()

	writer := csv.NewWriter(tmp)
	writeErr := writer.Write(HeaderRow(table))
	for i := range records {
		if writeErr != nil {
			break
		}
		writeErr = writer.Write(RowForRecord(table, &records[i]))
	}
	writer.Flush()
	if writeErr == nil {
		writeErr = writer.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("无法写入导出文件: %w", writeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("无法替换导出文件 %s: %w", path, err)
	}
	return len(records), nil
}
