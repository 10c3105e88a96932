package startup

import (
	"context"
	"fmt"

	"github.com/CtrlC703/himamikuji-bot/internal/platform/backup"
	"github.com/CtrlC703/himamikuji-bot/internal/platform/metadata"
	"github.com/CtrlC703/himamikuji-bot/internal/record"
	"github.com/CtrlC703/himamikuji-bot/internal/streak"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := metadata.PrimeCachedDB(); err != nil {
		return err
	}
	if err := record.PrimeCachedDB(); err != nil {
		return err
	}
	if err := streak.PrimeDB(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 是一个专门用于在运行时热重建Redis缓存的函数。
// Redis重启后，SQLite中的最后一次快照是恢复的依据。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")

	if err := metadata.WarmupCache(); err != nil {
		return err
	}

	err := func() error {
		record.LockRepository()
		defer record.UnlockRepository()
		return record.WarmupCache()
	}()
	if err != nil {
		return err
	}

	// 触发一次新的快照
	fmt.Println("缓存热重建完成，正在触发一次新的数据快照...")
	if err := backup.CreateConsistentSnapshotInDB(context.Background()); err != nil {
		fmt.Printf("警告: 缓存热重建后的快照创建失败: %v\n", err)
	}

	return nil
}
