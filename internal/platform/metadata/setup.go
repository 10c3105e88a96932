package metadata

import (
	"fmt"
	"strconv"

	"github.com/CtrlC703/himamikuji-bot/internal/platform/database"
)

// migrateDB 负责自动迁移metadata表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Metadata{}); err != nil {
		return fmt.Errorf("无法迁移metadata表: %w", err)
	}
	fmt.Println("Metadata数据库表迁移成功。")
	return nil
}

// WarmupCache 将快照元数据预热到Redis的实时计数器中
func WarmupCache() error {
	totalDraws, err := GetSnapshotTotalDraws(database.DB)
	if err != nil {
		return fmt.Errorf("无法读取快照累计抽签次数: %w", err)
	}

	if err := database.RDB.Set(database.Ctx, RedisTotalDrawsKey, strconv.FormatInt(totalDraws, 10), 0).Err(); err != nil {
		return fmt.Errorf("无法预热累计抽签计数器到Redis: %w", err)
	}
	return nil
}

// PrimeCachedDB 是metadata模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
