package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/CtrlC703/himamikuji-bot/internal/platform/database"
	"github.com/CtrlC703/himamikuji-bot/internal/platform/metadata"
	"github.com/CtrlC703/himamikuji-bot/internal/record"
	"github.com/CtrlC703/himamikuji-bot/pkg/lifecycle"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const backupInterval = 10 * time.Minute // 定时备份频率

var backupMutex sync.Mutex // 避免意外竞态

// StartBackupScheduler 启动一个后台Goroutine来定期把脏记录快照到SQLite。
// 它接收一个lifecycle.Handle来管理其生命周期。
func StartBackupScheduler(handle *lifecycle.Handle) {
	defer handle.Close() // 确保在退出时通知管理器
	fmt.Println("用户记录备份调度器已启动。")

	for {
		// 使用可中断的休眠来代替ticker，
		// 这样循环可以在收到停机信号时立刻从休眠中唤醒并退出。
		if err := handle.Sleep(backupInterval); err != nil {
			fmt.Println("备份调度器: 休眠被中断，正在关闭...")
			return
		}

		if !database.IsRedisHealthy() {
			fmt.Println("备份调度器: 检测到Redis不可用，跳过本次备份。")
			continue
		}

		if err := CreateConsistentSnapshotInDB(handle.Ctx()); err != nil {
			// 如果错误是由于停机信号导致的，则静默退出
			if err != context.Canceled && err != context.DeadlineExceeded {
				fmt.Printf("备份调度器错误: 执行快照备份失败: %v\n", err)
			}
		}
	}
}

// CreateConsistentSnapshotInDB 执行一次原子的、一致的快照备份：
// 自上次快照以来发生变化的用户记录被批量写入SQLite，同时更新快照元数据。
func CreateConsistentSnapshotInDB(ctx context.Context) (err error) {
	backupMutex.Lock()
	defer backupMutex.Unlock()

	var totalDraws int64
	var dirtyUserIDs []string
	var dirtyRecJSONs []interface{}

	transferred, err := func() (bool, error) {
		// record 模块在两批Redis操作期间保持锁定，确保脏集合和记录内容不撕裂
		record.LockRepository()
		defer record.UnlockRepository()

		dirtySetExists, err := database.RDB.Exists(ctx, record.DirtySetKey).Result()
		if err != nil {
			return false, fmt.Errorf("无法检查Redis中脏集合是否存在: %w", err)
		}
		if dirtySetExists == 0 {
			return false, nil // 自上次快照以来没有任何变化
		}

		// 1. 使用原子事务(TxPipeline)取走脏集合
		pipe := database.RDB.TxPipeline()
		totalDrawsCmd := pipe.Get(ctx, metadata.RedisTotalDrawsKey)
		dirtyUserIDsCmd := pipe.SMembers(ctx, record.DirtySetKey)
		pipe.Rename(ctx, record.DirtySetKey, record.ProcessingDirtySetKey)
		if _, err := pipe.Exec(ctx); err != nil {
			return false, fmt.Errorf("无法从Redis原子地获取快照数据: %w", err)
		}
		// TxPipeline成功后，脏集合已被消费，transferred为true

		totalDraws, _ = totalDrawsCmd.Int64()
		dirtyUserIDs, err = dirtyUserIDsCmd.Result()
		if err != nil {
			return true, fmt.Errorf("获取脏用户列表失败: %w", err)
		}
		if len(dirtyUserIDs) > 0 {
			dirtyRecJSONs, err = database.RDB.HMGet(ctx, record.StatsKey, dirtyUserIDs...).Result()
			if err != nil {
				return true, fmt.Errorf("获取脏用户记录失败: %w", err)
			}
		}

		return true, nil
	}()

	if transferred {
		defer func() {
			if err != nil {
				// 快照失败，把已取走的脏集合合并回去，等待下一轮重试
				pipe := database.RDB.TxPipeline()
				pipe.SUnionStore(ctx, record.DirtySetKey, record.DirtySetKey, record.ProcessingDirtySetKey)
				pipe.Del(ctx, record.ProcessingDirtySetKey)
				pipe.Exec(ctx)
			} else {
				database.RDB.Del(ctx, record.ProcessingDirtySetKey)
			}
		}()
	}

	if err != nil {
		return err
	}
	if !transferred || len(dirtyUserIDs) == 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// 2. 准备将写入SQLite的数据
	recordsToUpsert := make([]record.UserRecord, 0, len(dirtyUserIDs))
	for i, userID := range dirtyUserIDs {
		recJSON, ok := dirtyRecJSONs[i].(string)
		if !ok {
			return fmt.Errorf("备份警告: 在记录哈希表中找不到用户 %s", userID)
		}

		var rec record.UserRecord
		if err := json.Unmarshal([]byte(recJSON), &rec); err != nil {
			return fmt.Errorf("备份警告: 解析用户 %s 的记录失败: %w", userID, err)
		}
		recordsToUpsert = append(recordsToUpsert, rec)
	}

	// 3. 将快照数据持久化到SQLite
	const maxRetry = 3
	for i := 0; i < maxRetry; i++ {
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			// a. 使用 OnConflict 执行 UPSERT：
			// 用户已存在则更新全部可变字段，否则插入新行
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"display_name", "last_draw_date", "last_draw_time", "last_outcome",
					"current_streak", "total_draws", "best_streak", "outcome_counts", "updated_at",
				}),
			}).Create(&recordsToUpsert).Error; err != nil {
				return fmt.Errorf("批量更新用户记录失败: %w", err)
			}

			// b. 更新metadata模块的快照元数据
			if err := metadata.SetLastSnapshotTime(tx, time.Now()); err != nil {
				return fmt.Errorf("更新元数据 LastSnapshotTime 失败: %w", err)
			}
			if err := metadata.SetSnapshotTotalDraws(tx, totalDraws); err != nil {
				return fmt.Errorf("更新元数据 SnapshotTotalDraws 失败: %w", err)
			}

			return nil
		})

		if err == nil || !database.IsRetryableError(err) {
			break
		}
	}
	return err
}
