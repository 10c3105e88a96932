package streak

import (
	"fmt"
	"time"

	"github.com/CtrlC703/himamikuji-bot/internal/fortune"
	"github.com/CtrlC703/himamikuji-bot/internal/platform/database"
	"github.com/CtrlC703/himamikuji-bot/internal/record"
)

// globalEngine 是应用运行时使用的抽签引擎，由InitEngine注入。
var globalEngine *Engine

// globalStore 是应用运行时的权威记录存储。
var globalStore record.BatchStore

// PrimeDB 负责初始化streak模块的数据库部分
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&DrawEvent{}); err != nil {
		return fmt.Errorf("无法迁移draw_events表: %w", err)
	}
	fmt.Println("DrawEvent数据库表迁移成功。")
	return nil
}

// InitEngine 构造全局的抽签引擎并注入生产环境的依赖。
func InitEngine(store record.BatchStore, table *fortune.Table, loc *time.Location) {
	globalStore = store
	globalEngine = NewEngine(store, table, loc)
	globalEngine.SetEventSink(NewLiveEventSink())
	fmt.Printf("抽签引擎已初始化 (参照时区: %s)。\n", loc)
}

// GlobalStore 返回应用运行时的权威记录存储，供管理操作使用。
func GlobalStore() record.BatchStore {
	return globalStore
}
