package record

import (
	"context"
	"errors"
)

// 存储层的错误分类。
// 引擎只依赖这三类哨兵错误，不关心具体后端。
var (
	// ErrStoreUnavailable 表示后端无法访问或超时。
	ErrStoreUnavailable = errors.New("记录存储不可用")

	// ErrStoreConflict 表示后端检测到了并发写冲突。
	// 引擎对它的处理与 ErrStoreUnavailable 相同：向上传递，不重试，不掩盖。
	ErrStoreConflict = errors.New("记录存储写入冲突")

	// ErrInvalidRecordState 表示从存储读回的记录未通过自检。
	ErrInvalidRecordState = errors.New("用户记录状态非法")
)

// Store 是每用户记录的抽象持久化契约。
// 文件、表格、关系表等任何后端都可以实现它；同一时刻只有一个后端是权威数据源，
// 其余后端只能作为由它喂数据的镜像，绝不能在引擎内被当作第二个数据源读取。
type Store interface {
	// Load 按用户标识加载记录。
	// 对真正从未出现过的用户返回 (nil, nil)，绝不凭空捏造数据。
	Load(ctx context.Context, userID string) (*UserRecord, error)

	// Save 持久化完整的记录。
	// 对相同内容的重复保存必须是幂等的。
	Save(ctx context.Context, rec *UserRecord) error
}

// BatchStore 是权威后端额外提供的批量能力，供管理操作和镜像导出使用。
// 它不属于引擎依赖的核心契约。
type BatchStore interface {
	Store

	// All 返回全部用户记录。
	All(ctx context.Context) ([]UserRecord, error)

	// ResetAll 对每个现有记录执行管理重置（见 UserRecord.ApplyReset）。
	// 返回被重置的记录数。
	ResetAll(ctx context.Context) (int, error)
}
