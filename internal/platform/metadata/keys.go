package metadata

// --- SQLite Keys ---
// 这些键用于 metadata 表的 key 列。
const (
	// LastSnapshotTimeKey 存储上一次成功快照的RFC3339时间戳。
	LastSnapshotTimeKey = "last_snapshot_time"

	// SnapshotTotalDrawsKey 存储截至上一次成功快照时的全站累计抽签次数。
	SnapshotTotalDrawsKey = "snapshot_total_draws"
)

// --- Redis Keys ---
const (
	// RedisTotalDrawsKey 是一个Redis String计数器，存储实时的全站累计抽签次数。
	RedisTotalDrawsKey = "meta:total_draws"
)
