package record

import (
	"sync"
)

// --- Redis 键名常量 ---

const (
	// StatsKey 是一个 Redis Hash 的键，用于存储每个用户的完整记录。
	// Field: 用户标识
	// Value: UserRecord 结构体的JSON序列化字符串
	StatsKey = "record:stats"

	// RankingKey 是一个 Redis Sorted Set 的键，用于存储当前连续天数排名。
	// Score: 用户的 CurrentStreak
	// Member: 用户标识
	RankingKey = "record:streak_ranking"

	// DirtySetKey 是一个 Redis Set 的键，用于存储自上次快照以来
	// 记录发生变化的用户标识。用于增量备份。
	DirtySetKey = "record:dirty"

	// ProcessingDirtySetKey 是快照过程中暂存脏集合的键，
	// 只在备份逻辑中被使用。
	ProcessingDirtySetKey = "record:dirty:processing"
)

// --- 模块级并发控制 ---

// repoMutex 是一个模块内部的全局读写锁，
// 用于保护快照备份期间对本模块Redis键的整体一致性。
var repoMutex sync.RWMutex

// LockRepository 封装了对模块全局锁的写锁定操作。
func LockRepository() {
	repoMutex.Lock()
}

// UnlockRepository 封装了对模块全局锁的写解锁操作。
func UnlockRepository() {
	repoMutex.Unlock()
}

// RLockRepository 封装了对模块全局锁的读锁定操作。
func RLockRepository() {
	repoMutex.RLock()
}

// RUnlockRepository 封装了对模块全局锁的读解锁操作。
func RUnlockRepository() {
	repoMutex.RUnlock()
}

// --- 每用户互斥 ---

// userLocker 按用户标识提供互斥锁。
// 引擎要求同一用户同一时刻至多有一次在途的抽签，这个保证由调用方
// 通过这里的锁提供，而不是由引擎自己实现（见 streak 包的说明）。
type userLocker struct {
	mu    sync.Mutex
	locks map[string]*userLockEntry
}

type userLockEntry struct {
	mu   sync.Mutex
	refs int
}

var globalUserLocker = userLocker{
	locks: make(map[string]*userLockEntry),
}

// LockUser 获取指定用户的互斥锁。
func LockUser(userID string) {
	globalUserLocker.mu.Lock()
	entry, ok := globalUserLocker.locks[userID]
	if !ok {
		entry = &userLockEntry{}
		globalUserLocker.locks[userID] = entry
	}
	entry.refs++
	globalUserLocker.mu.Unlock()

	entry.mu.Lock()
}

// UnlockUser 释放指定用户的互斥锁。
// 引用计数归零时回收条目，避免锁表随用户数无限增长。
func UnlockUser(userID string) {
	globalUserLocker.mu.Lock()
	entry, ok := globalUserLocker.locks[userID]
	if !ok {
		globalUserLocker.mu.Unlock()
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(globalUserLocker.locks, userID)
	}
	globalUserLocker.mu.Unlock()

	entry.mu.Unlock()
}
