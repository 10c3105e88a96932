package metadata

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Generic Accessors ---

// GetValue retrieves a value for a given key from the metadata table.
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// If the key doesn't exist, return an empty string, which is a valid default.
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue creates or updates a value for a given key within a transaction.
func SetValue(db *gorm.DB, key, value string) error {
	// Use GORM's OnConflict clause for an efficient and atomic "upsert" operation.
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// --- Specific Helpers for Type Conversion ---

// GetLastSnapshotTime 读取并解析上一次成功快照的时间。
// 从未快照过时返回零值时间。
func GetLastSnapshotTime(db *gorm.DB) (time.Time, error) {
	valueStr, err := GetValue(db, LastSnapshotTimeKey)
	if err != nil {
		return time.Time{}, err
	}
	if valueStr == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析元数据 '%s' 的值: %w", LastSnapshotTimeKey, err)
	}
	return t, nil
}

// SetLastSnapshotTime 格式化并写入上一次成功快照的时间。
func SetLastSnapshotTime(db *gorm.DB, t time.Time) error {
	return SetValue(db, LastSnapshotTimeKey, t.Format(time.RFC3339))
}

// GetSnapshotTotalDraws 读取并解析快照时的全站累计抽签次数。
func GetSnapshotTotalDraws(db *gorm.DB) (int64, error) {
	valueStr, err := GetValue(db, SnapshotTotalDrawsKey)
	if err != nil {
		return 0, err
	}
	if valueStr == "" {
		return 0, nil
	}
	count, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("无法解析元数据 '%s' 的值: %w", SnapshotTotalDrawsKey, err)
	}
	return count, nil
}

// SetSnapshotTotalDraws 格式化并写入快照时的全站累计抽签次数。
func SetSnapshotTotalDraws(db *gorm.DB, count int64) error {
	return SetValue(db, SnapshotTotalDrawsKey, strconv.FormatInt(count, 10))
}
