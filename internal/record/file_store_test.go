package record

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "data.json"))
}

func TestFileStoreLoadUnseenUser(t *testing.T) {
	store := newTestFileStore(t)

	rec, err := store.Load(context.Background(), "42")
	require.NoError(t, err)
	require.Nil(t, rec) // 未知用户返回absent，不凭空捏造数据
}

func TestFileStoreSaveAndLoad(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	rec := validRecord()
	require.NoError(t, store.Save(ctx, rec))

	loaded, err := store.Load(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, rec, loaded)

	// 相同内容的重复保存是幂等的
	require.NoError(t, store.Save(ctx, rec))
	again, err := store.Load(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, loaded, again)
}

func TestFileStoreLoadReturnsCopy(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, validRecord()))
	first, err := store.Load(ctx, "42")
	require.NoError(t, err)
	first.OutcomeCounts["吉"] = 100

	second, err := store.Load(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, 3, second.OutcomeCounts["吉"])
}

func TestFileStoreAll(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	a := validRecord()
	b := NewUserRecord("7", "ふたり目")
	require.NoError(t, store.Save(ctx, a))
	require.NoError(t, store.Save(ctx, b))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestFileStoreResetAll(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, validRecord()))
	count, err := store.ResetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	rec, err := store.Load(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, 0, rec.CurrentStreak)
	require.Equal(t, ResetSentinelDate, rec.LastDrawDate)
	require.Equal(t, 5, rec.TotalDraws)
}

func TestFileStoreCorruptFileFailsClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	store := NewFileStore(path)

	_, err := store.Load(context.Background(), "42")
	require.ErrorIs(t, err, ErrInvalidRecordState)
}
