package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore 是以单个JSON文件为后端的记录存储。
// 它与早期版本机器人的 data.json 布局兼容（用户标识为键，记录为值），
// 主要用于本地工具和没有Redis的部署。
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore 构造指向指定路径的文件后端。
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// readAll 读入整个文件。文件不存在按空数据处理。
func (s *FileStore) readAll() (map[string]*UserRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]*UserRecord), nil
		}
		return nil, fmt.Errorf("%w: 无法读取记录文件 %s: %v", ErrStoreUnavailable, s.path, err)
	}
	if len(data) == 0 {
		return make(map[string]*UserRecord), nil
	}

	records := make(map[string]*UserRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: 记录文件 %s 无法解析: %v", ErrInvalidRecordState, s.path, err)
	}
	for id, rec := range records {
		if rec.UserID == "" {
			rec.UserID = id
		}
		if rec.OutcomeCounts == nil {
			rec.OutcomeCounts = make(map[string]int)
		}
	}
	return records, nil
}

// writeAll 原子地写出整个文件：先写临时文件，再重命名覆盖。
// 中途失败不会留下半写的文件。
func (s *FileStore) writeAll(records map[string]*UserRecord) error {
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("无法序列化记录文件: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: 无法创建记录目录 %s: %v", ErrStoreUnavailable, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".records-*.json")
	if err != nil {
		return fmt.Errorf("%w: 无法创建临时记录文件: %v", ErrStoreUnavailable, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: 无法写入临时记录文件: %v", ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: 无法关闭临时记录文件: %v", ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: 无法替换记录文件 %s: %v", ErrStoreUnavailable, s.path, err)
	}
	return nil
}

// Load 按用户标识加载记录。
func (s *FileStore) Load(ctx context.Context, userID string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}
	rec, ok := records[userID]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

// Save 持久化完整的记录。
func (s *FileStore) Save(ctx context.Context, rec *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}
	records[rec.UserID] = rec.Clone()
	return s.writeAll(records)
}

// All 返回全部用户记录。
func (s *FileStore) All(ctx context.Context) ([]UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}
	out := make([]UserRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, *rec.Clone())
	}
	return out, nil
}

// ResetAll 对每个现有记录执行管理重置。
func (s *FileStore) ResetAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return 0, err
	}
	for _, rec := range records {
		rec.ApplyReset()
	}
	if err := s.writeAll(records); err != nil {
		return 0, err
	}
	return len(records), nil
}
