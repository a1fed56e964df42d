package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrFileTooLarge = errors.New("file exceeds size limit")

// FileStore 把上傳的語音檔存到本機目錄
type FileStore struct {
	dir     string
	maxSize int64
}

// NewFileStore 建立目錄並回傳 FileStore，maxSizeMB <= 0 表示不限制
func NewFileStore(dir string, maxSizeMB int) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{dir: dir, maxSize: int64(maxSizeMB) << 20}, nil
}

// Save 寫入檔案並回傳相對路徑，例如 audio/<uuid>.wav
func (s *FileStore) Save(category, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".bin"
	}
	rel := filepath.Join(category, uuid.NewString()+ext)
	full := filepath.Join(s.dir, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create category dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	n, err := io.Copy(f, src)
	if err != nil {
		os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	}
	if s.maxSize > 0 && n > s.maxSize {
		os.Remove(full)
		return "", ErrFileTooLarge
	}

	return filepath.ToSlash(rel), nil
}

// Dir 上傳根目錄，給靜態檔案路由使用
func (s *FileStore) Dir() string {
	return s.dir
}

// Remove 刪除 Save 回傳的相對路徑，路徑不能跳出上傳目錄
func (s *FileStore) Remove(rel string) error {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("invalid file path %q", rel)
	}
	return os.Remove(filepath.Join(s.dir, clean))
}
