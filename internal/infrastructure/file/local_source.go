package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var ErrFileTooLarge = errors.New("file exceeds upload size limit")

// LocalSource reads candidate files from disk for operator previews.
type LocalSource struct {
	BaseDir string
	MaxSize int64
}

func NewLocalSource(baseDir string, maxSize int64) *LocalSource {
	if baseDir == "" {
		baseDir = "."
	}
	return &LocalSource{BaseDir: baseDir, MaxSize: maxSize}
}

func (s *LocalSource) resolve(sourcePath string) string {
	if filepath.IsAbs(sourcePath) {
		return sourcePath
	}
	return filepath.Join(s.BaseDir, sourcePath)
}

func (s *LocalSource) Open(ctx context.Context, sourcePath string) (io.ReadCloser, error) {
	_ = ctx

	path := s.resolve(sourcePath)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", path, err)
	}
	return file, nil
}

// ReadAll returns the file contents and its base name. Files larger than
// MaxSize are rejected when MaxSize is positive.
func (s *LocalSource) ReadAll(ctx context.Context, sourcePath string) ([]byte, string, error) {
	rc, err := s.Open(ctx, sourcePath)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()

	var r io.Reader = rc
	if s.MaxSize > 0 {
		r = io.LimitReader(rc, s.MaxSize+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read file %s: %w", sourcePath, err)
	}
	if s.MaxSize > 0 && int64(len(data)) > s.MaxSize {
		return nil, "", fmt.Errorf("%w: %s", ErrFileTooLarge, sourcePath)
	}
	return data, filepath.Base(sourcePath), nil
}
