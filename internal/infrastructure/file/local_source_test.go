package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mohammadpnp/candidate-import/internal/infrastructure/file"
)

func TestLocalSourceReadAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cands.csv"), []byte("FullName,Email\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	src := file.NewLocalSource(dir, 1024)
	data, name, err := src.ReadAll(context.Background(), "cands.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "cands.csv" || string(data) != "FullName,Email\n" {
		t.Fatalf("unexpected result name=%q data=%q", name, data)
	}

	abs, _, err := src.ReadAll(context.Background(), filepath.Join(dir, "cands.csv"))
	if err != nil || len(abs) != len(data) {
		t.Fatalf("absolute path read failed: %v", err)
	}
}

func TestLocalSourceLimits(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "big.csv"), make([]byte, 64), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, _, err := file.NewLocalSource(dir, 32).ReadAll(context.Background(), "big.csv")
	if !errors.Is(err, file.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}

	if _, _, err := file.NewLocalSource(dir, 0).ReadAll(context.Background(), "missing.csv"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
