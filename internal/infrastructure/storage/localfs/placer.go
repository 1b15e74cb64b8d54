package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Placer copies source files into the organized tree. The copy keeps the
// source mode and modification time; an existing target is replaced
// atomically via rename.
type Placer struct {
	dirMode os.FileMode
}

func NewPlacer() *Placer {
	return &Placer{dirMode: 0o755}
}

func (p *Placer) Place(ctx context.Context, sourcePath, destDir, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(destDir, p.dirMode); err != nil {
		return "", fmt.Errorf("create destination dir: %w", err)
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}

	target := filepath.Join(destDir, filename)
	tmp, err := os.CreateTemp(destDir, "."+filename+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("copy file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("chmod copy: %w", err)
	}
	if err := os.Chtimes(tmpName, info.ModTime(), info.ModTime()); err != nil {
		return "", fmt.Errorf("set copy times: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return "", fmt.Errorf("move copy into place: %w", err)
	}
	return target, nil
}
