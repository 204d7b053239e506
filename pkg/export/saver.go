package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/image-framer/internal/utils"
)

// Saver hands an encoded output to its destination.
type Saver interface {
	Save(ctx context.Context, name string, data []byte) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, name string, data []byte) error

func (f SaverFunc) Save(ctx context.Context, name string, data []byte) error {
	return f(ctx, name, data)
}

// DirSaver writes outputs into a directory. Each file is written to a
// temporary file next to its target and renamed into place, so readers never
// observe a partially written output. Existing files are replaced.
type DirSaver struct {
	Dir string
}

// NewDirSaver creates a DirSaver for dir; an empty dir means the working directory
func NewDirSaver(dir string) *DirSaver {
	if dir == "" {
		dir = "."
	}
	return &DirSaver{Dir: dir}
}

// Path returns the destination path for name
func (s *DirSaver) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

func (s *DirSaver) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid output name %q", name)
	}
	if err := utils.EnsureDir(s.Dir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("failed to chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		cleanup()
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return nil
}
