package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type localTransport struct{}

// NewLocal writes reports to the local filesystem.
func NewLocal() Transport {
	return localTransport{}
}

func (localTransport) Name() string { return "local" }

func (localTransport) Mkdir(_ context.Context, dir string) error {
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory: %w", dir, ErrInvalidDestination)
		}
		return fmt.Errorf("%s: %w", dir, ErrDirectoryExists)
	}
	return os.MkdirAll(dir, 0o755)
}

func (localTransport) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(filepath.FromSlash(name), data, 0o644)
}

func (localTransport) Close() error { return nil }
