package source

import (
	"context"
	"fmt"
	"os"
)

// FileSource reads the feed from disk, for offline runs and fixtures.
type FileSource struct {
	Path string
}

func (s FileSource) FetchFeed(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read feed file: %w", err)
	}
	return data, nil
}

func (s FileSource) String() string {
	return s.Path
}
