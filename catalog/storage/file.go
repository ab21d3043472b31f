package storage

import (
	"context"
	"fmt"
	"os"
)

type FileCatalogState struct {
	FilePath string
}

func NewFileCatalogState(filePath string) *FileCatalogState {
	return &FileCatalogState{FilePath: filePath}
}

func (s *FileCatalogState) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", s.FilePath, err)
	}
	return data, nil
}
