package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileSource reads documents from <dir>/<name>, e.g. the simulator's output directory
type FileSource struct {
	dir string
}

// NewFileSource creates a source rooted at dir
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Fetch reads and decodes one document
func (s *FileSource) Fetch(ctx context.Context, name string) (map[string]interface{}, error) {
	if filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid document name %q", name)
	}

	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("decoding %s: document is not a JSON object", name)
	}
	return doc, nil
}
