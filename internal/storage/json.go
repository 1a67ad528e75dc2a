package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONStorage mirrors raw API objects as individual files under
// <root>/<subreddit>/<entity_type>/<id>.json.
type JSONStorage struct {
	root string
}

// NewJSONStorage creates a JSON mirror rooted at the storage path.
func NewJSONStorage(root string) *JSONStorage {
	return &JSONStorage{root: root}
}

// Save writes one raw object, overwriting any existing file with the same
// id. Directories are created on first use.
func (j *JSONStorage) Save(subreddit, entityType, id string, raw any) error {
	dir := filepath.Join(j.root, subreddit, entityType)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing %s %s: %w", entityType, id, err)
	}

	path := filepath.Join(dir, id+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
