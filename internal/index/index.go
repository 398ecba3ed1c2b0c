// Package index tracks which workspace-relative files a repository has
// asked Shard to follow. It is the workspace-modification collaborator the
// core reads but never writes on its own: track adds a path, commit reads
// the set.
package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"shard/internal/shardfs"
)

const fileName = "index.json"

// Index is the set of tracked workspace-relative paths, persisted as a
// JSON array under the repository's .shard directory.
type Index struct {
	path string
}

// Open returns an Index backed by <shardDir>/index.json. The file is
// created on first Add if it doesn't already exist.
func Open(shardDir string) *Index {
	return &Index{path: filepath.Join(shardDir, fileName)}
}

// Load returns the current tracked set. A missing index file is an empty
// set, not an error.
func (ix *Index) Load() ([]string, error) {
	data, err := os.ReadFile(ix.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, shardfs.IOError("read index", err)
	}
	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, shardfs.CodecError("decode index", err)
	}
	return paths, nil
}

// Add tracks path, deduplicating against the existing set.
func (ix *Index) Add(path string) error {
	paths, err := ix.Load()
	if err != nil {
		return err
	}
	for _, p := range paths {
		if p == path {
			return nil
		}
	}
	paths = append(paths, path)
	sort.Strings(paths)
	return ix.save(paths)
}

func (ix *Index) save(paths []string) error {
	data, err := json.MarshalIndent(paths, "", "  ")
	if err != nil {
		return shardfs.CodecError("encode index", err)
	}
	if err := os.MkdirAll(filepath.Dir(ix.path), 0o755); err != nil {
		return shardfs.IOError("create shard dir", err)
	}
	if err := os.WriteFile(ix.path, data, 0o644); err != nil {
		return shardfs.IOError("write index", err)
	}
	return nil
}
