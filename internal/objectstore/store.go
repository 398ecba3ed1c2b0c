// Package objectstore implements the local, filesystem-backed content-addressed
// store rooted at .shard/. Writes go to a temp file first and are renamed into
// place, so a write is atomic and safe to retry after a crash mid-write.
package objectstore

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"shard/internal/shardfs"
)

const (
	objectsDirName   = "objects"
	manifestsDirName = "manifests"
	repoDirName      = ".shard"
)

// Store is the local object store rooted at a repository directory
// (normally the workspace root). It owns the exclusive contents of its
// .shard/ tree.
type Store struct {
	root string // <repo>/.shard
}

// Open returns a Store rooted at <repoRoot>/.shard without creating
// anything; call Init to create the tree.
func Open(repoRoot string) *Store {
	return &Store{root: filepath.Join(repoRoot, repoDirName)}
}

// Root returns the .shard directory path.
func (s *Store) Root() string { return s.root }

// Init creates .shard/, .shard/objects/, .shard/manifests/ if absent. Safe
// to call repeatedly.
func (s *Store) Init() error {
	for _, dir := range []string{s.root, s.objectsDir(), s.manifestsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return shardfs.IOError("create store directory "+dir, err)
		}
	}
	return nil
}

func (s *Store) objectsDir() string   { return filepath.Join(s.root, objectsDirName) }
func (s *Store) manifestsDir() string { return filepath.Join(s.root, manifestsDirName) }

// fanoutPath returns the two-character fan-out path for an identity:
// <ns>/<aa>/<bbcc...>.
func fanoutPath(nsDir, id string) (dir, path string) {
	if len(id) < 3 {
		dir = filepath.Join(nsDir, id)
		return dir, filepath.Join(dir, id)
	}
	dir = filepath.Join(nsDir, id[:2])
	return dir, filepath.Join(dir, id[2:])
}

// WriteObject persists a compressed block under its identity. Idempotent:
// re-writing the same identity is a no-op and never fails.
func (s *Store) WriteObject(id string, data []byte) error {
	return s.writeIdempotent(s.objectsDir(), id, data)
}

// WriteManifest persists a serialized manifest under its identity.
func (s *Store) WriteManifest(id string, data []byte) error {
	return s.writeIdempotent(s.manifestsDir(), id, data)
}

func (s *Store) writeIdempotent(nsDir, id string, data []byte) error {
	dir, finalPath := fanoutPath(nsDir, id)
	if _, err := os.Stat(finalPath); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return shardfs.IOError("create fan-out directory", err)
	}

	tmpPath := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return shardfs.IOError("write temp object", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		if _, statErr := os.Stat(finalPath); statErr == nil {
			// another writer won the race; idempotent by identity.
			return nil
		}
		return shardfs.IOError("rename temp object into place", err)
	}
	return nil
}

// ReadObject returns the compressed bytes stored under id.
func (s *Store) ReadObject(id string) ([]byte, error) {
	return s.read(s.objectsDir(), id)
}

// ReadManifest returns the serialized manifest bytes stored under id.
func (s *Store) ReadManifest(id string) ([]byte, error) {
	return s.read(s.manifestsDir(), id)
}

func (s *Store) read(nsDir, id string) ([]byte, error) {
	_, path := fanoutPath(nsDir, id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, shardfs.NotFound(id)
		}
		return nil, shardfs.IOError("read object "+id, err)
	}
	return data, nil
}

// HasObject reports whether a block with the given identity is present.
func (s *Store) HasObject(id string) bool {
	_, path := fanoutPath(s.objectsDir(), id)
	_, err := os.Stat(path)
	return err == nil
}

// HasManifest reports whether a manifest with the given identity is present.
func (s *Store) HasManifest(id string) bool {
	_, path := fanoutPath(s.manifestsDir(), id)
	_, err := os.Stat(path)
	return err == nil
}

// DeleteObject unconditionally removes a block. Used only by the garbage
// collector.
func (s *Store) DeleteObject(id string) error {
	_, path := fanoutPath(s.objectsDir(), id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return shardfs.IOError("delete object "+id, err)
	}
	return nil
}

// ListObjects returns every block identity present in the store.
func (s *Store) ListObjects() ([]string, error) {
	return listFanout(s.objectsDir())
}

// ListManifests returns every manifest identity present in the store.
func (s *Store) ListManifests() ([]string, error) {
	return listFanout(s.manifestsDir())
}

func listFanout(nsDir string) ([]string, error) {
	var ids []string
	prefixDirs, err := os.ReadDir(nsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return ids, nil
		}
		return nil, shardfs.IOError("list "+nsDir, err)
	}
	for _, pd := range prefixDirs {
		if !pd.IsDir() {
			continue
		}
		prefix := pd.Name()
		entries, err := os.ReadDir(filepath.Join(nsDir, prefix))
		if err != nil {
			return nil, shardfs.IOError("list fan-out directory", err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || filepath.Ext(name) == ".tmp" {
				continue
			}
			ids = append(ids, prefix+name)
		}
	}
	return ids, nil
}

// ObjectSize stats the on-disk (compressed) size of a block without
// reading its contents; used by the garbage collector to total freed bytes.
func (s *Store) ObjectSize(id string) (int64, error) {
	_, path := fanoutPath(s.objectsDir(), id)
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, shardfs.NotFound(id)
		}
		return 0, shardfs.IOError("stat object "+id, err)
	}
	return fi.Size(), nil
}
