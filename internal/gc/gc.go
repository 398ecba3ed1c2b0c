// Package gc computes the set of blocks reachable from live manifests and
// deletes unreachable objects from the local store.
package gc

import (
	"os"

	"shard/internal/manifest"
	"shard/internal/objectstore"
	"shard/internal/shardfs"
)

// Result reports the outcome of a Collect run.
type Result struct {
	BytesFreed  int64
	ObjectCount int
}

// Collect computes live = union of block identities referenced by the
// manifests named in sidecarPaths (the reachable set: one sidecar per
// currently tracked file), then deletes (or, if dryRun, merely totals)
// every stored object not in live. Manifests themselves are never
// deleted, even when none of their blocks remain live, so an old
// manifest can always explain where its blocks went. The live set is
// read in full before any deletion begins, so a sidecar added mid-scan is
// never made dangling by this run.
func Collect(store *objectstore.Store, sidecarPaths []string, dryRun bool) (Result, error) {
	live, err := liveBlockSet(sidecarPaths)
	if err != nil {
		return Result{}, err
	}

	objectIDs, err := store.ListObjects()
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, id := range objectIDs {
		if _, ok := live[id]; ok {
			continue
		}
		size, err := store.ObjectSize(id)
		if err != nil {
			if shardfs.Is(err, shardfs.KindNotFound) {
				continue // raced with a concurrent deletion; nothing to free
			}
			return Result{}, err
		}
		result.BytesFreed += size
		result.ObjectCount++
		if !dryRun {
			if err := store.DeleteObject(id); err != nil {
				return Result{}, err
			}
		}
	}
	return result, nil
}

func liveBlockSet(sidecarPaths []string) (map[string]struct{}, error) {
	live := map[string]struct{}{}

	for _, path := range sidecarPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, shardfs.IOError("read manifest sidecar "+path, err)
		}
		m, err := manifest.Parse(data)
		if err != nil {
			return nil, err
		}
		addLive(live, m)
	}

	return live, nil
}

func addLive(live map[string]struct{}, m *manifest.Manifest) {
	for _, b := range m.Blocks {
		live[b.Hash] = struct{}{}
	}
}
