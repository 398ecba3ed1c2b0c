// Package diff compares a tracked file's current on-disk chunking against
// its last committed manifest, reporting the block sets that changed.
package diff

import (
	"os"

	"shard/internal/chunker"
	"shard/internal/manifest"
	"shard/internal/shardfs"
)

// Report summarizes how a file's block set has moved since its last
// commit.
type Report struct {
	OldBlocks int
	NewBlocks int
	Unchanged int
	Added     int
	Removed   int
	ChangePct float64
}

// Compute re-chunks path and compares the result against the manifest
// sidecar at sidecarPath, block hash by block hash.
func Compute(path, sidecarPath string) (Report, error) {
	sidecarBytes, err := os.ReadFile(sidecarPath)
	if err != nil {
		return Report{}, shardfs.IOError("read manifest sidecar", err)
	}
	m, err := manifest.Parse(sidecarBytes)
	if err != nil {
		return Report{}, err
	}

	records, err := chunker.ChunkFile(path)
	if err != nil {
		return Report{}, err
	}

	oldHashes := make(map[string]struct{}, len(m.Blocks))
	for _, b := range m.Blocks {
		oldHashes[b.Hash] = struct{}{}
	}
	newHashes := make(map[string]struct{}, len(records))
	for _, r := range records {
		newHashes[r.Identity] = struct{}{}
	}

	var common, added, removed int
	for h := range newHashes {
		if _, ok := oldHashes[h]; ok {
			common++
		} else {
			added++
		}
	}
	for h := range oldHashes {
		if _, ok := newHashes[h]; !ok {
			removed++
		}
	}

	r := Report{
		OldBlocks: len(m.Blocks),
		NewBlocks: len(records),
		Unchanged: common,
		Added:     added,
		Removed:   removed,
	}
	if r.NewBlocks > 0 {
		r.ChangePct = float64(added) / float64(r.NewBlocks) * 100
	}
	return r, nil
}
