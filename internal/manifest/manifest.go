// Package manifest builds and serializes the ordered block list that
// reconstructs one tracked file, and computes its content-addressed
// identity.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"shard/internal/chunker"
	"shard/internal/shardfs"
)

const ManifestVersion = 1

// BlockMeta is a manifest's view of a block: identity and size, with the
// compressed payload stripped.
type BlockMeta struct {
	Hash string `json:"hash"`
	Size int    `json:"size"`
}

// Manifest is the reconstruction recipe for one tracked file. Field order
// matches the canonical JSON serialization mandated by the wire contract
// (manifest_version, file_path, blocks, meta) and must not be reordered.
type Manifest struct {
	ManifestVersion int               `json:"manifest_version"`
	FilePath        string            `json:"file_path"`
	Blocks          []BlockMeta       `json:"blocks"`
	Meta            map[string]string `json:"meta"`
}

// BlocksFromRecords strips StoredBytes from chunker output, keeping only
// the identity/size pair a manifest records.
func BlocksFromRecords(records []chunker.BlockRecord) []BlockMeta {
	blocks := make([]BlockMeta, len(records))
	for i, r := range records {
		blocks[i] = BlockMeta{Hash: r.Identity, Size: r.UncompressedSize}
	}
	return blocks
}

// Build constructs the manifest object, serializes it canonically and
// derives its identity. Build is a pure function of its inputs: identical
// inputs always produce byte-identical serialization and identity.
func Build(filePath string, blocks []BlockMeta, meta map[string]string) (id string, serialized []byte, m *Manifest, err error) {
	if meta == nil {
		meta = map[string]string{}
	}
	if blocks == nil {
		blocks = []BlockMeta{}
	}
	m = &Manifest{
		ManifestVersion: ManifestVersion,
		FilePath:        filePath,
		Blocks:          blocks,
		Meta:            meta,
	}

	serialized, err = Canonicalize(m)
	if err != nil {
		return "", nil, nil, err
	}
	id = Identity(serialized)
	return id, serialized, m, nil
}

// Canonicalize produces the normative UTF-8 JSON byte form over which
// identity is computed: stable key ordering (as declared in Manifest),
// no trailing whitespace. encoding/json already emits struct fields in
// declaration order with no indentation when Marshal (not MarshalIndent)
// is used, which is exactly this contract.
func Canonicalize(m *Manifest) ([]byte, error) {
	if m.Meta == nil {
		m.Meta = map[string]string{}
	}
	if m.Blocks == nil {
		m.Blocks = []BlockMeta{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, shardfs.CodecError("marshal manifest", err)
	}
	return data, nil
}

// Identity is the lowercase-hex SHA-256 of a manifest's canonical bytes.
func Identity(serialized []byte) string {
	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:])
}

// Parse decodes a serialized manifest sidecar.
func Parse(serialized []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(serialized, &m); err != nil {
		return nil, shardfs.CodecError("parse manifest", err)
	}
	return &m, nil
}

// RecomputeIdentity recomputes a manifest's identity straight from its
// sidecar bytes; callers must never trust an externally supplied identity
// claim instead of this.
func RecomputeIdentity(serialized []byte) string {
	return Identity(serialized)
}
