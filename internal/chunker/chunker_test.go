package chunker

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "input.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestChunkFileRoundTrip(t *testing.T) {
	data := make([]byte, 10*1024*1024+37)
	_, err := rand.Read(data)
	require.NoError(t, err)

	path := writeTempFile(t, data)
	records, err := ChunkFile(path)
	require.NoError(t, err)

	var rebuilt []byte
	for _, rec := range records {
		plain, err := DecompressVerified(rec.Identity, rec.StoredBytes)
		require.NoError(t, err)
		rebuilt = append(rebuilt, plain...)
	}
	assert.Equal(t, data, rebuilt)
}

func TestChunkFileIdentityStable(t *testing.T) {
	data := make([]byte, 1<<20)
	_, err := rand.Read(data)
	require.NoError(t, err)
	path := writeTempFile(t, data)

	a, err := ChunkFile(path)
	require.NoError(t, err)
	b, err := ChunkFile(path)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Identity, b[i].Identity)
	}
}

func TestChunkFileBlockSizeBoundary(t *testing.T) {
	exact := make([]byte, BlockSize)
	path := writeTempFile(t, exact)
	records, err := ChunkFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, BlockSize, records[0].UncompressedSize)

	plusOne := make([]byte, BlockSize+1)
	path2 := writeTempFile(t, plusOne)
	records2, err := ChunkFile(path2)
	require.NoError(t, err)
	require.Len(t, records2, 2)
	assert.Equal(t, BlockSize, records2[0].UncompressedSize)
	assert.Equal(t, 1, records2[1].UncompressedSize)
}

func TestChunkFileDedupWithinFile(t *testing.T) {
	half := make([]byte, BlockSize)
	_, err := rand.Read(half)
	require.NoError(t, err)
	data := append(append([]byte{}, half...), half...)
	path := writeTempFile(t, data)

	records, err := ChunkFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, records[0].Identity, records[1].Identity)
}

func TestDecompressVerifiedRejectsCorruption(t *testing.T) {
	data := []byte("hello shard")
	path := writeTempFile(t, data)
	records, err := ChunkFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = DecompressVerified("0000000000000000000000000000000000000000000000000000000000000000", records[0].StoredBytes)
	assert.Error(t, err)
}
