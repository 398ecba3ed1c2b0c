package sync

import (
	"context"
	"crypto/sha256"
	"crypto/rand"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shard/internal/chunker"
	"shard/internal/manifest"
	"shard/internal/objectstore"
	"shard/internal/remoteclient"
	"shard/internal/remoteserver"
)

func commit(t *testing.T, store *objectstore.Store, path string, data []byte) (sidecar string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
	records, err := chunker.ChunkFile(path)
	require.NoError(t, err)
	for _, r := range records {
		require.NoError(t, store.WriteObject(r.Identity, r.StoredBytes))
	}
	_, serialized, _, err := manifest.Build(path, manifest.BlocksFromRecords(records), map[string]string{"message": "test"})
	require.NoError(t, err)
	sidecar = path + ".shard.json"
	require.NoError(t, os.WriteFile(sidecar, serialized, 0o644))
	return sidecar
}

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	root := t.TempDir()
	srv, err := remoteserver.New(root)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, root
}

func TestPushThenPullThenCheckoutAcrossHosts(t *testing.T) {
	ts, _ := newTestServer(t)

	hostA := t.TempDir()
	storeA := objectstore.Open(hostA)
	require.NoError(t, storeA.Init())

	data := make([]byte, 5*1024*1024)
	_, err := rand.Read(data)
	require.NoError(t, err)
	filePath := filepath.Join(hostA, "payload.bin")
	sidecar := commit(t, storeA, filePath, data)

	clientA := remoteclient.New(ts.URL)
	orchA := New(storeA, clientA)
	manifestID, err := orchA.Push(context.Background(), sidecar)
	require.NoError(t, err)
	assert.NotEmpty(t, manifestID)

	hostB := t.TempDir()
	storeB := objectstore.Open(hostB)
	require.NoError(t, storeB.Init())
	sidecarB := filepath.Join(hostB, "payload.bin.shard.json")
	sidecarBytes, err := os.ReadFile(sidecar)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(sidecarB, sidecarBytes, 0o644))

	clientB := remoteclient.New(ts.URL)
	orchB := New(storeB, clientB)
	require.NoError(t, orchB.Pull(context.Background(), sidecarB))

	m, err := manifest.Parse(sidecarBytes)
	require.NoError(t, err)
	outputPath := filepath.Join(hostB, m.FilePath)
	_ = outputPath
	// Checkout writes to manifest.FilePath, which is absolute (filePath);
	// redirect by rewriting the sidecar's file_path for host B's copy.
	m.FilePath = filepath.Join(hostB, "restored.bin")
	rewritten, err := manifest.Canonicalize(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(sidecarB, rewritten, 0o644))

	require.NoError(t, orchB.Checkout(sidecarB))

	restored, err := os.ReadFile(m.FilePath)
	require.NoError(t, err)
	assert.Equal(t, sha256.Sum256(data), sha256.Sum256(restored))
}

func TestPushDedupOnSharedBlocks(t *testing.T) {
	ts, serverRoot := newTestServer(t)

	host := t.TempDir()
	store := objectstore.Open(host)
	require.NoError(t, store.Init())

	half := make([]byte, chunker.BlockSize)
	_, err := rand.Read(half)
	require.NoError(t, err)
	data := append(append([]byte{}, half...), half...)
	filePath := filepath.Join(host, "dup.bin")
	sidecar := commit(t, store, filePath, data)

	client := remoteclient.New(ts.URL)
	orch := New(store, client)
	_, err = orch.Push(context.Background(), sidecar)
	require.NoError(t, err)

	serverStore := objectstore.Open(serverRoot)
	objects, err := serverStore.ListObjects()
	require.NoError(t, err)
	assert.Len(t, objects, 1)
}

func TestPushFailsWhenLocalBlockMissing(t *testing.T) {
	ts, _ := newTestServer(t)

	host := t.TempDir()
	store := objectstore.Open(host)
	require.NoError(t, store.Init())

	filePath := filepath.Join(host, "incomplete.bin")
	require.NoError(t, os.WriteFile(filePath, []byte("some content"), 0o644))
	records, err := chunker.ChunkFile(filePath)
	require.NoError(t, err)
	// Deliberately skip writing the block to the local store.
	_, serialized, _, err := manifest.Build(filePath, manifest.BlocksFromRecords(records), nil)
	require.NoError(t, err)
	sidecar := filePath + ".shard.json"
	require.NoError(t, os.WriteFile(sidecar, serialized, 0o644))

	client := remoteclient.New(ts.URL)
	orch := New(store, client)
	_, err = orch.Push(context.Background(), sidecar)
	require.Error(t, err)
}

func TestCheckoutFailsWhenBlockMissingLocally(t *testing.T) {
	host := t.TempDir()
	store := objectstore.Open(host)
	require.NoError(t, store.Init())

	filePath := filepath.Join(host, "gone.bin")
	data := []byte("reconstruct me")
	require.NoError(t, os.WriteFile(filePath, data, 0o644))
	records, err := chunker.ChunkFile(filePath)
	require.NoError(t, err)
	_, serialized, _, err := manifest.Build(filePath, manifest.BlocksFromRecords(records), nil)
	require.NoError(t, err)
	sidecar := filePath + ".shard.json"
	require.NoError(t, os.WriteFile(sidecar, serialized, 0o644))

	orch := New(store, remoteclient.New("http://unused.invalid"))
	err = orch.Checkout(sidecar)
	require.Error(t, err)
}
