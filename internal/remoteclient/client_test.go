package remoteclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shard/internal/shardfs"
)

func TestHasBlockReflectsServerState(t *testing.T) {
	var present atomic.Bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if present.Load() {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	c := New(ts.URL)
	has, err := c.HasBlock(context.Background(), "abc")
	require.NoError(t, err)
	assert.False(t, has)

	present.Store(true)
	has, err = c.HasBlock(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestDownloadBlockNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := New(ts.URL)
	_, err := c.DownloadBlock(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, shardfs.Is(err, shardfs.KindNotFound))
}

func TestTransientServerErrorIsRetried(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	c := New(ts.URL, WithMaxRetries(3))
	data, err := c.DownloadBlock(context.Background(), "retry-me")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestPermanentErrorIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	c := New(ts.URL, WithMaxRetries(3))
	err := c.UploadBlock(context.Background(), "bad", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestWithAPIKeySetsBearerHeaderOnPut(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := New(ts.URL, WithAPIKey("tok123"))
	require.NoError(t, c.UploadBlock(context.Background(), "id", []byte("d")))
	assert.Equal(t, "Bearer tok123", gotAuth)
}

func TestWithTimeoutAppliesToClient(t *testing.T) {
	c := New("http://example.invalid", WithTimeout(5*time.Millisecond))
	assert.Equal(t, 5*time.Millisecond, c.httpClient.Timeout)
}
