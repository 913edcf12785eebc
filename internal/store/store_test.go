package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ domain.KVStore = (*Bucket)(nil)
	_ domain.KVStore = (*RedisStore)(nil)
)

func TestBucketPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "movietracker.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, path, s.Path())

	b := s.Bucket(BucketCollections)
	require.NoError(t, b.Set(ctx, "movies", []byte(`[{"id":1}]`)))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	data, ok, err := reopened.Bucket(BucketCollections).Get(ctx, "movies")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(data))
}

func TestBucketsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Bucket(BucketCollections).Set(ctx, "k", []byte("collections")))
	require.NoError(t, s.Bucket(BucketAPI).Set(ctx, "k", []byte("api")))

	data, ok, err := s.Bucket(BucketAPI).Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "api", string(data))
}

func TestGetMissingKey(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	defer s.Close()

	data, ok, err := s.Bucket(BucketCollections).Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestDeleteAndDeletePrefix(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	defer s.Close()

	b := s.Bucket(BucketAPI)
	for _, k := range []string{"api:search:a", "api:search:b", "api:details:1", "other"} {
		require.NoError(t, b.Set(ctx, k, []byte(k)))
	}

	require.NoError(t, b.DeletePrefix(ctx, "api:search:"))
	for _, k := range []string{"api:search:a", "api:search:b"} {
		_, ok, err := b.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, ok, k)
	}

	_, ok, _ := b.Get(ctx, "api:details:1")
	assert.True(t, ok)

	require.NoError(t, b.Delete(ctx, "api:details:1", "other"))
	_, ok, _ = b.Get(ctx, "other")
	assert.False(t, ok)
}

func TestMemoryOnlyMode(t *testing.T) {
	ctx := context.Background()
	s, err := Open("")
	require.NoError(t, err)
	assert.Equal(t, "", s.Path())

	b := s.Bucket(BucketCollections)
	require.NoError(t, b.Set(ctx, "lists", []byte("[]")))
	data, ok, err := b.Get(ctx, "lists")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(data))

	require.NoError(t, b.DeletePrefix(ctx, "li"))
	_, ok, _ = b.Get(ctx, "lists")
	assert.False(t, ok)
	assert.NoError(t, s.Close())
}

func TestSetCopiesValue(t *testing.T) {
	ctx := context.Background()
	s, err := Open("")
	require.NoError(t, err)

	value := []byte("abc")
	b := s.Bucket(BucketCollections)
	require.NoError(t, b.Set(ctx, "k", value))
	value[0] = 'z'

	data, _, _ := b.Get(ctx, "k")
	assert.Equal(t, "abc", string(data))
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("MOVIETRACKER_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MOVIETRACKER_TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	s, err := OpenRedis(ctx, url, "movietracker-test")
	require.NoError(t, err)
	defer s.Close()
	defer s.DeletePrefix(ctx, "")

	require.NoError(t, s.Set(ctx, "api:a", []byte("1")))
	require.NoError(t, s.Set(ctx, "api:b", []byte("2")))

	data, ok, err := s.Get(ctx, "api:a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", string(data))

	require.NoError(t, s.DeletePrefix(ctx, "api:"))
	_, ok, err = s.Get(ctx, "api:b")
	require.NoError(t, err)
	assert.False(t, ok)
}
