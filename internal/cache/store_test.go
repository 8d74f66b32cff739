package cache

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c, err := NewCache(filepath.Join(t.TempDir(), "nested", "bodies.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	store := NewStore(c, logger)
	store.now = func() time.Time { return time.Unix(1700000000, 0) }
	return store
}

func TestPutAndGetBodies(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.PutBodies("work", "inbox", map[int]string{1: "one", 2: "two"}, false))
	require.NoError(t, store.PutBodies("work", "inbox", map[int]string{1: "<p>one</p>"}, true))
	require.NoError(t, store.PutBodies("home", "inbox", map[int]string{1: "other account"}, false))

	got, err := store.GetBodies("work", "inbox", []int{1, 2, 3}, false)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "one", 2: "two"}, got)

	got, err = store.GetBodies("work", "inbox", []int{1, 2}, true)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "<p>one</p>"}, got)

	got, err = store.GetBodies("work", "sent", []int{1}, false)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPutBodiesOverwrites(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.PutBodies("work", "inbox", map[int]string{7: "old"}, false))
	require.NoError(t, store.PutBodies("work", "inbox", map[int]string{7: "new"}, false))

	got, err := store.GetBodies("work", "inbox", []int{7}, false)
	require.NoError(t, err)
	assert.Equal(t, "new", got[7])
}

func TestGetBodiesManyUIDs(t *testing.T) {
	store := newTestStore(t)

	bodies := make(map[int]string)
	uids := make([]int, 0, 1200)
	for uid := 1; uid <= 1200; uid++ {
		uids = append(uids, uid)
		if uid%2 == 0 {
			bodies[uid] = "even"
		}
	}
	require.NoError(t, store.PutBodies("work", "inbox", bodies, false))

	got, err := store.GetBodies("work", "inbox", uids, false)
	require.NoError(t, err)
	assert.Len(t, got, 600)
}

func TestStatsAndPurge(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.PutBodies("work", "inbox", map[int]string{1: "abc", 2: "de"}, false))
	require.NoError(t, store.PutBodies("work", "inbox", map[int]string{1: "é"}, true))
	require.NoError(t, store.PutBodies("home", "sent", map[int]string{4: "x"}, false))

	stats, err := store.Stats()
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "home", stats[0].Account)
	assert.Equal(t, 1, stats[0].Bodies)
	assert.Equal(t, "work", stats[1].Account)
	assert.Equal(t, 3, stats[1].Bodies)
	assert.Equal(t, int64(7), stats[1].Bytes)
	assert.Equal(t, int64(1700000000), stats[1].LastCached.Unix())

	n, err := store.Purge("work", "inbox")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	stats, err = store.Stats()
	require.NoError(t, err)
	assert.Len(t, stats, 1)
}

func TestMemoryCache(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c, err := NewCache(MemoryPath, logger)
	require.NoError(t, err)
	defer c.Close()

	store := NewStore(c, logger)
	require.NoError(t, store.PutBodies("a", "b", map[int]string{1: "x"}, false))
	got, err := store.GetBodies("a", "b", []int{1}, false)
	require.NoError(t, err)
	assert.Equal(t, "x", got[1])
}
