package bodycache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandon/mcp-mailview/internal/cache"
	"github.com/brandon/mcp-mailview/internal/mailtool"
)

type fetchCall struct {
	account string
	folder  string
	uids    []int
	html    bool
}

type fakeFetcher struct {
	calls []fetchCall
	drop  bool
	err   error
	raw   map[int]string
}

func (f *fakeFetcher) FetchBodies(ctx context.Context, account, folder string, uids []int, html bool) ([]string, error) {
	f.calls = append(f.calls, fetchCall{account, folder, append([]int(nil), uids...), html})
	if f.err != nil {
		return nil, f.err
	}
	bodies := make([]string, 0, len(uids))
	for _, uid := range uids {
		if body, ok := f.raw[uid]; ok {
			bodies = append(bodies, body)
			continue
		}
		bodies = append(bodies, fmt.Sprintf("body %d html=%t", uid, html))
	}
	if f.drop {
		bodies = bodies[:len(bodies)-1]
	}
	return bodies, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCacheBodiesFetchesOnce(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := New("work", "inbox", fetcher, nil, testLogger())
	ctx := context.Background()

	require.NoError(t, c.CacheBodies(ctx, []int{1, 2, 3}, false))
	require.NoError(t, c.CacheBodies(ctx, []int{1, 2, 3}, false))

	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, fetchCall{"work", "inbox", []int{1, 2, 3}, false}, fetcher.calls[0])
	assert.Equal(t, "body 2 html=false", c.Body(2, false))
}

func TestCacheBodiesRequestsOnlyMisses(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := New("work", "inbox", fetcher, nil, testLogger())
	ctx := context.Background()

	require.NoError(t, c.CacheBodies(ctx, []int{5, 3}, false))
	require.NoError(t, c.CacheBodies(ctx, []int{7, 5, 7, 3, 1}, false))

	require.Len(t, fetcher.calls, 2)
	assert.Equal(t, []int{7, 1}, fetcher.calls[1].uids)
	assert.Equal(t, 4, c.Len(false))
}

func TestBodyMissReturnsEmpty(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := New("work", "inbox", fetcher, nil, testLogger())

	assert.Equal(t, "", c.Body(42, false))
	assert.False(t, c.Has(42, false))
	assert.Empty(t, fetcher.calls)
}

func TestRepresentationsAreSeparate(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := New("work", "inbox", fetcher, nil, testLogger())
	ctx := context.Background()

	require.NoError(t, c.CacheBodies(ctx, []int{1}, false))
	require.NoError(t, c.CacheBodies(ctx, []int{1}, true))

	require.Len(t, fetcher.calls, 2)
	assert.Equal(t, "body 1 html=false", c.Body(1, false))
	assert.Equal(t, "body 1 html=true", c.Body(1, true))
	assert.Equal(t, "body 1 html=false", c.PlainText()(1))
}

func TestCountMismatchMergesNothing(t *testing.T) {
	fetcher := &fakeFetcher{drop: true}
	c := New("work", "inbox", fetcher, nil, testLogger())

	err := c.CacheBodies(context.Background(), []int{1, 2, 3}, false)
	var mismatch *mailtool.CountMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 3, mismatch.Requested)
	assert.Equal(t, 2, mismatch.Received)
	assert.Equal(t, 0, c.Len(false))
}

func TestFetchErrorPropagates(t *testing.T) {
	toolErr := &mailtool.ToolError{Args: []string{"--body-plain"}, ExitCode: 1}
	c := New("work", "inbox", &fakeFetcher{err: toolErr}, nil, testLogger())

	err := c.CacheBodies(context.Background(), []int{1}, false)
	assert.ErrorIs(t, err, toolErr)
	assert.Equal(t, 0, c.Len(false))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "héllo", Sanitize("héllo"))
	assert.Equal(t, "h llo  ", Sanitize("h\xe9llo\xff\xfe"))
	assert.Equal(t, "plain", Sanitize("plain"))
}

func TestCacheBodiesSanitizes(t *testing.T) {
	fetcher := &fakeFetcher{raw: map[int]string{1: "caf\xe9 \xc3\xa9"}}
	c := New("work", "inbox", fetcher, nil, testLogger())

	require.NoError(t, c.CacheBodies(context.Background(), []int{1}, false))
	assert.Equal(t, "caf    ", c.Body(1, false))
}

func newArchive(t *testing.T) *cache.Store {
	t.Helper()
	db, err := cache.NewCache(filepath.Join(t.TempDir(), "bodies.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return cache.NewStore(db, testLogger())
}

func TestArchiveServesLaterRuns(t *testing.T) {
	archive := newArchive(t)
	ctx := context.Background()

	first := &fakeFetcher{}
	require.NoError(t, New("work", "inbox", first, archive, testLogger()).CacheBodies(ctx, []int{1, 2}, false))
	require.Len(t, first.calls, 1)

	second := &fakeFetcher{}
	c := New("work", "inbox", second, archive, testLogger())
	require.NoError(t, c.CacheBodies(ctx, []int{1, 2, 3}, false))

	require.Len(t, second.calls, 1)
	assert.Equal(t, []int{3}, second.calls[0].uids)
	assert.Equal(t, "body 1 html=false", c.Body(1, false))
	assert.Equal(t, "body 3 html=false", c.Body(3, false))

	third := &fakeFetcher{}
	require.NoError(t, New("work", "inbox", third, archive, testLogger()).CacheBodies(ctx, []int{3, 2, 1}, false))
	assert.Empty(t, third.calls)
}

func TestCountMismatchDiscardsArchivedBodies(t *testing.T) {
	archive := newArchive(t)
	require.NoError(t, archive.PutBodies("work", "inbox", map[int]string{1: "archived"}, false))

	fetcher := &fakeFetcher{drop: true}
	c := New("work", "inbox", fetcher, archive, testLogger())

	err := c.CacheBodies(context.Background(), []int{1, 2, 3}, false)
	var mismatch *mailtool.CountMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, []int{2, 3}, fetcher.calls[0].uids)
	assert.Equal(t, 0, c.Len(false))
	assert.False(t, c.Has(1, false))
}

func TestSetKeysByFolder(t *testing.T) {
	set := NewSet(&fakeFetcher{}, nil, testLogger())

	inbox := set.For("work", "inbox")
	assert.Same(t, inbox, set.For("work", "inbox"))
	assert.NotSame(t, inbox, set.For("work", "sent"))
	assert.NotSame(t, inbox, set.For("home", "inbox"))
	assert.Equal(t, 3, set.Len())
}
