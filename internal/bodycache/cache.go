package bodycache

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/internal/filter"
	"github.com/brandon/mcp-mailview/internal/mailtool"
)

// Fetcher returns exactly one body per requested uid, in request order
type Fetcher interface {
	FetchBodies(ctx context.Context, account, folder string, uids []int, html bool) ([]string, error)
}

// Archive persists bodies across runs
type Archive interface {
	GetBodies(account, folder string, uids []int, html bool) (map[int]string, error)
	PutBodies(account, folder string, bodies map[int]string, html bool) error
}

// Cache memoizes the bodies of one account folder. It is not safe for
// concurrent use; it belongs to the coordinating goroutine.
type Cache struct {
	account string
	folder  string
	fetcher Fetcher
	archive Archive
	logger  *logrus.Logger
	plain   map[int]string
	html    map[int]string
}

// New creates an empty cache. archive may be nil.
func New(account, folder string, fetcher Fetcher, archive Archive, logger *logrus.Logger) *Cache {
	return &Cache{
		account: account,
		folder:  folder,
		fetcher: fetcher,
		archive: archive,
		logger:  logger,
		plain:   make(map[int]string),
		html:    make(map[int]string),
	}
}

func (c *Cache) bodies(html bool) map[int]string {
	if html {
		return c.html
	}
	return c.plain
}

// Body returns the cached body of uid, or "" when it has not been cached.
// It never fetches.
func (c *Cache) Body(uid int, html bool) string {
	return c.bodies(html)[uid]
}

// Has reports whether the body of uid is cached
func (c *Cache) Has(uid int, html bool) bool {
	_, ok := c.bodies(html)[uid]
	return ok
}

// Len returns the number of cached bodies
func (c *Cache) Len(html bool) int {
	return len(c.bodies(html))
}

// PlainText returns a lookup of cached plain-text bodies for filter
// evaluation
func (c *Cache) PlainText() filter.BodyFunc {
	return func(uid int) string {
		return c.plain[uid]
	}
}

// misses returns the uids without a cached body, deduplicated, in request
// order
func (c *Cache) misses(uids []int, html bool) []int {
	cached := c.bodies(html)
	seen := make(map[int]bool, len(uids))
	var missing []int
	for _, uid := range uids {
		if _, ok := cached[uid]; ok || seen[uid] {
			continue
		}
		seen[uid] = true
		missing = append(missing, uid)
	}
	return missing
}

// CacheBodies makes sure every uid has a cached body. Bodies found in the
// archive are used first; the rest are requested from the fetcher in a
// single call, skipped entirely when nothing is missing. A fetch that
// returns the wrong number of bodies fails with *mailtool.CountMismatchError
// and caches nothing.
func (c *Cache) CacheBodies(ctx context.Context, uids []int, html bool) error {
	missing := c.misses(uids, html)
	if len(missing) == 0 {
		return nil
	}
	// archive hits are committed only together with the fetched bodies
	archived := map[int]string{}
	if c.archive != nil {
		found, err := c.archive.GetBodies(c.account, c.folder, missing, html)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"account": c.account,
				"folder":  c.folder,
			}).Warn("Failed to read body archive")
		} else {
			archived = found
		}
	}

	var toFetch []int
	for _, uid := range missing {
		if _, ok := archived[uid]; !ok {
			toFetch = append(toFetch, uid)
		}
	}

	cached := c.bodies(html)
	if len(toFetch) == 0 {
		for uid, body := range archived {
			cached[uid] = body
		}
		return nil
	}

	bodies, err := c.fetcher.FetchBodies(ctx, c.account, c.folder, toFetch, html)
	if err != nil {
		return fmt.Errorf("failed to cache bodies: %w", err)
	}
	if len(bodies) != len(toFetch) {
		return &mailtool.CountMismatchError{Requested: len(toFetch), Received: len(bodies)}
	}

	fetched := make(map[int]string, len(toFetch))
	for i, uid := range toFetch {
		fetched[uid] = Sanitize(bodies[i])
	}
	for uid, body := range archived {
		cached[uid] = body
	}
	for uid, body := range fetched {
		cached[uid] = body
	}

	c.logger.WithFields(logrus.Fields{
		"account": c.account,
		"folder":  c.folder,
		"uids":    mailtool.FormatUIDs(toFetch),
		"html":    html,
	}).Debug("Cached bodies")

	if c.archive != nil {
		if err := c.archive.PutBodies(c.account, c.folder, fetched, html); err != nil {
			c.logger.WithError(err).Warn("Failed to archive bodies")
		}
	}
	return nil
}

// Sanitize returns body unchanged when it is valid UTF-8 and otherwise
// replaces every non-ASCII byte with a space
func Sanitize(body string) string {
	if utf8.ValidString(body) {
		return body
	}
	b := []byte(body)
	for i, ch := range b {
		if ch >= utf8.RuneSelf {
			b[i] = ' '
		}
	}
	return string(b)
}
