package pager

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/internal/headerstore"
	"github.com/brandon/mcp-mailview/pkg/types"
)

// Source is the part of the header store the pager reads from
type Source interface {
	ListUIDs(account, folder string, kind headerstore.Kind) ([]int, error)
	UnreadSet(account, folder string) (map[int]bool, error)
	ReadHeaders(account, folder string, uids []int, unread map[int]bool) ([]types.Header, []error)
}

// Sizes holds the page sizes used by the pager
type Sizes struct {
	Initial              int
	InitialWithoutUnread int
	More                 int
}

// DefaultSizes are the page sizes used when none are configured
var DefaultSizes = Sizes{
	Initial:              600,
	InitialWithoutUnread: 200,
	More:                 200,
}

// Pager incrementally materializes the headers of one account folder,
// newest first. Headers holds no duplicate uid and stays sorted descending.
type Pager struct {
	source  Source
	account string
	folder  string
	sizes   Sizes
	logger  *logrus.Logger

	headers []types.Header
	held    map[int]bool
	// skipped holds uids whose header could not be read; More passes over them
	skipped map[int]bool
	total   int
	dropped []error
}

// New creates a pager for account/folder with nothing fetched yet
func New(source Source, account, folder string, sizes Sizes, logger *logrus.Logger) *Pager {
	return &Pager{
		source:  source,
		account: account,
		folder:  folder,
		sizes:   sizes,
		logger:  logger,
		held:    make(map[int]bool),
		skipped: make(map[int]bool),
	}
}

// Headers returns the materialized headers, newest first. The slice must
// not be modified.
func (p *Pager) Headers() []types.Header {
	return p.headers
}

// Len returns the number of materialized headers
func (p *Pager) Len() int {
	return len(p.headers)
}

// Total returns the folder size seen by the most recent fetch
func (p *Pager) Total() int {
	return p.total
}

// Dropped returns the records skipped by the most recent fetch
func (p *Pager) Dropped() []error {
	return p.dropped
}

// UIDs returns the uids of the materialized headers, newest first
func (p *Pager) UIDs() []int {
	uids := make([]int, len(p.headers))
	for i, hdr := range p.headers {
		uids[i] = hdr.UID
	}
	return uids
}

// MinUID returns the oldest materialized uid, or 0 when empty
func (p *Pager) MinUID() int {
	if len(p.headers) == 0 {
		return 0
	}
	return p.headers[len(p.headers)-1].UID
}

// fetch lists the folder, selects uids by q and reads their headers
func (p *Pager) fetch(q Query) ([]types.Header, error) {
	uids, err := p.source.ListUIDs(p.account, p.folder, headerstore.KindAll)
	if err != nil {
		return nil, fmt.Errorf("failed to list uids: %w", err)
	}
	unread, err := p.source.UnreadSet(p.account, p.folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list unread uids: %w", err)
	}

	selected := Select(uids, unread, q)
	headers, dropped := p.source.ReadHeaders(p.account, p.folder, selected, unread)

	read := make(map[int]bool, len(headers))
	for _, hdr := range headers {
		read[hdr.UID] = true
	}
	for _, uid := range selected {
		if !read[uid] {
			p.skipped[uid] = true
		}
	}

	p.total = len(uids)
	p.dropped = dropped
	if len(dropped) > 0 {
		p.logger.WithFields(logrus.Fields{
			"account": p.account,
			"folder":  p.folder,
			"dropped": len(dropped),
		}).Warn("Skipped unreadable headers")
	}
	return headers, nil
}

// InitialPage replaces the held headers with the newest withUnread
// messages, then trims read messages off the tail down to withoutUnread
func (p *Pager) InitialPage(withUnread, withoutUnread int) ([]types.Header, error) {
	p.skipped = make(map[int]bool)
	headers, err := p.fetch(Query{
		Limit: withUnread,
		Floor: withoutUnread,
	})
	if err != nil {
		return nil, err
	}

	p.headers = nil
	p.held = make(map[int]bool, len(headers))
	p.merge(headers)

	p.logger.WithFields(logrus.Fields{
		"account": p.account,
		"folder":  p.folder,
		"count":   len(headers),
		"total":   p.total,
	}).Debug("Fetched initial page")
	return headers, nil
}

// MoreLimit returns the batch size used by More for the given percentage
// of the folder total; nil asks for the minimum batch
func (p *Pager) MoreLimit(percentage *int) int {
	limit := 0
	if percentage != nil && *percentage > 0 {
		limit = p.total * *percentage / 100
	}
	if limit < p.sizes.More {
		limit = p.sizes.More
	}
	return limit
}

// More fetches the next batch of headers that are neither held nor known
// to be unreadable and merges it in. It returns the new headers.
func (p *Pager) More(percentage *int) ([]types.Header, error) {
	exclude := make(map[int]bool, len(p.held)+len(p.skipped))
	for uid := range p.held {
		exclude[uid] = true
	}
	for uid := range p.skipped {
		exclude[uid] = true
	}

	headers, err := p.fetch(Query{
		Limit:   p.MoreLimit(percentage),
		Floor:   NoLimit,
		Exclude: exclude,
	})
	if err != nil {
		return nil, err
	}
	p.merge(headers)
	return headers, nil
}

// RefreshNewest fetches every uid at or above the oldest held uid that is
// not yet held, picking up mail that arrived since the last fetch. With
// nothing held it falls back to the initial page.
func (p *Pager) RefreshNewest() ([]types.Header, error) {
	minUID := p.MinUID()
	if minUID == 0 {
		return p.InitialPage(p.sizes.Initial, p.sizes.InitialWithoutUnread)
	}
	// unreadable uids in range are retried; a sync may have fixed them
	for uid := range p.skipped {
		if uid >= minUID {
			delete(p.skipped, uid)
		}
	}

	headers, err := p.fetch(Query{
		Limit:   NoLimit,
		Floor:   NoLimit,
		Exclude: p.held,
		MinUID:  minUID,
	})
	if err != nil {
		return nil, err
	}
	p.merge(headers)
	return headers, nil
}

// SetRead replaces the held header for uid with a copy carrying the new
// read flag. It reports whether uid is held.
func (p *Pager) SetRead(uid int, read bool) bool {
	for i := range p.headers {
		if p.headers[i].UID == uid {
			p.headers[i] = p.headers[i].WithRead(read)
			return true
		}
	}
	return false
}

// merge inserts batch, sorted descending, into the held headers, skipping
// uids that are already held
func (p *Pager) merge(batch []types.Header) {
	if len(batch) == 0 {
		return
	}
	merged := make([]types.Header, 0, len(p.headers)+len(batch))
	i, j := 0, 0
	for i < len(p.headers) || j < len(batch) {
		if j == len(batch) || (i < len(p.headers) && p.headers[i].UID > batch[j].UID) {
			merged = append(merged, p.headers[i])
			i++
			continue
		}
		hdr := batch[j]
		j++
		if p.held[hdr.UID] {
			continue
		}
		p.held[hdr.UID] = true
		merged = append(merged, hdr)
	}
	p.headers = merged
}
