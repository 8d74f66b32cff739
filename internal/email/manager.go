package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/internal/bodycache"
	"github.com/brandon/mcp-mailview/internal/config"
	"github.com/brandon/mcp-mailview/internal/filter"
	"github.com/brandon/mcp-mailview/internal/mailtool"
	"github.com/brandon/mcp-mailview/internal/pager"
	"github.com/brandon/mcp-mailview/pkg/types"
)

// DefaultFolder is selected with every account
const DefaultFolder = "inbox"

var (
	ErrNoAccount    = errors.New("no account selected")
	ErrNoRecipients = errors.New("draft has no recipient")
)

// MailTool is the synchronous part of the mail tool
type MailTool interface {
	Accounts(ctx context.Context) ([]types.Account, error)
	Folders(ctx context.Context, account string) ([]types.Folder, error)
	ReadConfig(ctx context.Context, account string) (map[string]string, error)
	bodycache.Fetcher
}

// Workers runs mail tool requests in the background
type Workers interface {
	Start(req mailtool.Request, sink *mailtool.LogSink) uint64
	Completions() <-chan mailtool.Completion
}

// Notice is a message for the user produced by a background operation
type Notice struct {
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

// Manager coordinates the mail view: the selected account and folder, the
// header pager, the active filters and the body caches. It is not safe for
// concurrent use. The goroutine calling its methods must also drain
// Completions and pass each completion to HandleCompletion.
type Manager struct {
	config  *config.Config
	tool    MailTool
	workers Workers
	source  pager.Source
	bodies  *bodycache.Set
	log     *mailtool.LogSink
	sizes   pager.Sizes
	logger  *logrus.Logger

	accounts []types.Account
	account  string
	folder   string
	htmlMode bool
	buttons  []types.FilterButton

	pager   *pager.Pager
	filters filter.Set
	shown   []types.Header
	loading map[int]bool
	body    *BodyView
	notices []Notice
}

// NewManager creates a new email manager. archive may be nil.
func NewManager(cfg *config.Config, tool MailTool, workers Workers, source pager.Source, archive bodycache.Archive, logger *logrus.Logger) *Manager {
	return &Manager{
		config:  cfg,
		tool:    tool,
		workers: workers,
		source:  source,
		bodies:  bodycache.NewSet(tool, archive, logger),
		log:     mailtool.NewLogSink(cfg.LogLines),
		sizes: pager.Sizes{
			Initial:              cfg.Page.Initial,
			InitialWithoutUnread: cfg.Page.InitialWithoutUnread,
			More:                 cfg.Page.More,
		},
		logger:  logger,
		loading: make(map[int]bool),
	}
}

// Completions delivers the results of background operations
func (m *Manager) Completions() <-chan mailtool.Completion {
	return m.workers.Completions()
}

// Log returns the streamed output of account updates
func (m *Manager) Log() *mailtool.LogSink {
	return m.log
}

// Account returns the selected account, or ""
func (m *Manager) Account() string {
	return m.account
}

// HTMLMode reports whether bodies are displayed as HTML by default
func (m *Manager) HTMLMode() bool {
	return m.htmlMode
}

func (m *Manager) notify(format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	m.notices = append(m.notices, Notice{Time: time.Now(), Text: text})
	m.logger.WithField("notice", text).Debug("Notice posted")
}

// Notices returns and clears the pending notices
func (m *Manager) Notices() []Notice {
	notices := m.notices
	m.notices = nil
	return notices
}

// Accounts reloads the account list from the mail tool
func (m *Manager) Accounts(ctx context.Context) ([]types.Account, error) {
	accounts, err := m.tool.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	m.accounts = accounts
	return accounts, nil
}

// refreshAccounts reloads the account list, keeping the old one on failure
func (m *Manager) refreshAccounts(ctx context.Context) {
	if _, err := m.Accounts(ctx); err != nil {
		m.logger.WithError(err).Warn("Failed to refresh accounts")
	}
}

// Folders lists the folders of account, or of the selected account when
// account is empty
func (m *Manager) Folders(ctx context.Context, account string) ([]types.Folder, error) {
	if account == "" {
		account = m.account
	}
	if account == "" {
		return nil, ErrNoAccount
	}
	return m.tool.Folders(ctx, account)
}

// SelectAccount selects account and its inbox. Filter buttons and the HTML
// preference come from the account's tool config, falling back to the
// configured default buttons.
func (m *Manager) SelectAccount(ctx context.Context, account string) (View, error) {
	if account == "" {
		return View{}, ErrNoAccount
	}

	values, err := m.tool.ReadConfig(ctx, account)
	if err != nil {
		m.logger.WithError(err).WithField("account", account).Warn("Failed to read account config")
		values = map[string]string{}
	}

	m.account = account
	m.buttons = filter.ButtonsFromConfig(values)
	if len(m.buttons) == 1 {
		m.buttons = filter.ButtonsFromConfig(m.config.DefaultButtonConfig())
	}
	preferHTML, ok := values["prefer_html"]
	m.htmlMode = ok && preferHTML != "false"

	return m.SelectFolder(ctx, DefaultFolder)
}

// SelectFolder selects a folder of the selected account, dropping all
// filters and loading its initial page
func (m *Manager) SelectFolder(ctx context.Context, folder string) (View, error) {
	if m.account == "" {
		return View{}, ErrNoAccount
	}
	if folder == "" {
		folder = DefaultFolder
	}

	m.folder = folder
	m.pager = pager.New(m.source, m.account, folder, m.sizes, m.logger)
	m.filters.Clear()
	m.resetButtons()
	m.loading = make(map[int]bool)
	m.body = nil
	m.shown = nil

	if _, err := m.pager.InitialPage(m.sizes.Initial, m.sizes.InitialWithoutUnread); err != nil {
		return View{}, fmt.Errorf("failed to load headers: %w", err)
	}
	m.refreshView()

	m.logger.WithFields(logrus.Fields{
		"account": m.account,
		"folder":  folder,
		"held":    m.pager.Len(),
		"total":   m.pager.Total(),
	}).Info("Selected folder")
	return m.View(), nil
}

func (m *Manager) scope() mailtool.Scope {
	return mailtool.Scope{Account: m.account, Folder: m.folder}
}

func (m *Manager) requirePager() error {
	if m.account == "" || m.pager == nil {
		return ErrNoAccount
	}
	return nil
}

// cache returns the body cache of the selected folder
func (m *Manager) cache() *bodycache.Cache {
	return m.bodies.For(m.account, m.folder)
}

// refreshView re-evaluates the filters over the held headers
func (m *Manager) refreshView() {
	if m.pager == nil {
		m.shown = nil
		return
	}
	m.shown = m.filters.Apply(m.pager.Headers(), m.cache().PlainText())
}

// applyFilters fills the plain-text body cache for every held header when
// a filter needs bodies, then re-evaluates the filters. Headers whose body
// could not be fetched are evaluated against an empty body.
func (m *Manager) applyFilters(ctx context.Context) error {
	var err error
	if m.filters.RequiresBody() {
		err = m.cache().CacheBodies(ctx, m.pager.UIDs(), false)
		if err != nil {
			m.notify("failed to load bodies: %v", err)
		}
	}
	m.refreshView()
	return err
}

// More appends the next batch of older headers. percentage asks for that
// share of the folder total; nil asks for the minimum batch.
func (m *Manager) More(ctx context.Context, percentage *int) (View, error) {
	if err := m.requirePager(); err != nil {
		return View{}, err
	}
	if _, err := m.pager.More(percentage); err != nil {
		return View{}, fmt.Errorf("failed to load more headers: %w", err)
	}
	if err := m.applyFilters(ctx); err != nil {
		return m.View(), err
	}
	return m.View(), nil
}

// RefreshHeaders picks up headers newer than the oldest held one
func (m *Manager) RefreshHeaders(ctx context.Context) (View, error) {
	if err := m.requirePager(); err != nil {
		return View{}, err
	}
	if _, err := m.pager.RefreshNewest(); err != nil {
		return View{}, fmt.Errorf("failed to refresh headers: %w", err)
	}
	if err := m.applyFilters(ctx); err != nil {
		return m.View(), err
	}
	return m.View(), nil
}

// ReplaceFilter registers query under name, replacing any filter with that
// name. A blank query, or a folder with no headers, removes the filter. An
// invalid query returns a *filter.SyntaxError and leaves the filters as
// they were. Body filters load the plain-text body of every held header
// first; if that fails the filter is not registered.
func (m *Manager) ReplaceFilter(ctx context.Context, name, query string, negated bool) error {
	if err := m.requirePager(); err != nil {
		return err
	}

	query = strings.TrimSpace(query)
	if query == "" || m.pager.Len() == 0 {
		m.filters.Remove(name)
		m.refreshView()
		return nil
	}

	e, err := filter.Compile(query, negated)
	if err != nil {
		m.notify("invalid filter: %v", err)
		m.logger.WithError(err).WithField("filter", name).Warn("Rejected filter")
		return err
	}

	if filter.RequiresBody(e) {
		if err := m.cache().CacheBodies(ctx, m.pager.UIDs(), false); err != nil {
			m.notify("failed to load bodies: %v", err)
			return fmt.Errorf("failed to load bodies for filter %s: %w", name, err)
		}
	}

	m.filters.Replace(name, query, e)
	m.refreshView()
	m.logger.WithFields(logrus.Fields{
		"filter":  name,
		"query":   e.String(),
		"showing": len(m.shown),
	}).Debug("Applied filter")
	return nil
}

// RemoveFilter unregisters name and reports whether it was registered
func (m *Manager) RemoveFilter(name string) bool {
	removed := m.filters.Remove(name)
	for i := range m.buttons {
		if m.buttons[i].Name == name {
			m.buttons[i].Checked = false
			m.buttons[i].Negated = false
		}
	}
	m.refreshView()
	return removed
}

// QuickFilter replaces the free-text filter
func (m *Manager) QuickFilter(ctx context.Context, text string) error {
	return m.ReplaceFilter(ctx, filter.QuickFilter, text, false)
}

// Filters returns the active filters
func (m *Manager) Filters() []filter.Named {
	return m.filters.Filters()
}

// Buttons returns the filter buttons of the selected account
func (m *Manager) Buttons() []types.FilterButton {
	return append([]types.FilterButton(nil), m.buttons...)
}

func (m *Manager) resetButtons() {
	for i := range m.buttons {
		m.buttons[i].Checked = false
		m.buttons[i].Negated = false
	}
}

// SetButton checks or unchecks a filter button. A checked button applies
// its query, negated when asked; it stays unchecked when no filter results,
// as with a blank query or an empty folder.
func (m *Manager) SetButton(ctx context.Context, name string, checked, negated bool) error {
	idx := -1
	for i, button := range m.buttons {
		if button.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("unknown filter button: %s", name)
	}

	if !checked {
		m.RemoveFilter(name)
		return nil
	}
	if err := m.ReplaceFilter(ctx, name, m.buttons[idx].Query, negated); err != nil {
		return err
	}
	if !m.filters.Has(name) {
		m.buttons[idx].Checked = false
		m.buttons[idx].Negated = false
		return nil
	}
	m.buttons[idx].Checked = true
	m.buttons[idx].Negated = negated
	return nil
}

// held returns the held header for uid
func (m *Manager) held(uid int) (types.Header, bool) {
	if m.pager == nil {
		return types.Header{}, false
	}
	for _, hdr := range m.pager.Headers() {
		if hdr.UID == uid {
			return hdr, true
		}
	}
	return types.Header{}, false
}

// ToggleRead flips the read flag of a held message in the background and
// returns the worker id
func (m *Manager) ToggleRead(uid int) (uint64, error) {
	if err := m.requirePager(); err != nil {
		return 0, err
	}
	hdr, ok := m.held(uid)
	if !ok {
		return 0, fmt.Errorf("message %d is not loaded", uid)
	}

	m.loading[uid] = true
	return m.workers.Start(&mailtool.ToggleReadRequest{
		Target: m.scope(),
		UID:    uid,
		Read:   !hdr.Read,
	}, nil), nil
}

// MarkAllRead marks every shown unread message read in the background. It
// returns 0 when nothing is unread.
func (m *Manager) MarkAllRead() (uint64, error) {
	if err := m.requirePager(); err != nil {
		return 0, err
	}

	var uids []int
	for _, hdr := range m.shown {
		if !hdr.Read {
			uids = append(uids, hdr.UID)
			m.loading[hdr.UID] = true
		}
	}
	if len(uids) == 0 {
		return 0, nil
	}

	return m.workers.Start(&mailtool.MarkAllReadRequest{
		Target: m.scope(),
		UIDs:   uids,
	}, nil), nil
}

// UpdateAccount syncs account, or every account when empty, streaming the
// tool output to the log
func (m *Manager) UpdateAccount(account string) uint64 {
	target := account
	if target == "" {
		target = "ALL ACCOUNTS WITHOUT SKIP"
	}
	m.log.Append("STARTING UPDATE FOR " + target + "\n")

	return m.workers.Start(&mailtool.UpdateRequest{
		Account: account,
		Folder:  m.folder,
	}, m.log)
}

// ReadBody fetches the body of uid in the selected folder for display.
// html overrides the account's HTML preference when not nil.
func (m *Manager) ReadBody(uid int, html *bool) (uint64, error) {
	if err := m.requirePager(); err != nil {
		return 0, err
	}
	useHTML := m.htmlMode
	if html != nil {
		useHTML = *html
	}
	return m.workers.Start(&mailtool.BodyRequest{
		Target: m.scope(),
		UID:    uid,
		HTML:   useHTML,
	}, nil), nil
}

// CurrentBody returns the last body read in the selected folder
func (m *Manager) CurrentBody() *BodyView {
	return m.body
}

// DraftReply prepares a reply to or forward of a held message. The quoted
// plain-text body is fetched in the background; the draft is the result of
// the completion.
func (m *Manager) DraftReply(uid int, kind DraftKind) (uint64, error) {
	if err := m.requirePager(); err != nil {
		return 0, err
	}
	if kind != DraftReply && kind != DraftForward {
		return 0, fmt.Errorf("unknown draft kind: %s", kind)
	}
	hdr, ok := m.held(uid)
	if !ok {
		return 0, fmt.Errorf("message %d is not loaded", uid)
	}

	return m.workers.Start(&draftRequest{
		BodyRequest: mailtool.BodyRequest{Target: m.scope(), UID: uid},
		Kind:        kind,
		Header:      hdr,
	}, nil), nil
}

// Send sends draft from the selected account, or from account when given
func (m *Manager) Send(account string, draft types.Draft) (uint64, error) {
	if account == "" {
		account = m.account
	}
	if account == "" {
		return 0, ErrNoAccount
	}
	if len(draft.To) == 0 {
		return 0, ErrNoRecipients
	}

	m.notify("sending...")
	return m.workers.Start(&mailtool.SendRequest{Account: account, Draft: draft}, nil), nil
}
