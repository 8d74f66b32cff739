package email

import (
	"fmt"
	"sort"

	"github.com/brandon/mcp-mailview/internal/filter"
	"github.com/brandon/mcp-mailview/pkg/types"
)

// View is a snapshot of the selected folder as shown to the user.
// Accounts is the account list as of the last refresh.
type View struct {
	Account  string          `json:"account"`
	Folder   string          `json:"folder"`
	Headers  []types.Header  `json:"headers"`
	Showing  int             `json:"showing"`
	Held     int             `json:"held"`
	Total    int             `json:"total"`
	Counter  string          `json:"counter"`
	Filters  []filter.Named  `json:"filters,omitempty"`
	Loading  []int           `json:"loading,omitempty"`
	Dropped  int             `json:"dropped,omitempty"`
	HTMLMode bool            `json:"html_mode"`
	Accounts []types.Account `json:"accounts,omitempty"`
}

// BodyView is a message body prepared for display
type BodyView struct {
	Account string `json:"account"`
	Folder  string `json:"folder"`
	UID     int    `json:"uid"`
	HTML    bool   `json:"html"`
	Body    string `json:"body"`
}

// CounterText renders the header counter: held / total, prefixed with the
// number shown when filters hide some headers
func CounterText(showing, held, total int) string {
	msg := ""
	if showing != held {
		msg = fmt.Sprintf("(%d showing)  ", showing)
	}
	return msg + fmt.Sprintf("%d / %d", held, total)
}

// View returns the current view
func (m *Manager) View() View {
	v := View{
		Account:  m.account,
		Folder:   m.folder,
		HTMLMode: m.htmlMode,
		Filters:  m.filters.Filters(),
		Accounts: append([]types.Account(nil), m.accounts...),
	}
	if m.pager == nil {
		v.Headers = []types.Header{}
		v.Counter = CounterText(0, 0, 0)
		return v
	}

	v.Headers = append([]types.Header{}, m.shown...)
	v.Showing = len(m.shown)
	v.Held = m.pager.Len()
	v.Total = m.pager.Total()
	v.Counter = CounterText(v.Showing, v.Held, v.Total)
	v.Dropped = len(m.pager.Dropped())
	for uid := range m.loading {
		v.Loading = append(v.Loading, uid)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(v.Loading)))
	return v
}
