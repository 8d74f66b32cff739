package email

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/internal/mailtool"
	"github.com/brandon/mcp-mailview/pkg/types"
)

// bodyError is displayed in place of a body that could not be fetched
const bodyError = "ERROR FETCHING BODY\n"

// draftRequest fetches the plain-text body quoted in a reply or forward
type draftRequest struct {
	mailtool.BodyRequest
	Kind   DraftKind
	Header types.Header
}

// Result is what a finished background operation produced
type Result struct {
	ID      uint64      `json:"id"`
	Success bool        `json:"success"`
	Stale   bool        `json:"stale,omitempty"`
	Value   interface{} `json:"value,omitempty"`
	Output  string      `json:"output,omitempty"`
	Err     error       `json:"-"`
}

// HandleCompletion applies a finished background operation. Results whose
// account or folder is no longer selected are reported as stale and leave
// the view untouched.
func (m *Manager) HandleCompletion(ctx context.Context, c mailtool.Completion) Result {
	res := Result{
		ID:      c.ID,
		Success: c.Success,
		Output:  c.Output,
		Err:     c.Err,
	}
	current := c.Request.Scope().Matches(m.account, m.folder)
	res.Stale = !current

	logger := m.logger.WithFields(logrus.Fields{
		"worker":  c.ID,
		"success": c.Success,
		"stale":   res.Stale,
	})

	switch req := c.Request.(type) {
	case *mailtool.ToggleReadRequest:
		if current {
			delete(m.loading, req.UID)
			if c.Success && m.pager.SetRead(req.UID, req.Read) {
				m.refreshView()
			}
			if hdr, ok := m.held(req.UID); ok {
				res.Value = hdr
			}
		}
		m.refreshAccounts(ctx)

	case *mailtool.MarkAllReadRequest:
		if current {
			for _, uid := range req.UIDs {
				delete(m.loading, uid)
				if c.Success {
					m.pager.SetRead(uid, true)
				}
			}
			m.refreshView()
		}
		m.refreshAccounts(ctx)

	case *mailtool.UpdateRequest:
		m.refreshAccounts(ctx)
		target := req.Account
		if target == "" {
			target = "all accounts"
		}
		if c.Success {
			m.notify("update finished for %s", target)
		} else {
			m.notify("update failed for %s", target)
		}
		if m.pager != nil && (req.Account == "" || req.Account == m.account) {
			res.Stale = false
			if _, err := m.RefreshHeaders(ctx); err != nil {
				logger.WithError(err).Warn("Failed to refresh headers after update")
			}
			res.Value = m.View()
		}

	case *draftRequest:
		if !c.Success {
			m.notify("failed to fetch body of message %d", req.UID)
			break
		}
		// a draft stays valid after the selection changes
		res.Stale = false
		res.Value = BuildDraft(req.Kind, req.Target.Folder, req.Header, c.Output)

	case *mailtool.BodyRequest:
		body := bodyError
		if c.Success {
			body = RemoveInlineImages(c.Output)
		}
		view := &BodyView{
			Account: req.Target.Account,
			Folder:  req.Target.Folder,
			UID:     req.UID,
			HTML:    req.HTML,
			Body:    body,
		}
		if current {
			m.body = view
		}
		res.Value = view

	case *mailtool.SendRequest:
		if c.Success {
			m.notify("\nSUCCESS\n\n%s", c.Output)
		} else {
			m.notify("\nFAILED\n\n%s", c.Output)
		}
		res.Stale = false

	default:
		res.Err = fmt.Errorf("unknown request type %T", c.Request)
	}

	logger.Debug("Handled completion")
	return res
}
