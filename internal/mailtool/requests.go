package mailtool

import (
	"strconv"

	"github.com/brandon/mcp-mailview/pkg/types"
)

// Request is one mail tool invocation handed to a worker. The concrete
// type tells the completion handler what to apply.
type Request interface {
	// Args returns the tool arguments, without the executable
	Args() []string
	// Scope returns the account and folder the result applies to
	Scope() Scope
}

// Scope identifies the view a request was issued for. Folder is empty for
// account-wide requests; Account is empty for requests on every account.
type Scope struct {
	Account string `json:"account"`
	Folder  string `json:"folder,omitempty"`
}

// Matches reports whether a result for s still applies to the selection
// account/folder. Account-wide scopes match any folder of the account.
func (s Scope) Matches(account, folder string) bool {
	if s.Account != account {
		return false
	}
	return s.Folder == "" || s.Folder == folder
}

// ToggleReadRequest sets the read flag of one message
type ToggleReadRequest struct {
	Target Scope
	UID    int
	Read   bool
}

// MarkAllReadRequest marks several messages read
type MarkAllReadRequest struct {
	Target Scope
	UIDs   []int
}

// UpdateRequest syncs one account, or every account when Account is empty
type UpdateRequest struct {
	Account string
	// Folder is the folder selected when the update was started
	Folder string
}

// BodyRequest fetches the body of one message for display, downloading it
// when needed
type BodyRequest struct {
	Target Scope
	UID    int
	HTML   bool
}

// SendRequest sends a message from an account
type SendRequest struct {
	Account string
	Draft   types.Draft
}

func readFlag(read bool) string {
	if read {
		return "--mark-read"
	}
	return "--mark-unread"
}

func (r *ToggleReadRequest) Args() []string {
	return []string{readFlag(r.Read), "--folder=" + r.Target.Folder, r.Target.Account, strconv.Itoa(r.UID)}
}

func (r *ToggleReadRequest) Scope() Scope { return r.Target }

func (r *MarkAllReadRequest) Args() []string {
	args := []string{"--mark-read", "--folder=" + r.Target.Folder, r.Target.Account}
	return append(args, uidArgs(r.UIDs)...)
}

func (r *MarkAllReadRequest) Scope() Scope { return r.Target }

func (r *UpdateRequest) Args() []string {
	if r.Account == "" {
		return []string{"--update"}
	}
	return []string{"--update", r.Account}
}

func (r *UpdateRequest) Scope() Scope { return Scope{Account: r.Account, Folder: r.Folder} }

func (r *BodyRequest) Args() []string {
	return []string{bodyFlag(r.HTML), "--folder=" + r.Target.Folder, r.Target.Account, strconv.Itoa(r.UID)}
}

func (r *BodyRequest) Scope() Scope { return r.Target }

// Args lays out the message as --smtp ACCOUNT SUBJECT BODY TO, followed by
// the remaining recipients and attachments. Draft.To must not be empty.
func (r *SendRequest) Args() []string {
	to := r.Draft.To
	first := ""
	if len(to) > 0 {
		first, to = to[0], to[1:]
	}
	args := []string{"--smtp", r.Account, r.Draft.Subject, r.Draft.Body, first}
	for _, addr := range to {
		args = append(args, "--to", addr)
	}
	for _, addr := range r.Draft.CC {
		args = append(args, "--cc", addr)
	}
	for _, addr := range r.Draft.BCC {
		args = append(args, "--bcc", addr)
	}
	for _, att := range r.Draft.Attachments {
		args = append(args, "--attach", att)
	}
	return args
}

func (r *SendRequest) Scope() Scope { return Scope{Account: r.Account} }
