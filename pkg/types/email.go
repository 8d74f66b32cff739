package types

import "time"

// FolderSent is the folder whose headers are flagged as sent mail
const FolderSent = "sent"

// Header is the metadata of one message as read from the header store.
// A Header is a snapshot; it is never updated in place.
type Header struct {
	UID     int    `json:"uid"`
	Date    string `json:"date"`
	From    string `json:"from"`
	To      string `json:"to"`
	CC      string `json:"cc"`
	BCC     string `json:"bcc"`
	Subject string `json:"subject"`
	IsSent  bool   `json:"is_sent"`
	Read    bool   `json:"read"`
}

// WithRead returns a copy of the header with the read flag set
func (h Header) WithRead(read bool) Header {
	h.Read = read
	return h
}

// Account represents one account as reported by the mail tool
type Account struct {
	Name            string `json:"name"`
	LastUpdated     int64  `json:"last_updated"`
	LastUpdatedRel  string `json:"last_updated_rel"`
	UpdateInterval  int    `json:"update_interval"`
	RefreshInterval int    `json:"refresh_interval"`
	Unread          int    `json:"unread"`
	Total           int    `json:"total"`
	Error           string `json:"error,omitempty"`
}

// LastUpdatedTime returns LastUpdated as a time, zero when never updated
func (a Account) LastUpdatedTime() time.Time {
	if a.LastUpdated <= 0 {
		return time.Time{}
	}
	return time.Unix(a.LastUpdated, 0)
}

// Folder represents an email folder and its counters
type Folder struct {
	Name   string `json:"name"`
	Unread int    `json:"unread"`
	Total  int    `json:"total"`
}

// FilterButton is a named, preconfigured filter query
type FilterButton struct {
	Name    string `json:"name"`
	Query   string `json:"query"`
	Checked bool   `json:"checked"`
	Negated bool   `json:"negated"`
}

// Draft is an outgoing message
type Draft struct {
	To          []string `json:"to"`
	CC          []string `json:"cc,omitempty"`
	BCC         []string `json:"bcc,omitempty"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments,omitempty"`
}
