package email

import (
	"regexp"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/brandon/mcp-mailview/pkg/types"
)

// DraftKind selects how a draft is derived from a message
type DraftKind string

const (
	DraftReply   DraftKind = "reply"
	DraftForward DraftKind = "forward"
)

// unknownAuthor is quoted when a message has no parsable sender
const unknownAuthor = "[unknown]"

var (
	addressPattern = regexp.MustCompile(
		"[a-zA-Z0-9!#$%&'*+\\-/=?^_`{|}~]+(?:\\.[a-zA-Z0-9!#$%&'*+\\-/=?^_`{|}~]+)*[a-zA-Z0-9!#$%&'*+\\-/=?^_`{|}~]*" +
			"@[a-zA-Z0-9\\-.]+\\.[a-zA-Z]{2,}")
	inlineImage = regexp.MustCompile(`src="cid:[^"]*"`)
)

// Addresses extracts the bare addresses of a header value. Values that are
// not valid address lists are scanned for anything shaped like an address.
func Addresses(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if list, err := mail.ParseAddressList(value); err == nil {
		addrs := make([]string, 0, len(list))
		for _, addr := range list {
			addrs = append(addrs, addr.Address)
		}
		return addrs
	}
	return addressPattern.FindAllString(value, -1)
}

// RemoveInlineImages strips src="cid:..." attributes, which cannot be
// resolved outside the original message
func RemoveInlineImages(body string) string {
	return inlineImage.ReplaceAllString(body, "")
}

// QuoteBody prefixes every line of body with "> " under an attribution line
func QuoteBody(body, date, author string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	lines := []string{""}
	if body != "" {
		lines = append(lines, strings.Split(strings.TrimSuffix(body, "\n"), "\n")...)
	}

	var b strings.Builder
	b.WriteString("\n\nOn " + date + ", " + author + " wrote:\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("> " + line)
	}
	b.WriteString("\n")
	return b.String()
}

// BuildDraft derives a reply or forward of hdr. A reply goes to the sender,
// or to the original recipients when replying from the sent folder; a
// forward has no recipients. CC is kept and BCC never is.
func BuildDraft(kind DraftKind, folder string, hdr types.Header, body string) types.Draft {
	from := Addresses(hdr.From)

	var to []string
	prefix := "Fwd: "
	if kind == DraftReply {
		prefix = "Re: "
		if folder == types.FolderSent {
			to = Addresses(hdr.To)
		} else {
			to = from
		}
	}

	subject := hdr.Subject
	if !strings.HasPrefix(subject, prefix) {
		subject = prefix + subject
	}

	author := unknownAuthor
	if len(from) > 0 {
		author = from[0]
	}

	return types.Draft{
		To:      to,
		CC:      Addresses(hdr.CC),
		Subject: subject,
		Body:    QuoteBody(RemoveInlineImages(body), hdr.Date, author),
	}
}
