package headerstore

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/brandon/mcp-mailview/pkg/types"
)

var fieldLine = regexp.MustCompile(`^(\w+): (.*)`)

// MalformedHeaderError is returned when a header file exists but a line
// does not have the "Field: value" shape
type MalformedHeaderError struct {
	Path   string
	LineNo int
	Line   string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("malformed header file %s: line %d: %q", e.Path, e.LineNo, e.Line)
}

// ParseHeader parses the contents of one header file. Blank lines are
// skipped, unknown field names are ignored, and any other line that is not
// "Field: value" fails the whole record.
func ParseHeader(path string, uid int, data []byte) (types.Header, error) {
	hdr := types.Header{UID: uid}
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := fieldLine.FindStringSubmatch(line)
		if m == nil {
			return types.Header{}, &MalformedHeaderError{Path: path, LineNo: i + 1, Line: line}
		}
		val := m[2]
		switch m[1] {
		case "Date":
			hdr.Date = val
		case "From":
			hdr.From = val
		case "To":
			hdr.To = val
		case "CC":
			hdr.CC = val
		case "BCC":
			hdr.BCC = val
		case "Subject":
			hdr.Subject = val
		}
	}
	return hdr, nil
}
