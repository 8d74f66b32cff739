package mailtool

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/brandon/mcp-mailview/pkg/types"
)

var (
	accountLine = regexp.MustCompile(`^(\w+):(\d+):([a-z0-9_\- ]+):(\d+)s:(\d+)s:(\d+)/(\d+):(.*)$`)
	folderLine  = regexp.MustCompile(`^([a-zA-Z_]+):(\d+)/(\d+)`)
	configLine  = regexp.MustCompile(`^(\w+(?:\.\w+)?)=(.*)$`)
)

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ParseAccounts parses the output of --accounts, one account per line:
//
//	name:lastUpdated:lastUpdatedRel:updateIntervals:refreshIntervals:unread/total:error
//
// Lines that do not match are skipped.
func ParseAccounts(out string) []types.Account {
	var accounts []types.Account
	for _, line := range strings.Split(out, "\n") {
		m := accountLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		lastUpdated, _ := strconv.ParseInt(m[2], 10, 64)
		accounts = append(accounts, types.Account{
			Name:            m[1],
			LastUpdated:     lastUpdated,
			LastUpdatedRel:  m[3],
			UpdateInterval:  atoi(m[4]),
			RefreshInterval: atoi(m[5]),
			Unread:          atoi(m[6]),
			Total:           atoi(m[7]),
			Error:           m[8],
		})
	}
	return accounts
}

// ParseFolders parses the output of --folders, one "name:unread/total" per
// line
func ParseFolders(out string) []types.Folder {
	var folders []types.Folder
	for _, line := range strings.Split(out, "\n") {
		m := folderLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		folders = append(folders, types.Folder{
			Name:   m[1],
			Unread: atoi(m[2]),
			Total:  atoi(m[3]),
		})
	}
	return folders
}

// ParseConfig parses key=value lines, turning the two characters \n in a
// value into a newline
func ParseConfig(out string) map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		m := configLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		values[m[1]] = strings.ReplaceAll(m[2], `\n`, "\n")
	}
	return values
}

// SplitBodies splits NUL-separated body output into exactly want bodies.
// A trailing empty segment is not counted.
func SplitBodies(out string, want int) ([]string, error) {
	bodies := strings.Split(out, "\x00")
	if len(bodies) > 0 && bodies[len(bodies)-1] == "" {
		bodies = bodies[:len(bodies)-1]
	}
	if len(bodies) != want {
		return nil, &CountMismatchError{Requested: want, Received: len(bodies)}
	}
	return bodies, nil
}
