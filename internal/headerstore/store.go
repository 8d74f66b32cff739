package headerstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/pkg/types"
)

// ErrNotFound is returned when a header file does not exist, e.g. the
// message was deleted or has not been synced yet
var ErrNotFound = errors.New("header not found")

// Kind selects one of the uid listings of a folder
type Kind string

const (
	KindAll    Kind = "all"
	KindUnread Kind = "unread"
)

var uidLine = regexp.MustCompile(`^\d+$`)

// Store reads the flat-file layout written by the mail tool:
//
//	<root>/<account>/<folder>/all
//	<root>/<account>/<folder>/unread
//	<root>/<account>/<folder>/headers/<uid>
type Store struct {
	root   string
	logger *logrus.Logger
}

// NewStore creates a new store rooted at dir
func NewStore(dir string, logger *logrus.Logger) *Store {
	return &Store{
		root:   dir,
		logger: logger,
	}
}

func (s *Store) folderDir(account, folder string) string {
	return filepath.Join(s.root, account, folder)
}

// ListUIDs returns the uids of the given listing sorted descending.
// A missing listing is an empty folder, not an error. Lines that are not
// plain integers are dropped since the file may be mid-write.
func (s *Store) ListUIDs(account, folder string, kind Kind) ([]int, error) {
	path := filepath.Join(s.folderDir(account, folder), string(kind))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("failed to read uid list: %w", err)
	}

	uids := make([]int, 0, strings.Count(string(data), "\n")+1)
	for _, line := range strings.Split(string(data), "\n") {
		if !uidLine.MatchString(line) {
			continue
		}
		uid, err := strconv.Atoi(line)
		if err != nil {
			continue
		}
		uids = append(uids, uid)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(uids)))

	// the log is append-only, a uid may be listed twice
	deduped := uids[:0]
	for i, uid := range uids {
		if i > 0 && uid == uids[i-1] {
			continue
		}
		deduped = append(deduped, uid)
	}
	return deduped, nil
}

// UnreadSet returns the unread uids of a folder as a set
func (s *Store) UnreadSet(account, folder string) (map[int]bool, error) {
	uids, err := s.ListUIDs(account, folder, KindUnread)
	if err != nil {
		return nil, err
	}
	set := make(map[int]bool, len(uids))
	for _, uid := range uids {
		set[uid] = true
	}
	return set, nil
}

// HeaderPath returns the path of the header file for uid
func (s *Store) HeaderPath(account, folder string, uid int) string {
	return filepath.Join(s.folderDir(account, folder), "headers", strconv.Itoa(uid))
}

// ReadHeader reads and parses one header file. IsSent is derived from the
// folder; Read is left false since it depends on the unread listing.
func (s *Store) ReadHeader(account, folder string, uid int) (types.Header, error) {
	path := s.HeaderPath(account, folder, uid)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.Header{}, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return types.Header{}, fmt.Errorf("failed to read header: %w", err)
	}

	hdr, err := ParseHeader(path, uid, data)
	if err != nil {
		return types.Header{}, err
	}
	hdr.IsSent = folder == types.FolderSent
	return hdr, nil
}

// ReadHeaders reads the headers for uids in order. Records that are missing
// or malformed are dropped from the result and returned in dropped; they
// never fail the rest of the batch.
func (s *Store) ReadHeaders(account, folder string, uids []int, unread map[int]bool) (headers []types.Header, dropped []error) {
	headers = make([]types.Header, 0, len(uids))
	for _, uid := range uids {
		hdr, err := s.ReadHeader(account, folder, uid)
		if err != nil {
			entry := s.logger.WithError(err).WithFields(logrus.Fields{
				"account": account,
				"folder":  folder,
				"uid":     uid,
			})
			var malformed *MalformedHeaderError
			if errors.As(err, &malformed) {
				entry.Warn("Malformed header file")
			} else {
				entry.Info("Missing header file")
			}
			dropped = append(dropped, err)
			continue
		}
		hdr.Read = !unread[uid]
		headers = append(headers, hdr)
	}
	return headers, dropped
}
