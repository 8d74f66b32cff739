package mailtool

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/emersion/go-imap"
)

// maxSetSize bounds how many uids a parsed set may expand to
const maxSetSize = 1 << 20

// FormatUIDs renders uids in compact sequence-set notation, e.g. "1:3,7"
func FormatUIDs(uids []int) string {
	if len(uids) == 0 {
		return ""
	}
	set := new(imap.SeqSet)
	for _, uid := range uids {
		if uid > 0 {
			set.AddNum(uint32(uid))
		}
	}
	return set.String()
}

// ParseUIDs expands a sequence set such as "1:5,9" into its uids in
// ascending order. Open ranges ("5:*") are rejected since the largest uid is
// not known here.
func ParseUIDs(s string) ([]int, error) {
	set, err := imap.ParseSeqSet(s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse uid set %q: %w", s, err)
	}

	seen := make(map[int]bool)
	var uids []int
	for _, seq := range set.Set {
		if seq.Start == 0 || seq.Stop == 0 {
			return nil, fmt.Errorf("uid set %q has an open range", s)
		}
		start, stop := seq.Start, seq.Stop
		if start > stop {
			start, stop = stop, start
		}
		if stop-start >= maxSetSize {
			return nil, fmt.Errorf("uid set %q is too large", s)
		}
		for uid := uint64(start); uid <= uint64(stop); uid++ {
			if !seen[int(uid)] {
				seen[int(uid)] = true
				uids = append(uids, int(uid))
			}
		}
	}
	sort.Ints(uids)
	return uids, nil
}

func uidArgs(uids []int) []string {
	args := make([]string, len(uids))
	for i, uid := range uids {
		args[i] = strconv.Itoa(uid)
	}
	return args
}
