package pager

// NoLimit disables a Query bound
const NoLimit = -1

// Query describes which uids of a folder listing to materialize
type Query struct {
	// Limit keeps at most this many uids after exclusion
	Limit int
	// Floor lets the tail shrink back to this many uids, dropping read
	// messages only, so unread mail inside Limit is never cut off
	Floor int
	// Exclude holds uids that are already materialized
	Exclude map[int]bool
	// MinUID drops uids below it; 0 keeps all
	MinUID int
}

// Select applies q to uids, which must be sorted descending, and returns the
// selected uids in the same order
func Select(uids []int, unread map[int]bool, q Query) []int {
	selected := make([]int, 0, len(uids))
	for _, uid := range uids {
		if q.MinUID > 0 && uid < q.MinUID {
			continue
		}
		if q.Exclude[uid] {
			continue
		}
		selected = append(selected, uid)
	}

	if q.Limit != NoLimit && len(selected) > q.Limit {
		selected = selected[:q.Limit]
	}
	if q.Floor != NoLimit {
		for len(selected) > q.Floor && !unread[selected[len(selected)-1]] {
			selected = selected[:len(selected)-1]
		}
	}
	return selected
}
