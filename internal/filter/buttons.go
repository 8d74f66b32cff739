package filter

import (
	"regexp"
	"strings"

	"github.com/brandon/mcp-mailview/pkg/types"
)

const (
	// UnreadButton is always the first filter button
	UnreadButton = "unread"
	// QuickFilter is the name of the free-text search filter
	QuickFilter = "quick-filter"
)

var filterKey = regexp.MustCompile(`(?i)^filter\.(\w+)$`)

// Buttons returns the unread button followed by the buttons named in order
// that have a query in queries
func Buttons(queries map[string]string, order []string) []types.FilterButton {
	buttons := []types.FilterButton{{Name: UnreadButton, Query: "read=false"}}
	for _, name := range order {
		if query, ok := queries[name]; ok {
			buttons = append(buttons, types.FilterButton{Name: name, Query: query})
		}
	}
	return buttons
}

// ButtonsFromConfig reads filter buttons from account config values:
// filter.<name>=<query> entries, shown in the order given by
// filterButtons=<name>,<name>
func ButtonsFromConfig(values map[string]string) []types.FilterButton {
	queries := make(map[string]string)
	var order []string
	for key, value := range values {
		if m := filterKey.FindStringSubmatch(key); m != nil {
			queries[m[1]] = value
		} else if key == "filterButtons" {
			for _, name := range strings.Split(value, ",") {
				order = append(order, strings.TrimSpace(name))
			}
		}
	}
	return Buttons(queries, order)
}
