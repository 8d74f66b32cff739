package tools

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/internal/email"
	"github.com/brandon/mcp-mailview/internal/filter"
)

const filterSyntax = "Terms: FIELD~REGEX (Subject, From, To, Body), read=true|false, a bare word searches " +
	"Subject, From and To. Combine with All(a, b), Any(a, b), Not(a, b). Escape , ( ) with a backslash, and write \\\\ for a literal backslash."

// ApplyFilterTool registers a named filter over the loaded headers
type ApplyFilterTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewApplyFilterTool creates a new apply filter tool
func NewApplyFilterTool(manager *email.Manager, logger *logrus.Logger) *ApplyFilterTool {
	return &ApplyFilterTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *ApplyFilterTool) Name() string {
	return "apply_filter"
}

// Description returns the tool description
func (t *ApplyFilterTool) Description() string {
	return "Apply a filter to the loaded headers, replacing any filter with the same name. " + filterSyntax
}

// InputSchema returns the JSON schema for tool inputs
func (t *ApplyFilterTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"name":    property("string", "Optional: Filter name, the quick filter if omitted"),
		"query":   property("string", "Filter expression; empty removes the filter"),
		"negated": property("boolean", "Optional: Show only headers that do not match"),
	}, "query")
}

// Execute executes the tool
func (t *ApplyFilterTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	name := stringParam(params, "name")
	if name == "" {
		name = filter.QuickFilter
	}
	if err := t.manager.ReplaceFilter(ctx, name, stringParam(params, "query"), boolParam(params, "negated")); err != nil {
		return nil, err
	}
	return t.manager.View(), nil
}

// RemoveFilterTool removes a named filter
type RemoveFilterTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewRemoveFilterTool creates a new remove filter tool
func NewRemoveFilterTool(manager *email.Manager, logger *logrus.Logger) *RemoveFilterTool {
	return &RemoveFilterTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *RemoveFilterTool) Name() string {
	return "remove_filter"
}

// Description returns the tool description
func (t *RemoveFilterTool) Description() string {
	return "Remove a filter by name"
}

// InputSchema returns the JSON schema for tool inputs
func (t *RemoveFilterTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"name": property("string", "Filter name"),
	}, "name")
}

// Execute executes the tool
func (t *RemoveFilterTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	name, err := requiredString(params, "name")
	if err != nil {
		return nil, err
	}
	if !t.manager.RemoveFilter(name) {
		t.logger.WithField("filter", name).Debug("Filter was not active")
	}
	return t.manager.View(), nil
}

// ListFilterButtonsTool lists the filter buttons of the selected account
type ListFilterButtonsTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewListFilterButtonsTool creates a new list filter buttons tool
func NewListFilterButtonsTool(manager *email.Manager, logger *logrus.Logger) *ListFilterButtonsTool {
	return &ListFilterButtonsTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *ListFilterButtonsTool) Name() string {
	return "list_filter_buttons"
}

// Description returns the tool description
func (t *ListFilterButtonsTool) Description() string {
	return "List the preconfigured filter buttons of the selected account and whether they are applied"
}

// InputSchema returns the JSON schema for tool inputs
func (t *ListFilterButtonsTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{})
}

// Execute executes the tool
func (t *ListFilterButtonsTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return map[string]interface{}{
		"buttons": t.manager.Buttons(),
		"filters": t.manager.Filters(),
	}, nil
}

// SetFilterButtonTool checks or unchecks a filter button
type SetFilterButtonTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewSetFilterButtonTool creates a new set filter button tool
func NewSetFilterButtonTool(manager *email.Manager, logger *logrus.Logger) *SetFilterButtonTool {
	return &SetFilterButtonTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *SetFilterButtonTool) Name() string {
	return "set_filter_button"
}

// Description returns the tool description
func (t *SetFilterButtonTool) Description() string {
	return "Apply or clear a filter button, optionally negated"
}

// InputSchema returns the JSON schema for tool inputs
func (t *SetFilterButtonTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"name":    property("string", "Button name"),
		"checked": property("boolean", "Apply the button filter when true, remove it when false"),
		"negated": property("boolean", "Optional: Show only headers that do not match"),
	}, "name", "checked")
}

// Execute executes the tool
func (t *SetFilterButtonTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	name, err := requiredString(params, "name")
	if err != nil {
		return nil, err
	}
	if err := t.manager.SetButton(ctx, name, boolParam(params, "checked"), boolParam(params, "negated")); err != nil {
		return nil, err
	}
	return t.manager.View(), nil
}
