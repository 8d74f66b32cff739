package tools

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/internal/email"
)

// ListHeadersTool returns the headers shown in the selected folder
type ListHeadersTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewListHeadersTool creates a new list headers tool
func NewListHeadersTool(manager *email.Manager, logger *logrus.Logger) *ListHeadersTool {
	return &ListHeadersTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *ListHeadersTool) Name() string {
	return "list_headers"
}

// Description returns the tool description
func (t *ListHeadersTool) Description() string {
	return "List the loaded headers of the selected folder that pass all active filters, newest first"
}

// InputSchema returns the JSON schema for tool inputs
func (t *ListHeadersTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"limit": property("integer", "Optional: Maximum number of headers to return"),
	})
}

// Execute executes the tool
func (t *ListHeadersTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	limit, ok, err := intParam(params, "limit")
	if err != nil {
		return nil, err
	}
	view := t.manager.View()
	if ok && limit >= 0 && limit < len(view.Headers) {
		view.Headers = view.Headers[:limit]
	}
	return view, nil
}

// MoreHeadersTool loads older headers of the selected folder
type MoreHeadersTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewMoreHeadersTool creates a new more headers tool
func NewMoreHeadersTool(manager *email.Manager, logger *logrus.Logger) *MoreHeadersTool {
	return &MoreHeadersTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *MoreHeadersTool) Name() string {
	return "more_headers"
}

// Description returns the tool description
func (t *MoreHeadersTool) Description() string {
	return "Load older headers: a percentage of the folder total, or the default batch if omitted"
}

// InputSchema returns the JSON schema for tool inputs
func (t *MoreHeadersTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"percentage": property("integer", "Optional: Percentage of the folder total to load (0-100)"),
	})
}

// Execute executes the tool
func (t *MoreHeadersTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	pct, ok, err := intParam(params, "percentage")
	if err != nil {
		return nil, err
	}
	var percentage *int
	if ok {
		if pct < 0 || pct > 100 {
			return nil, fmt.Errorf("percentage must be between 0 and 100")
		}
		percentage = &pct
	}
	return t.manager.More(ctx, percentage)
}

// RefreshHeadersTool picks up newly arrived headers
type RefreshHeadersTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewRefreshHeadersTool creates a new refresh headers tool
func NewRefreshHeadersTool(manager *email.Manager, logger *logrus.Logger) *RefreshHeadersTool {
	return &RefreshHeadersTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *RefreshHeadersTool) Name() string {
	return "refresh_headers"
}

// Description returns the tool description
func (t *RefreshHeadersTool) Description() string {
	return "Re-read the header store and add headers that arrived since the last load"
}

// InputSchema returns the JSON schema for tool inputs
func (t *RefreshHeadersTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{})
}

// Execute executes the tool
func (t *RefreshHeadersTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return t.manager.RefreshHeaders(ctx)
}

// ToggleReadTool flips the read flag of one message
type ToggleReadTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewToggleReadTool creates a new toggle read tool
func NewToggleReadTool(manager *email.Manager, logger *logrus.Logger) *ToggleReadTool {
	return &ToggleReadTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *ToggleReadTool) Name() string {
	return "toggle_read"
}

// Description returns the tool description
func (t *ToggleReadTool) Description() string {
	return "Toggle the read flag of a loaded message in the selected folder"
}

// InputSchema returns the JSON schema for tool inputs
func (t *ToggleReadTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"uid": property("integer", "Message UID"),
	}, "uid")
}

// Execute executes the tool
func (t *ToggleReadTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	uid, err := requiredInt(params, "uid")
	if err != nil {
		return nil, err
	}
	id, err := t.manager.ToggleRead(uid)
	if err != nil {
		return nil, err
	}
	return Pending{ID: id}, nil
}

// MarkAllReadTool marks every shown unread message read
type MarkAllReadTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewMarkAllReadTool creates a new mark all read tool
func NewMarkAllReadTool(manager *email.Manager, logger *logrus.Logger) *MarkAllReadTool {
	return &MarkAllReadTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *MarkAllReadTool) Name() string {
	return "mark_all_read"
}

// Description returns the tool description
func (t *MarkAllReadTool) Description() string {
	return "Mark every unread message that passes the active filters as read"
}

// InputSchema returns the JSON schema for tool inputs
func (t *MarkAllReadTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{})
}

// Execute executes the tool
func (t *MarkAllReadTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	id, err := t.manager.MarkAllRead()
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return map[string]interface{}{
			"success": true,
			"message": "No unread messages shown",
		}, nil
	}
	return Pending{ID: id}, nil
}
