package tools

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/internal/email"
)

// ReadBodyTool fetches the body of a message for display
type ReadBodyTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewReadBodyTool creates a new read body tool
func NewReadBodyTool(manager *email.Manager, logger *logrus.Logger) *ReadBodyTool {
	return &ReadBodyTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *ReadBodyTool) Name() string {
	return "read_body"
}

// Description returns the tool description
func (t *ReadBodyTool) Description() string {
	return "Fetch the body of a message in the selected folder, downloading it if needed"
}

// InputSchema returns the JSON schema for tool inputs
func (t *ReadBodyTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"uid":  property("integer", "Message UID"),
		"html": property("boolean", "Optional: HTML instead of plain text, the account preference if omitted"),
	}, "uid")
}

// Execute executes the tool
func (t *ReadBodyTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	uid, err := requiredInt(params, "uid")
	if err != nil {
		return nil, err
	}

	var html *bool
	if value, ok := params["html"].(bool); ok {
		html = &value
	}

	id, err := t.manager.ReadBody(uid, html)
	if err != nil {
		return nil, err
	}
	return Pending{ID: id}, nil
}

// DraftReplyTool prepares a reply to or forward of a message
type DraftReplyTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewDraftReplyTool creates a new draft reply tool
func NewDraftReplyTool(manager *email.Manager, logger *logrus.Logger) *DraftReplyTool {
	return &DraftReplyTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *DraftReplyTool) Name() string {
	return "draft_reply"
}

// Description returns the tool description
func (t *DraftReplyTool) Description() string {
	return "Prepare a reply or forward of a loaded message with recipients, subject and quoted body; nothing is sent"
}

// InputSchema returns the JSON schema for tool inputs
func (t *DraftReplyTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"uid": property("integer", "Message UID"),
		"kind": map[string]interface{}{
			"type":        "string",
			"enum":        []string{string(email.DraftReply), string(email.DraftForward)},
			"description": "Optional: reply (default) or forward",
		},
	}, "uid")
}

// Execute executes the tool
func (t *DraftReplyTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	uid, err := requiredInt(params, "uid")
	if err != nil {
		return nil, err
	}

	kind := email.DraftKind(stringParam(params, "kind"))
	if kind == "" {
		kind = email.DraftReply
	}

	id, err := t.manager.DraftReply(uid, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to draft %s: %w", kind, err)
	}
	return Pending{ID: id}, nil
}
