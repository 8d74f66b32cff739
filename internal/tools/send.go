package tools

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/internal/email"
	"github.com/brandon/mcp-mailview/pkg/types"
)

// SendEmailTool sends a new email
type SendEmailTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewSendEmailTool creates a new send email tool
func NewSendEmailTool(manager *email.Manager, logger *logrus.Logger) *SendEmailTool {
	return &SendEmailTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *SendEmailTool) Name() string {
	return "send_email"
}

// Description returns the tool description
func (t *SendEmailTool) Description() string {
	return "Send a plain text email with optional CC, BCC and attachments"
}

// InputSchema returns the JSON schema for tool inputs
func (t *SendEmailTool) InputSchema() map[string]interface{} {
	addresses := func(description string) map[string]interface{} {
		return map[string]interface{}{
			"type":        []string{"string", "array"},
			"items":       map[string]interface{}{"type": "string"},
			"description": description,
		}
	}
	return objectSchema(map[string]interface{}{
		"account_name": property("string", "Optional: Account to send from, the selected account if omitted"),
		"to":           addresses("Recipient email address(es) (comma-separated or array)"),
		"cc":           addresses("Optional: CC recipients"),
		"bcc":          addresses("Optional: BCC recipients"),
		"subject":      property("string", "Email subject"),
		"body":         property("string", "Plain text body"),
		"attachments": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Optional: Array of attachment file paths",
		},
	}, "to", "subject")
}

// Execute executes the tool
func (t *SendEmailTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	draft := types.Draft{
		To:          listParam(params, "to"),
		CC:          listParam(params, "cc"),
		BCC:         listParam(params, "bcc"),
		Subject:     stringParam(params, "subject"),
		Body:        stringParam(params, "body"),
		Attachments: listParam(params, "attachments"),
	}

	id, err := t.manager.Send(stringParam(params, "account_name"), draft)
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}
	return Pending{ID: id}, nil
}
