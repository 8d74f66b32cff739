package tools

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/internal/email"
)

// ListAccountsTool lists the accounts known to the mail tool
type ListAccountsTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewListAccountsTool creates a new list accounts tool
func NewListAccountsTool(manager *email.Manager, logger *logrus.Logger) *ListAccountsTool {
	return &ListAccountsTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *ListAccountsTool) Name() string {
	return "list_accounts"
}

// Description returns the tool description
func (t *ListAccountsTool) Description() string {
	return "List email accounts with unread/total counts and last update time"
}

// InputSchema returns the JSON schema for tool inputs
func (t *ListAccountsTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{})
}

// Execute executes the tool
func (t *ListAccountsTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	accounts, err := t.manager.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	result := make([]map[string]interface{}, len(accounts))
	for i, acc := range accounts {
		result[i] = map[string]interface{}{
			"name":     acc.Name,
			"unread":   acc.Unread,
			"total":    acc.Total,
			"selected": acc.Name == t.manager.Account(),
		}
		if updated := acc.LastUpdatedTime(); !updated.IsZero() {
			result[i]["last_updated"] = humanize.Time(updated)
		}
		if acc.Error != "" {
			result[i]["error"] = acc.Error
		}
	}

	return result, nil
}

// SelectAccountTool selects an account and loads its inbox
type SelectAccountTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewSelectAccountTool creates a new select account tool
func NewSelectAccountTool(manager *email.Manager, logger *logrus.Logger) *SelectAccountTool {
	return &SelectAccountTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *SelectAccountTool) Name() string {
	return "select_account"
}

// Description returns the tool description
func (t *SelectAccountTool) Description() string {
	return "Select an account; loads its inbox headers and filter buttons and clears all filters"
}

// InputSchema returns the JSON schema for tool inputs
func (t *SelectAccountTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"account_name": property("string", "Account to select"),
	}, "account_name")
}

// Execute executes the tool
func (t *SelectAccountTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	account, err := requiredString(params, "account_name")
	if err != nil {
		return nil, err
	}
	return t.manager.SelectAccount(ctx, account)
}

// ListFoldersTool lists the folders of an account
type ListFoldersTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewListFoldersTool creates a new list folders tool
func NewListFoldersTool(manager *email.Manager, logger *logrus.Logger) *ListFoldersTool {
	return &ListFoldersTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *ListFoldersTool) Name() string {
	return "list_folders"
}

// Description returns the tool description
func (t *ListFoldersTool) Description() string {
	return "List folders of an account with unread/total counts"
}

// InputSchema returns the JSON schema for tool inputs
func (t *ListFoldersTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"account_name": property("string", "Optional: Account name, the selected account if omitted"),
	})
}

// Execute executes the tool
func (t *ListFoldersTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	folders, err := t.manager.Folders(ctx, stringParam(params, "account_name"))
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

// SelectFolderTool selects a folder of the selected account
type SelectFolderTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewSelectFolderTool creates a new select folder tool
func NewSelectFolderTool(manager *email.Manager, logger *logrus.Logger) *SelectFolderTool {
	return &SelectFolderTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *SelectFolderTool) Name() string {
	return "select_folder"
}

// Description returns the tool description
func (t *SelectFolderTool) Description() string {
	return "Select a folder of the selected account; loads its newest headers and clears all filters"
}

// InputSchema returns the JSON schema for tool inputs
func (t *SelectFolderTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"folder": property("string", "Folder name, e.g. inbox or sent"),
	}, "folder")
}

// Execute executes the tool
func (t *SelectFolderTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	folder, err := requiredString(params, "folder")
	if err != nil {
		return nil, err
	}
	return t.manager.SelectFolder(ctx, folder)
}

// UpdateAccountTool syncs accounts through the mail tool
type UpdateAccountTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewUpdateAccountTool creates a new update account tool
func NewUpdateAccountTool(manager *email.Manager, logger *logrus.Logger) *UpdateAccountTool {
	return &UpdateAccountTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *UpdateAccountTool) Name() string {
	return "update_account"
}

// Description returns the tool description
func (t *UpdateAccountTool) Description() string {
	return "Download new mail for one account, or all accounts if omitted; returns when the update finishes"
}

// InputSchema returns the JSON schema for tool inputs
func (t *UpdateAccountTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"account_name": property("string", "Optional: Account to update"),
	})
}

// Execute executes the tool
func (t *UpdateAccountTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return Pending{ID: t.manager.UpdateAccount(stringParam(params, "account_name"))}, nil
}
