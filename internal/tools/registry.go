package tools

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/internal/cache"
	"github.com/brandon/mcp-mailview/internal/email"
)

// Registry manages MCP tools
type Registry struct {
	logger  *logrus.Logger
	manager *email.Manager
	archive *cache.Store
	tools   map[string]Tool
}

// Tool represents an MCP tool. Tools run on the goroutine that owns the
// manager; a tool that starts a worker returns Pending.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, params map[string]interface{}) (interface{}, error)
}

// NewRegistry creates a new tool registry. archive may be nil when no body
// archive is configured.
func NewRegistry(manager *email.Manager, archive *cache.Store, logger *logrus.Logger) *Registry {
	reg := &Registry{
		logger:  logger,
		manager: manager,
		archive: archive,
		tools:   make(map[string]Tool),
	}

	reg.registerTools()

	return reg
}

// registerTools registers all available tools
func (r *Registry) registerTools() {
	toolList := []Tool{
		NewListAccountsTool(r.manager, r.logger),
		NewSelectAccountTool(r.manager, r.logger),
		NewListFoldersTool(r.manager, r.logger),
		NewSelectFolderTool(r.manager, r.logger),
		NewUpdateAccountTool(r.manager, r.logger),
		NewListHeadersTool(r.manager, r.logger),
		NewMoreHeadersTool(r.manager, r.logger),
		NewRefreshHeadersTool(r.manager, r.logger),
		NewToggleReadTool(r.manager, r.logger),
		NewMarkAllReadTool(r.manager, r.logger),
		NewApplyFilterTool(r.manager, r.logger),
		NewRemoveFilterTool(r.manager, r.logger),
		NewListFilterButtonsTool(r.manager, r.logger),
		NewSetFilterButtonTool(r.manager, r.logger),
		NewReadBodyTool(r.manager, r.logger),
		NewDraftReplyTool(r.manager, r.logger),
		NewSendEmailTool(r.manager, r.logger),
		NewNoticesTool(r.manager, r.logger),
	}
	if r.archive != nil {
		toolList = append(toolList, NewCacheStatsTool(r.archive, r.logger))
	}

	for _, tool := range toolList {
		r.tools[tool.Name()] = tool
		r.logger.WithField("tool", tool.Name()).Debug("Registered tool")
	}

	r.logger.WithField("count", len(r.tools)).Info("Registered tools")
}

// GetTool returns a tool by name
func (r *Registry) GetTool(name string) (Tool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

// ListTools returns all registered tools sorted by name
func (r *Registry) ListTools() []Tool {
	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name() < tools[j].Name()
	})
	return tools
}

// GetToolDefinitions returns tool definitions for MCP
func (r *Registry) GetToolDefinitions() []map[string]interface{} {
	tools := r.ListTools()
	definitions := make([]map[string]interface{}, 0, len(tools))
	for _, tool := range tools {
		definitions = append(definitions, map[string]interface{}{
			"name":        tool.Name(),
			"description": tool.Description(),
			"inputSchema": tool.InputSchema(),
		})
	}
	return definitions
}
