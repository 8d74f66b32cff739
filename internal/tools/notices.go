package tools

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/internal/cache"
	"github.com/brandon/mcp-mailview/internal/email"
)

const defaultLogTail = 50

// NoticesTool drains pending notices and returns the update log tail
type NoticesTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewNoticesTool creates a new notices tool
func NewNoticesTool(manager *email.Manager, logger *logrus.Logger) *NoticesTool {
	return &NoticesTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *NoticesTool) Name() string {
	return "notices"
}

// Description returns the tool description
func (t *NoticesTool) Description() string {
	return "Return and clear pending notices, with the last lines of the account update log"
}

// InputSchema returns the JSON schema for tool inputs
func (t *NoticesTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"log_lines": property("integer", fmt.Sprintf("Optional: Number of log lines (default %d)", defaultLogTail)),
	})
}

// Execute executes the tool
func (t *NoticesTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	lines, ok, err := intParam(params, "log_lines")
	if err != nil {
		return nil, err
	}
	if !ok {
		lines = defaultLogTail
	}

	return map[string]interface{}{
		"notices": t.manager.Notices(),
		"log":     t.manager.Log().Tail(lines),
	}, nil
}

// CacheStatsTool reports the size of the body archive
type CacheStatsTool struct {
	archive *cache.Store
	logger  *logrus.Logger
}

// NewCacheStatsTool creates a new cache stats tool
func NewCacheStatsTool(archive *cache.Store, logger *logrus.Logger) *CacheStatsTool {
	return &CacheStatsTool{archive: archive, logger: logger}
}

// Name returns the tool name
func (t *CacheStatsTool) Name() string {
	return "cache_stats"
}

// Description returns the tool description
func (t *CacheStatsTool) Description() string {
	return "Show how many message bodies are archived per account and folder"
}

// InputSchema returns the JSON schema for tool inputs
func (t *CacheStatsTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{})
}

// Execute executes the tool
func (t *CacheStatsTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	stats, err := t.archive.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to read cache stats: %w", err)
	}

	result := make([]map[string]interface{}, len(stats))
	for i, s := range stats {
		result[i] = map[string]interface{}{
			"account":     s.Account,
			"folder":      s.Folder,
			"bodies":      s.Bodies,
			"size":        humanize.Bytes(uint64(s.Bytes)),
			"last_cached": humanize.Time(s.LastCached),
		}
	}
	return result, nil
}
