package tools

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandon/mcp-mailview/internal/config"
	"github.com/brandon/mcp-mailview/internal/email"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newRegistry() *Registry {
	logger := testLogger()
	manager := email.NewManager(config.DefaultConfig(), nil, nil, nil, nil, logger)
	return NewRegistry(manager, nil, logger)
}

func TestParams(t *testing.T) {
	params := map[string]interface{}{
		"name":  "  work ",
		"uid":   float64(42),
		"frac":  1.5,
		"flag":  true,
		"to":    "a@example.com, ,b@example.com",
		"cc":    []interface{}{"c@example.com", 7, " "},
		"blank": "   ",
	}

	assert.Equal(t, "  work ", stringParam(params, "name"))
	name, err := requiredString(params, "name")
	require.NoError(t, err)
	assert.Equal(t, "work", name)
	_, err = requiredString(params, "blank")
	assert.EqualError(t, err, "blank is required")

	uid, err := requiredInt(params, "uid")
	require.NoError(t, err)
	assert.Equal(t, 42, uid)
	_, err = requiredInt(params, "frac")
	assert.Error(t, err)
	_, err = requiredInt(params, "missing")
	assert.EqualError(t, err, "missing is required")
	_, ok, err := intParam(params, "missing")
	assert.False(t, ok)
	assert.NoError(t, err)

	assert.True(t, boolParam(params, "flag"))
	assert.False(t, boolParam(params, "name"))

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, listParam(params, "to"))
	assert.Equal(t, []string{"c@example.com"}, listParam(params, "cc"))
	assert.Empty(t, listParam(params, "missing"))
}

func TestRegistryDefinitions(t *testing.T) {
	reg := newRegistry()

	defs := reg.GetToolDefinitions()
	require.NotEmpty(t, defs)
	for i := 1; i < len(defs); i++ {
		assert.Less(t, defs[i-1]["name"], defs[i]["name"])
	}
	for _, def := range defs {
		schema := def["inputSchema"].(map[string]interface{})
		assert.Equal(t, "object", schema["type"], def["name"])
		assert.NotEmpty(t, def["description"], def["name"])
	}

	_, ok := reg.GetTool("cache_stats")
	assert.False(t, ok)
	_, ok = reg.GetTool("draft_reply")
	assert.True(t, ok)
}

func TestApplyFilterDescribesEscapes(t *testing.T) {
	tool, ok := newRegistry().GetTool("apply_filter")
	require.True(t, ok)

	desc := tool.Description()
	assert.Contains(t, desc, "Escape , ( ) with a backslash")
	assert.Contains(t, desc, `write \\ for a literal backslash`)
}

func TestToolsWithoutSelection(t *testing.T) {
	reg := newRegistry()
	ctx := context.Background()

	tool, _ := reg.GetTool("list_headers")
	result, err := tool.Execute(ctx, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "0 / 0", result.(email.View).Counter)

	tool, _ = reg.GetTool("toggle_read")
	_, err = tool.Execute(ctx, map[string]interface{}{})
	assert.EqualError(t, err, "uid is required")
	_, err = tool.Execute(ctx, map[string]interface{}{"uid": float64(3)})
	assert.ErrorIs(t, err, email.ErrNoAccount)

	tool, _ = reg.GetTool("more_headers")
	_, err = tool.Execute(ctx, map[string]interface{}{"percentage": float64(120)})
	assert.Error(t, err)

	tool, _ = reg.GetTool("send_email")
	_, err = tool.Execute(ctx, map[string]interface{}{"account_name": "work", "subject": "hi"})
	assert.ErrorIs(t, err, email.ErrNoRecipients)

	tool, _ = reg.GetTool("set_filter_button")
	_, err = tool.Execute(ctx, map[string]interface{}{"name": "unread", "checked": true})
	assert.Error(t, err)

	tool, _ = reg.GetTool("notices")
	result, err = tool.Execute(ctx, map[string]interface{}{})
	require.NoError(t, err)
	assert.Empty(t, result.(map[string]interface{})["log"])
}
