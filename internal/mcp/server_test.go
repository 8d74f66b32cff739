package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandon/mcp-mailview/internal/config"
	"github.com/brandon/mcp-mailview/internal/email"
	"github.com/brandon/mcp-mailview/internal/headerstore"
	"github.com/brandon/mcp-mailview/internal/mailtool"
)

const fakeTool = `#!/bin/sh
case "$1" in
--accounts)
  printf 'work:0:never:0s:0s:1/2:\n'
  ;;
--read-config)
  printf 'prefer_html=false\n'
  ;;
--body-plain|--body-html)
  printf 'hello <img src="cid:x">'
  ;;
esac
`

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0755))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	bin := filepath.Join(dir, "email.sh")
	writeFile(t, bin, fakeTool)

	root := filepath.Join(dir, "email")
	writeFile(t, filepath.Join(root, "work", "inbox", "all"), "1\n2\n")
	writeFile(t, filepath.Join(root, "work", "inbox", "unread"), "2\n")
	writeFile(t, filepath.Join(root, "work", "inbox", "headers", "1"), "From: a@example.com\nSubject: one\n")
	writeFile(t, filepath.Join(root, "work", "inbox", "headers", "2"), "From: b@example.com\nSubject: two\n")

	cfg := config.DefaultConfig()
	cfg.EmailDir = root
	cfg.EmailBin = bin

	logger := testLogger()
	tool := mailtool.New(bin, logger)
	manager := email.NewManager(cfg, tool, mailtool.NewRunner(tool, logger),
		headerstore.NewStore(root, logger), nil, logger)
	return NewServer(manager, nil, logger)
}

func call(id int, name string, args map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": args,
		},
	}
}

// serve runs the server over reqs and returns the responses keyed by id
func serve(t *testing.T, s *Server, reqs ...map[string]interface{}) map[int]map[string]interface{} {
	t.Helper()
	var in bytes.Buffer
	encoder := json.NewEncoder(&in)
	for _, req := range reqs {
		require.NoError(t, encoder.Encode(req))
	}

	var out bytes.Buffer
	s.SetIO(&in, &out)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, s.Run(ctx))
	require.NoError(t, ctx.Err(), "server did not finish")

	responses := make(map[int]map[string]interface{})
	decoder := json.NewDecoder(&out)
	for decoder.More() {
		var resp map[string]interface{}
		require.NoError(t, decoder.Decode(&resp))
		id, ok := resp["id"].(float64)
		require.True(t, ok, "response without id: %v", resp)
		responses[int(id)] = resp
	}
	return responses
}

// text decodes the text content of a tool result
func text(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	result, ok := resp["result"].(map[string]interface{})
	require.True(t, ok, "not a result: %v", resp)
	content := result["content"].([]interface{})
	raw := content[0].(map[string]interface{})["text"].(string)

	var value map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &value))
	return value
}

func TestServerProtocol(t *testing.T) {
	s := newTestServer(t)

	responses := serve(t, s,
		map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": "initialize"},
		map[string]interface{}{"jsonrpc": "2.0", "method": "notifications/initialized"},
		map[string]interface{}{"jsonrpc": "2.0", "id": 2, "method": "tools/list"},
		call(3, "nope", nil),
		map[string]interface{}{"jsonrpc": "2.0", "id": 4, "method": "bogus"},
	)
	require.Len(t, responses, 4)

	info := responses[1]["result"].(map[string]interface{})["serverInfo"].(map[string]interface{})
	assert.Equal(t, "mailview", info["name"])

	tools := responses[2]["result"].(map[string]interface{})["tools"].([]interface{})
	var names []string
	for _, tool := range tools {
		names = append(names, tool.(map[string]interface{})["name"].(string))
	}
	for _, name := range []string{"list_accounts", "select_folder", "apply_filter", "toggle_read", "read_body", "send_email"} {
		assert.Contains(t, names, name)
	}
	assert.NotContains(t, names, "cache_stats")

	assert.Equal(t, float64(-32601), responses[3]["error"].(map[string]interface{})["code"])
	assert.Contains(t, responses[4]["error"].(map[string]interface{})["message"], "bogus")
}

func TestServerDefersWorkerResults(t *testing.T) {
	s := newTestServer(t)

	responses := serve(t, s,
		call(1, "list_accounts", nil),
		call(2, "select_account", map[string]interface{}{"account_name": "work"}),
		call(3, "apply_filter", map[string]interface{}{"query": "read=false"}),
		call(4, "read_body", map[string]interface{}{"uid": 2}),
		call(5, "toggle_read", map[string]interface{}{"uid": 99}),
	)
	require.Len(t, responses, 5)

	accounts := responses[1]["result"].(map[string]interface{})["content"].([]interface{})
	assert.True(t, strings.Contains(accounts[0].(map[string]interface{})["text"].(string), `"name":"work"`))

	view := text(t, responses[2])
	assert.Equal(t, "2 / 2", view["counter"])
	assert.Equal(t, false, view["html_mode"])

	filtered := text(t, responses[3])
	assert.Equal(t, "(1 showing)  2 / 2", filtered["counter"])

	body := text(t, responses[4])
	assert.Equal(t, true, body["success"])
	value := body["value"].(map[string]interface{})
	assert.Equal(t, "hello <img >", value["body"])
	assert.Equal(t, float64(2), value["uid"])

	assert.Contains(t, responses[5]["error"].(map[string]interface{})["message"], "not loaded")
}
