package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/internal/cache"
	"github.com/brandon/mcp-mailview/internal/config"
	"github.com/brandon/mcp-mailview/internal/email"
	"github.com/brandon/mcp-mailview/internal/mailtool"
	"github.com/brandon/mcp-mailview/internal/tools"
)

// Version is reported in the initialize response
var Version = "dev"

// Server represents the MCP server. Requests and worker completions are
// handled on the goroutine running Run, which owns the manager.
type Server struct {
	logger  *logrus.Logger
	tools   *tools.Registry
	manager *email.Manager
	in      io.Reader
	out     io.Writer

	// rpc ids of tool calls waiting for a worker, keyed by worker id
	waiting map[uint64]interface{}
}

// NewServer creates a new MCP server instance on stdio. archive may be nil.
func NewServer(manager *email.Manager, archive *cache.Store, logger *logrus.Logger) *Server {
	return &Server{
		logger:  logger,
		tools:   tools.NewRegistry(manager, archive, logger),
		manager: manager,
		in:      os.Stdin,
		out:     os.Stdout,
		waiting: make(map[uint64]interface{}),
	}
}

// SetIO replaces the stdio transport
func (s *Server) SetIO(in io.Reader, out io.Writer) {
	s.in = in
	s.out = out
}

// Run serves requests until ctx is done or the input ends. At end of input
// it keeps running until every deferred tool call has been answered.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting MCP server with stdio transport")

	requests := make(chan map[string]interface{})
	readErr := make(chan error, 1)
	go s.read(ctx, requests, readErr)

	encoder := json.NewEncoder(s.out)
	send := func(resp map[string]interface{}) {
		if resp == nil {
			return
		}
		if err := encoder.Encode(resp); err != nil {
			s.logger.WithError(err).Error("Failed to encode response")
		}
	}

	inputDone := false
	for {
		if inputDone && len(s.waiting) == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil

		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("failed to decode request: %w", err)
			}
			inputDone = true
			requests = nil

		case req := <-requests:
			send(s.handleRequest(ctx, req))

		case c := <-s.manager.Completions():
			send(s.handleCompletion(ctx, c))
		}
	}
}

// read decodes requests until end of input. A nil error on readErr means
// the input ended cleanly.
func (s *Server) read(ctx context.Context, requests chan<- map[string]interface{}, readErr chan<- error) {
	decoder := json.NewDecoder(s.in)
	for {
		var req map[string]interface{}
		if err := decoder.Decode(&req); err != nil {
			if err == io.EOF {
				err = nil
			}
			readErr <- err
			return
		}
		select {
		case requests <- req:
		case <-ctx.Done():
			return
		}
	}
}

func response(id interface{}, result map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
}

func errorResponse(id interface{}, code int, message string) map[string]interface{} {
	return map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}
}

func textContent(value interface{}, isError bool) map[string]interface{} {
	text, err := json.Marshal(value)
	if err != nil {
		text = []byte(fmt.Sprintf("%v", value))
	}
	result := map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": string(text),
			},
		},
	}
	if isError {
		result["isError"] = true
	}
	return result
}

// handleRequest processes an MCP request. It returns nil when there is
// nothing to send yet.
func (s *Server) handleRequest(ctx context.Context, req map[string]interface{}) map[string]interface{} {
	method, _ := req["method"].(string)
	id := req["id"]

	switch {
	case method == "initialize":
		return response(id, map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    config.AppName,
				"version": Version,
			},
		})

	case strings.HasPrefix(method, "notifications/"):
		return nil

	case method == "tools/list":
		return response(id, map[string]interface{}{
			"tools": s.tools.GetToolDefinitions(),
		})

	case method == "tools/call":
		params, _ := req["params"].(map[string]interface{})
		toolName, _ := params["name"].(string)
		arguments, _ := params["arguments"].(map[string]interface{})
		if arguments == nil {
			arguments = map[string]interface{}{}
		}

		tool, exists := s.tools.GetTool(toolName)
		if !exists {
			return errorResponse(id, -32601, fmt.Sprintf("Tool not found: %s", toolName))
		}

		result, err := tool.Execute(ctx, arguments)
		if err != nil {
			s.logger.WithError(err).WithField("tool", toolName).Warn("Tool failed")
			return errorResponse(id, -32603, err.Error())
		}

		if pending, ok := result.(tools.Pending); ok {
			s.waiting[pending.ID] = id
			s.logger.WithFields(logrus.Fields{
				"tool":   toolName,
				"worker": pending.ID,
			}).Debug("Deferred tool response")
			return nil
		}

		return response(id, textContent(result, false))
	}

	return errorResponse(id, -32601, fmt.Sprintf("Method not found: %s", method))
}

// handleCompletion applies a worker completion and answers the tool call
// waiting for it, if any
func (s *Server) handleCompletion(ctx context.Context, c mailtool.Completion) map[string]interface{} {
	res := s.manager.HandleCompletion(ctx, c)

	id, ok := s.waiting[res.ID]
	if !ok {
		return nil
	}
	delete(s.waiting, res.ID)

	value := map[string]interface{}{
		"worker_id": res.ID,
		"success":   res.Success,
	}
	if res.Stale {
		value["stale"] = true
	}
	if res.Value != nil {
		value["value"] = res.Value
	}
	if res.Value == nil || !res.Success {
		value["output"] = res.Output
	}
	if res.Err != nil {
		value["error"] = res.Err.Error()
	}
	return response(id, textContent(value, !res.Success))
}
