package mailtool

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/pkg/types"
)

// DefaultBin is the mail tool used when none is configured
const DefaultBin = "/opt/qtemail/bin/email.pl"

// Tool runs the external mail tool. The tool owns all network access and
// the on-disk header store; this package only builds argv and parses output.
type Tool struct {
	bin    string
	logger *logrus.Logger
}

// New creates a tool runner for the executable at bin
func New(bin string, logger *logrus.Logger) *Tool {
	return &Tool{
		bin:    bin,
		logger: logger,
	}
}

// exitError converts the result of cmd.Wait into the package error types
func (t *Tool) exitError(args []string, output string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ToolError{Args: args, ExitCode: exitErr.ExitCode(), Output: output}
	}
	return fmt.Errorf("failed to run mail tool: %w", err)
}

// Output runs the tool to completion and returns its stdout
func (t *Tool) Output(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	t.logger.WithField("args", args).Debug("Running mail tool")
	err := cmd.Run()
	if stderr.Len() > 0 {
		t.logger.WithField("stderr", strings.TrimSpace(stderr.String())).Debug("Mail tool stderr")
	}
	return stdout.String(), t.exitError(args, stdout.String(), err)
}

// Stream runs the tool to completion, appending each stdout line to sink as
// it arrives. sink may be nil. The full stdout is returned.
func (t *Tool) Stream(ctx context.Context, sink *LogSink, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, t.bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to open mail tool stdout: %w", err)
	}

	t.logger.WithField("args", args).Debug("Starting mail tool")
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start mail tool: %w", err)
	}

	var out strings.Builder
	reader := bufio.NewReader(stdout)
	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			out.WriteString(line)
			sink.Append(line)
		}
		if readErr != nil {
			if readErr != io.EOF {
				t.logger.WithError(readErr).Warn("Failed to read mail tool output")
			}
			break
		}
	}

	return out.String(), t.exitError(args, out.String(), cmd.Wait())
}

// Accounts lists the configured accounts
func (t *Tool) Accounts(ctx context.Context) ([]types.Account, error) {
	out, err := t.Output(ctx, "--accounts")
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return ParseAccounts(out), nil
}

// Folders lists the folders of an account
func (t *Tool) Folders(ctx context.Context, account string) ([]types.Folder, error) {
	out, err := t.Output(ctx, "--folders", account)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return ParseFolders(out), nil
}

// ReadConfig reads the key=value config of an account
func (t *Tool) ReadConfig(ctx context.Context, account string) (map[string]string, error) {
	out, err := t.Output(ctx, "--read-config", account)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(out), nil
}

// FetchBodies reads the bodies of uids from the tool's local cache, one per
// uid in request order. Messages are never downloaded by this call.
func (t *Tool) FetchBodies(ctx context.Context, account, folder string, uids []int, html bool) ([]string, error) {
	out, err := t.Output(ctx, BodiesArgs(account, folder, uids, html)...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bodies: %w", err)
	}
	bodies, err := SplitBodies(out, len(uids))
	if err != nil {
		t.logger.WithFields(logrus.Fields{
			"account": account,
			"folder":  folder,
			"uids":    FormatUIDs(uids),
		}).WithError(err).Error("Body fetch returned the wrong number of bodies")
		return nil, err
	}
	return bodies, nil
}

func bodyFlag(html bool) string {
	if html {
		return "--body-html"
	}
	return "--body-plain"
}

// BodiesArgs builds the batched NUL-separated body fetch
func BodiesArgs(account, folder string, uids []int, html bool) []string {
	args := []string{bodyFlag(html), "--no-download", "-0", "--folder=" + folder, account}
	return append(args, uidArgs(uids)...)
}
