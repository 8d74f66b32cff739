package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-mailview/internal/cache"
	"github.com/brandon/mcp-mailview/internal/config"
	"github.com/brandon/mcp-mailview/internal/email"
	"github.com/brandon/mcp-mailview/internal/headerstore"
	"github.com/brandon/mcp-mailview/internal/mailtool"
)

var Version = "dev"

type Globals struct {
	JSON    bool   `help:"Output as JSON" name:"json"`
	Config  string `help:"Path to config file" short:"c" type:"path"`
	Verbose bool   `help:"Debug logging" short:"v"`
}

type CLI struct {
	Globals

	Serve      ServeCmd      `cmd:"" help:"Serve the mail view over stdio JSON-RPC"`
	Accounts   AccountsCmd   `cmd:"" help:"List accounts"`
	Folders    FoldersCmd    `cmd:"" help:"List folders of an account"`
	Headers    HeadersCmd    `cmd:"" help:"List headers of a folder"`
	CacheStats CacheStatsCmd `cmd:"" name:"cache-stats" help:"Show body archive usage"`
	CachePurge CachePurgeCmd `cmd:"" name:"cache-purge" help:"Drop archived bodies of a folder"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
}

type ServeCmd struct{}

type AccountsCmd struct{}

type FoldersCmd struct {
	Account string `arg:"" help:"Account name"`
}

type HeadersCmd struct {
	Account string `arg:"" help:"Account name"`
	Folder  string `arg:"" optional:"" default:"inbox" help:"Folder name"`
	Filter  string `help:"Filter expression, e.g. 'All(From~alice, read=false)'" short:"f"`
	Negate  bool   `help:"Show headers that do not match the filter"`
	More    int    `help:"Load this many extra batches of older headers" short:"m"`
	UIDs    string `help:"Only show these UIDs, e.g. 1:5,9" name:"uids"`
	Limit   int    `help:"Maximum headers to print, 0 for all" short:"n"`
}

type CacheStatsCmd struct{}

type CachePurgeCmd struct {
	Account string `arg:"" help:"Account name"`
	Folder  string `arg:"" help:"Folder name"`
}

type VersionCmd struct{}

// Context is passed to every command's Run method
type Context struct {
	context.Context

	Config  *config.Config
	Logger  *logrus.Logger
	Globals *Globals
	Out     io.Writer
}

// NewContext loads and validates the configuration and sets up logging.
// Logs go to stderr; stdout carries command output.
func NewContext(ctx context.Context, globals *Globals, out io.Writer) (*Context, error) {
	cfg, err := config.LoadConfig(globals.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.LogLevel
	if globals.Verbose {
		level = "debug"
	}

	return &Context{
		Context: ctx,
		Config:  cfg,
		Logger:  NewLogger(level, os.Stderr),
		Globals: globals,
		Out:     out,
	}, nil
}

// Tool returns the mail tool named by the configuration
func (c *Context) Tool() *mailtool.Tool {
	return mailtool.New(c.Config.EmailBin, c.Logger)
}

// OpenArchive opens the body archive. It returns nil and a no-op close when
// no archive is configured.
func (c *Context) OpenArchive() (*cache.Store, func(), error) {
	if c.Config.BodyCachePath == "" {
		return nil, func() {}, nil
	}
	db, err := cache.NewCache(c.Config.BodyCachePath, c.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open body archive: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			c.Logger.WithError(err).Warn("Failed to close body archive")
		}
	}
	return cache.NewStore(db, c.Logger), closeDB, nil
}

// NewManager builds a manager over the configured tool and header store
func (c *Context) NewManager(archive *cache.Store) *email.Manager {
	tool := c.Tool()
	store := headerstore.NewStore(c.Config.EmailDir, c.Logger)

	// a nil *cache.Store must not become a non-nil interface
	if archive == nil {
		return email.NewManager(c.Config, tool, mailtool.NewRunner(tool, c.Logger), store, nil, c.Logger)
	}
	return email.NewManager(c.Config, tool, mailtool.NewRunner(tool, c.Logger), store, archive, c.Logger)
}
