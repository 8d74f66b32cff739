package cli

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/brandon/mcp-mailview/internal/config"
	"github.com/brandon/mcp-mailview/internal/email"
	"github.com/brandon/mcp-mailview/internal/filter"
	"github.com/brandon/mcp-mailview/internal/mailtool"
	"github.com/brandon/mcp-mailview/internal/mcp"
	"github.com/brandon/mcp-mailview/pkg/types"
)

func (c *ServeCmd) Run(ctx *Context) error {
	archive, closeArchive, err := ctx.OpenArchive()
	if err != nil {
		return err
	}
	defer closeArchive()

	mcp.Version = Version
	server := mcp.NewServer(ctx.NewManager(archive), archive, ctx.Logger)
	return server.Run(ctx)
}

func (c *AccountsCmd) Run(ctx *Context) error {
	accounts, err := ctx.Tool().Accounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if ctx.Globals.JSON {
		return printJSON(ctx.Out, map[string]interface{}{
			"count":    len(accounts),
			"accounts": accounts,
		})
	}

	if len(accounts) == 0 {
		fmt.Fprintln(ctx.Out, "No accounts found.")
		return nil
	}

	table := newTable(ctx.Out, "Account", "Unread", "Total", "Updated", "Error")
	for _, acc := range accounts {
		updated := "never"
		if t := acc.LastUpdatedTime(); !t.IsZero() {
			updated = humanize.Time(t)
		}
		table.Append([]string{
			acc.Name,
			strconv.Itoa(acc.Unread),
			strconv.Itoa(acc.Total),
			updated,
			acc.Error,
		})
	}
	table.Render()
	return nil
}

func (c *FoldersCmd) Run(ctx *Context) error {
	folders, err := ctx.Tool().Folders(ctx, c.Account)
	if err != nil {
		return fmt.Errorf("failed to list folders: %w", err)
	}

	if ctx.Globals.JSON {
		return printJSON(ctx.Out, map[string]interface{}{
			"account": c.Account,
			"folders": folders,
		})
	}

	table := newTable(ctx.Out, "Folder", "Unread", "Total")
	for _, f := range folders {
		table.Append([]string{f.Name, strconv.Itoa(f.Unread), strconv.Itoa(f.Total)})
	}
	table.Render()
	return nil
}

func (c *HeadersCmd) Run(ctx *Context) error {
	var only map[int]bool
	if c.UIDs != "" {
		uids, err := mailtool.ParseUIDs(c.UIDs)
		if err != nil {
			return err
		}
		only = make(map[int]bool, len(uids))
		for _, uid := range uids {
			only[uid] = true
		}
	}

	archive, closeArchive, err := ctx.OpenArchive()
	if err != nil {
		return err
	}
	defer closeArchive()

	manager := ctx.NewManager(archive)
	if _, err := manager.SelectAccount(ctx, c.Account); err != nil {
		return err
	}
	if c.Folder != email.DefaultFolder {
		if _, err := manager.SelectFolder(ctx, c.Folder); err != nil {
			return err
		}
	}
	for i := 0; i < c.More; i++ {
		if _, err := manager.More(ctx, nil); err != nil {
			return err
		}
	}
	if err := manager.ReplaceFilter(ctx, filter.QuickFilter, c.Filter, c.Negate); err != nil {
		return err
	}

	view := manager.View()
	headers := make([]types.Header, 0, len(view.Headers))
	for _, hdr := range view.Headers {
		if only == nil || only[hdr.UID] {
			headers = append(headers, hdr)
		}
	}
	if c.Limit > 0 && len(headers) > c.Limit {
		headers = headers[:c.Limit]
	}

	if ctx.Globals.JSON {
		view.Headers = headers
		return printJSON(ctx.Out, view)
	}

	table := newTable(ctx.Out, "UID", "", "Date", "From", "Subject")
	for _, hdr := range headers {
		flag := ""
		if !hdr.Read {
			flag = "*"
		}
		who := hdr.From
		if hdr.IsSent {
			who = "to: " + hdr.To
		}
		table.Append([]string{strconv.Itoa(hdr.UID), flag, hdr.Date, who, hdr.Subject})
	}
	table.Render()
	fmt.Fprintln(ctx.Out, view.Counter)
	if view.Dropped > 0 {
		fmt.Fprintf(ctx.Out, "%d unreadable headers skipped\n", view.Dropped)
	}
	return nil
}

func (c *CacheStatsCmd) Run(ctx *Context) error {
	archive, closeArchive, err := ctx.OpenArchive()
	if err != nil {
		return err
	}
	defer closeArchive()
	if archive == nil {
		return fmt.Errorf("no body archive configured (set body_cache_path)")
	}

	stats, err := archive.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	if ctx.Globals.JSON {
		return printJSON(ctx.Out, map[string]interface{}{
			"path":    ctx.Config.BodyCachePath,
			"folders": stats,
		})
	}

	if len(stats) == 0 {
		fmt.Fprintln(ctx.Out, "Body archive is empty.")
		return nil
	}

	var bodies int
	var size int64
	table := newTable(ctx.Out, "Account", "Folder", "Bodies", "Size", "Last cached")
	for _, s := range stats {
		bodies += s.Bodies
		size += s.Bytes
		table.Append([]string{
			s.Account,
			s.Folder,
			humanize.Comma(int64(s.Bodies)),
			humanize.Bytes(uint64(s.Bytes)),
			humanize.Time(s.LastCached),
		})
	}
	table.Render()
	fmt.Fprintf(ctx.Out, "%s bodies, %s\n", humanize.Comma(int64(bodies)), humanize.Bytes(uint64(size)))
	return nil
}

func (c *CachePurgeCmd) Run(ctx *Context) error {
	archive, closeArchive, err := ctx.OpenArchive()
	if err != nil {
		return err
	}
	defer closeArchive()
	if archive == nil {
		return fmt.Errorf("no body archive configured (set body_cache_path)")
	}

	removed, err := archive.Purge(c.Account, c.Folder)
	if err != nil {
		return err
	}

	if ctx.Globals.JSON {
		return printJSON(ctx.Out, map[string]interface{}{
			"account": c.Account,
			"folder":  c.Folder,
			"removed": removed,
		})
	}
	fmt.Fprintf(ctx.Out, "Removed %s bodies from %s/%s\n", humanize.Comma(removed), c.Account, c.Folder)
	return nil
}

func (c *VersionCmd) Run(ctx *Context) error {
	if ctx.Globals.JSON {
		return printJSON(ctx.Out, map[string]interface{}{
			"name":       config.AppName,
			"version":    Version,
			"go_version": runtime.Version(),
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
		})
	}

	fmt.Fprintf(ctx.Out, "%s version %s\n", config.AppName, Version)
	fmt.Fprintf(ctx.Out, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(ctx.Out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}
