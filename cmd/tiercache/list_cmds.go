package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmcdole/tiercache/internal/cache"
	"github.com/mmcdole/tiercache/internal/tui/styles"
)

// entryView is the JSON form of an entry for ls and inspect.
type entryView struct {
	Key           string     `json:"key"`
	Persist       bool       `json:"persist"`
	Indexed       bool       `json:"indexed"`
	LifetimeHours int        `json:"lifetimeHours"`
	Created       *time.Time `json:"created,omitempty"`
	Expires       *time.Time `json:"expires,omitempty"`
	Size          int        `json:"size"`
}

func newEntryView(info cache.EntryInfo, loaded bool) entryView {
	v := entryView{
		Key:           info.Key,
		Persist:       info.Persist,
		Indexed:       info.Indexed,
		LifetimeHours: info.LifetimeHours,
		Size:          info.Size,
	}
	if !loaded {
		return v
	}
	created := info.CreatedAt().UTC()
	v.Created = &created
	if expires, ok := info.ExpiresAt(); ok {
		expires = expires.UTC()
		v.Expires = &expires
	}
	return v
}

func newListCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "ls",
		Short:   "List disk-backed keys",
		Aliases: []string{"list"},
		GroupID: GroupEntries,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCache()
			if err != nil {
				return err
			}

			var views []entryView
			for _, key := range c.Keys() {
				info, ok := c.Inspect(key)
				if !ok {
					info = cache.EntryInfo{Key: key, Indexed: true}
				}
				views = append(views, newEntryView(info, ok))
			}

			// Loading the index may have dropped expired records.
			a.flush(c)

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, views)
			}
			for _, v := range views {
				printEntry(out, v)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "inspect <key>",
		Short:   "Show metadata for an entry",
		GroupID: GroupEntries,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCache()
			if err != nil {
				return err
			}

			// Load the index first so disk-backed entries are rehydrated.
			c.Keys()
			info, ok := c.Inspect(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", errNotFound, args[0])
			}
			return writeJSON(cmd.OutOrStdout(), newEntryView(info, true))
		},
	}
}

func printEntry(w io.Writer, v entryView) {
	expires := "forever"
	switch {
	case v.Created == nil:
		expires = "not loaded"
	case v.Expires != nil:
		expires = v.Expires.Format(time.RFC3339)
	}
	fmt.Fprintf(w, "%s  %8dB  %s\n", styles.Pad(styles.Truncate(v.Key, 48), 48), v.Size, expires)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
