package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/tiercache/internal/cache"
)

// errNotFound is returned for lookups that miss, so the exit code is non-zero.
var errNotFound = errors.New("not found")

func newGetCmd(a *app) *cobra.Command {
	var (
		memory bool
		pretty bool
	)

	cmd := &cobra.Command{
		Use:     "get <key>",
		Short:   "Print the value stored under a key",
		GroupID: GroupEntries,
		Args:    cobra.ExactArgs(1),
		Long: `Print the JSON value stored under key.

By default the key must be disk-backed: the index is loaded from the session
or, on the first access of a session, from the cache file. With --memory the
session registry is read directly, which also finds memory-only entries.`,
		Example: `  tiercache get catalog:animetoon/GetAllMovies
  tiercache get genres:animetoon --memory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCache()
			if err != nil {
				return err
			}

			raw, ok := c.Get(args[0], !memory)
			if !ok {
				return fmt.Errorf("%w: %s", errNotFound, args[0])
			}

			if pretty {
				var buf bytes.Buffer
				if err := json.Indent(&buf, raw, "", "  "); err == nil {
					raw = buf.Bytes()
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))

			// A first access may have compacted the index.
			a.flush(c)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&memory, "memory", "m", false, "read the session registry without the disk index")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "indent the JSON output")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	var (
		memory   bool
		lifetime int
	)

	cmd := &cobra.Command{
		Use:     "set <key> <json>",
		Short:   "Store a JSON value under a key",
		GroupID: GroupEntries,
		Args:    cobra.ExactArgs(2),
		Long: `Store a JSON value under key.

Entries are disk-backed unless --memory is given. --lifetime sets the number
of hours the entry survives reloads from the cache file; 0 never expires.
Without it the configured default lifetime applies.`,
		Example: `  tiercache set catalog:animetoon/GetAllMovies '[{"id":"1","name":"Akira"}]'
  tiercache set settings '{"theme":"dark"}' --lifetime 0
  tiercache set genres:animetoon '["Action"]' --memory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], []byte(args[1])
			if !json.Valid(value) {
				return fmt.Errorf("value for %q is not valid JSON", key)
			}

			c, err := a.openCache()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("lifetime") {
				err = c.SetWithLifetime(key, json.RawMessage(value), !memory, lifetime)
			} else {
				err = c.Set(key, json.RawMessage(value), !memory)
			}
			if err != nil {
				return err
			}

			a.flush(c)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&memory, "memory", "m", false, "keep the entry in the session only")
	cmd.Flags().IntVarP(&lifetime, "lifetime", "l", cache.DefaultLifetimeHours, "lifetime in hours (0 = never expires)")
	return cmd
}

func newDelCmd(a *app) *cobra.Command {
	var memory bool

	cmd := &cobra.Command{
		Use:     "del <key>",
		Short:   "Delete an entry",
		Aliases: []string{"rm"},
		GroupID: GroupEntries,
		Args:    cobra.ExactArgs(1),
		Long: `Delete an entry from the session, and from the cache file unless
--memory is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCache()
			if err != nil {
				return err
			}
			c.Delete(args[0], !memory)
			a.flush(c)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&memory, "memory", "m", false, "only drop the session copy")
	return cmd
}

func newFlushCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "flush",
		Short:   "Write pending changes to the cache file",
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		Long: `Write the disk-backed entries to the cache file.

Nothing is written when no persisted entry changed since the last write.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCache()
			if err != nil {
				return err
			}

			if !c.Dirty() {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to flush")
				return nil
			}
			c.Flush()
			if c.Dirty() {
				return fmt.Errorf("cache file %s was not written, see the log", c.Path())
			}
			fmt.Fprintln(cmd.OutOrStdout(), "flushed", c.Path())
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "clear",
		Short:   "Delete the cache file and every cached entry",
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCache()
			if err != nil {
				return err
			}
			c.ClearAll()
			fmt.Fprintln(cmd.OutOrStdout(), "cleared", c.Path())
			return nil
		},
	}
}
