package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/tiercache/internal/registry"
)

func newFlagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "flag",
		Short:   "Test, set or clear session markers",
		GroupID: GroupSession,
		Long: `Session markers are named booleans that live as long as the session,
for example to skip a redundant request when navigating back.
Names may not contain commas or start with an underscore.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "test <name>",
		Short: "Exit non-zero unless the marker is set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCache()
			if err != nil {
				return err
			}
			if !c.TestFlag(args[0]) {
				return fmt.Errorf("%w: flag %s", errNotFound, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "set")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <name>",
		Short: "Set a marker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCache()
			if err != nil {
				return err
			}
			return c.SetFlag(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <name>",
		Short: "Clear a marker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCache()
			if err != nil {
				return err
			}
			return c.ClearFlag(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List markers set in this session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCache()
			if err != nil {
				return err
			}
			for _, name := range c.Flags() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})

	return cmd
}

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Short:   "Manage the session registry",
		GroupID: GroupSession,
		Long: `A session groups invocations that share the session registry. By default
a session is tied to the parent shell; set TIERCACHE_SESSION_ID to choose one.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Print a shell export starting a new session",
		Args:  cobra.NoArgs,
		Example: `  eval "$(tiercache session new)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "export TIERCACHE_SESSION_ID=%s\n", registry.NewSessionID())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Drop everything the current session holds",
		Long: `Drop every session value, keeping the cache file. The next access loads
the cache file again, as in a new session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry()
			if err != nil {
				return err
			}
			if err := reg.Reset(); err != nil {
				return fmt.Errorf("failed to reset session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "session reset", a.sessionID())
			return nil
		},
	})

	return cmd
}
