package main

import (
	"github.com/spf13/cobra"
)

// Command group IDs for organizing help output
const (
	GroupEntries = "entries"
	GroupSession = "session"
	GroupUtility = "utility"
)

// annotationConfigOptional marks commands that run before a config file exists.
const annotationConfigOptional = "config-optional"

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "tiercache",
		Short: "Session and disk tiered cache for API responses",
		Long: `tiercache keeps entries in a session registry shared by every invocation
of the same session, and persists the disk-backed ones to a single JSON file.

Each invocation is one step of a session. Commands that change persisted
entries flush the file when they finish, unless --no-flush is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			_, optional := cmd.Annotations[annotationConfigOptional]
			return a.setup(optional)
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ~/.config/tiercache/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().BoolVar(&a.noFlush, "no-flush", false, "leave changes in the session registry for a later flush")
	root.PersistentFlags().StringVar(&a.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")

	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.AddGroup(
		&cobra.Group{ID: GroupEntries, Title: "Entry Commands:"},
		&cobra.Group{ID: GroupSession, Title: "Session Commands:"},
		&cobra.Group{ID: GroupUtility, Title: "Utility Commands:"},
	)

	// Entry commands
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newSetCmd(a))
	root.AddCommand(newDelCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newInspectCmd(a))

	// Session commands
	root.AddCommand(newFlagCmd(a))
	root.AddCommand(newSessionCmd(a))

	// Utility commands
	root.AddCommand(newFlushCmd(a))
	root.AddCommand(newClearCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newBrowseCmd(a))
	root.AddCommand(newVersionCmd(a))

	return root
}
