package main

import (
	"fmt"
	"os"
	"runtime"
)

// Version information - set at build time via -ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	a := newApp(os.Stdout, os.Stderr)
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	return root.Execute()
}

// versionString returns the version string.
func versionString() string {
	return fmt.Sprintf("tiercache %s (%s, %s, %s)", version, commit[:min(7, len(commit))], date, runtime.Version())
}
