// Command toolbridge lists, runs and serves the built-in adapters and manages
// their keyring secrets.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := newRoot().Execute(); err != nil {
		code := 1
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.Code
		}
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, "Error:", msg)
		}
		os.Exit(code)
	}
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "toolbridge",
		Short:         "Run provider adapters as tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	root.SetVersionTemplate(fmt.Sprintf("toolbridge version %s\n", version))
	root.PersistentFlags().Bool("mock", false, "Serve canned data instead of calling providers")

	root.AddCommand(newAdaptersCmd())
	root.AddCommand(newToolsCmd())
	root.AddCommand(newCallCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newSecretsCmd())
	return root
}

// ExitError carries a process exit code. An empty message prints nothing.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }
