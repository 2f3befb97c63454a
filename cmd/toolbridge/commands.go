package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/config"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/catalog"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/sdk"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/sdk/client"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

func newAdaptersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List built-in adapters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, info := range catalog.All() {
				fmt.Fprintf(w, "%s\t%s\n", info.Name, info.Description)
			}
			return w.Flush()
		},
	}
}

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools <adapter>",
		Short: "Print an adapter's tool descriptors as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := openShell(cmd, args[0])
			if err != nil {
				return err
			}
			defer sh.Close()

			pattern, _ := cmd.Flags().GetString("filter")
			filter, err := tools.NewFilter(tools.ParsePatterns(pattern), nil)
			if err != nil {
				return err
			}
			var out []tools.Descriptor
			for _, d := range sh.Tools() {
				if filter.Allowed(d.Name) {
					out = append(out, d)
				}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().String("filter", "", "Comma-separated glob patterns of tool names to show")
	return cmd
}

func newCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <adapter> <tool> [json-args]",
		Short: "Run one tool invocation and print the envelope",
		Long: "Run one tool invocation in-process, or against a running adapter with --remote, " +
			"and print the envelope. Exits 1 when the envelope is an error.",
		Args: cobra.RangeArgs(2, 3),
		RunE: runCall,
	}
	cmd.Flags().String("remote", "", "Base URL of a running adapter's HTTP transport")
	cmd.Flags().String("api-key", "", "API key for --remote (default $TOOLBRIDGE_API_KEY)")
	return cmd
}

func runCall(cmd *cobra.Command, args []string) error {
	adapter, name := args[0], args[1]
	var raw []byte
	if len(args) == 3 {
		raw = []byte(args[2])
	}
	arguments, err := types.DecodeArguments(raw)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	var env tools.Envelope
	if remote, _ := cmd.Flags().GetString("remote"); remote != "" {
		apiKey, _ := cmd.Flags().GetString("api-key")
		if apiKey == "" {
			apiKey = config.NewSecrets().Get("TOOLBRIDGE_API_KEY")
		}
		res, err := client.New(remote, apiKey).Exec(cmd.Context(), name, arguments)
		if err != nil {
			return fmt.Errorf("call %s at %s: %w", adapter, remote, err)
		}
		env = *res
	} else {
		sh, err := openShell(cmd, adapter)
		if err != nil {
			return err
		}
		env = sh.Dispatch(cmd.Context(), types.Invocation{Name: name, Arguments: arguments})
		sh.Close()
	}

	if err := writeJSON(cmd.OutOrStdout(), env); err != nil {
		return err
	}
	if env.IsError {
		return &ExitError{Code: 1}
	}
	return nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve <adapter>",
		Short: "Serve an adapter until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := lookup(args[0])
			if err != nil {
				return err
			}
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			return sdk.Run(cmd.Context(), sdk.Options{
				Name:     info.Name,
				Version:  version,
				Factory:  info.Factory,
				Settings: &settings,
				Stdin:    cmd.InOrStdin(),
				Stdout:   cmd.OutOrStdout(),
				Stderr:   cmd.ErrOrStderr(),
			})
		},
	}
}

func newSecretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage credentials in the OS keyring",
	}
	set := &cobra.Command{
		Use:   "set <NAME>",
		Short: "Store a secret; the value is read from --value or the first line of stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, _ := cmd.Flags().GetString("value")
			if value == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return err
				}
				value = strings.TrimRight(line, "\r\n")
			}
			if value == "" {
				return &ExitError{Code: 2, Message: "secret value is empty"}
			}
			if err := config.StoreSecret(args[0], value); err != nil {
				return fmt.Errorf("store %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s in the keyring (set TOOLBRIDGE_KEYRING=1 to use it)\n", args[0])
			return nil
		},
	}
	set.Flags().String("value", "", "Secret value")

	del := &cobra.Command{
		Use:   "delete <NAME>",
		Short: "Remove a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteSecret(args[0]); err != nil {
				return fmt.Errorf("delete %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
	cmd.AddCommand(set, del)
	return cmd
}

func lookup(name string) (connectors.Info, error) {
	info, ok := catalog.Lookup(name)
	if !ok {
		return info, &ExitError{Code: 2, Message: fmt.Sprintf("unknown adapter %q (have %s)", name, strings.Join(catalog.Names(), ", "))}
	}
	return info, nil
}

func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return settings, err
	}
	if mock, _ := cmd.Flags().GetBool("mock"); mock {
		settings.Mock = true
	}
	return settings, nil
}

// openShell builds an in-process shell. Logs go to stderr so stdout carries
// only the command output.
func openShell(cmd *cobra.Command, adapter string) (*sdk.Shell, error) {
	info, err := lookup(adapter)
	if err != nil {
		return nil, err
	}
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	settings.Transport = config.TransportStdio
	settings.Audit.PostgresDSN, settings.Audit.SQLitePath = "", ""
	return sdk.New(cmd.Context(), sdk.Options{
		Name:     info.Name,
		Version:  version,
		Factory:  info.Factory,
		Settings: &settings,
		Stdout:   cmd.OutOrStdout(),
		Stderr:   cmd.ErrOrStderr(),
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
