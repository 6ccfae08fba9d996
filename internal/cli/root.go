// Package cli implements the rentals command-line console: account
// commands, apartment and contract management over the remote API, and the
// reference server.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// NewRootCmd creates the top-level "rentals" command reading from in and
// writing to out and errOut.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "rentals",
		Short: "Apartment and contract administration console",
		Long: "rentals manages apartments and their rental contracts against the\n" +
			"rentals API, and can run a local reference server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			a.close()
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "server data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newLoginCmd(a))
	root.AddCommand(newRegisterCmd(a))
	root.AddCommand(newLogoutCmd(a))
	root.AddCommand(newApartmentsCmd(a))
	root.AddCommand(newContractsCmd(a))
	root.AddCommand(newServeCmd(a))

	return root
}

// Execute runs the root command against the process streams and exits with
// the matching code.
func Execute() {
	root := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rentals:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode maps an error to a process exit code. Problems the user can fix
// by changing input or logging in are user errors; the rest are system
// errors.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrRemoteFailure):
		var re *types.RemoteError
		if errors.As(err, &re) && re.Status >= 400 && re.Status < 500 {
			return exitUserError
		}
		return exitSysError
	case isUserError(err):
		return exitUserError
	default:
		return exitSysError
	}
}

func isUserError(err error) bool {
	var fe *types.FieldError
	return errors.As(err, &fe) ||
		errors.Is(err, types.ErrAuthRequired) ||
		errors.Is(err, types.ErrOccupancyConflict) ||
		errors.Is(err, types.ErrNotFound) ||
		errors.Is(err, errUsage)
}

// errUsage marks invalid flag combinations and values.
var errUsage = errors.New("invalid usage")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}
