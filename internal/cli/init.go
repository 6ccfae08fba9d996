package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rentals/internal/paths"
	"github.com/mesh-intelligence/rentals/internal/sqlite"
	"github.com/mesh-intelligence/rentals/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and server data directories",
		Long: "Write a default config.yaml when missing and create the JSONL data\n" +
			"files the reference server uses.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, dataDir, err := a.attachBackend()
			if err != nil {
				return err
			}
			if err := backend.Detach(); err != nil {
				return fmt.Errorf("finalize storage: %w", err)
			}
			fmt.Fprintln(a.out, "rentals initialized successfully")
			fmt.Fprintln(a.out, "  config:", a.configDir)
			fmt.Fprintln(a.out, "  data:  ", dataDir)
			return nil
		},
	}
}

// attachBackend resolves the server data directory and attaches a sqlite
// backend there. The caller must Detach it.
func (a *app) attachBackend() (*sqlite.Backend, string, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.cfg.Server.DataDir)
	if err != nil {
		return nil, "", fmt.Errorf("resolve data dir: %w", err)
	}
	backend := sqlite.NewBackend()
	err = backend.Attach(types.StoreConfig{
		Backend:  types.BackendSQLite,
		DataDir:  dataDir,
		TokenTTL: a.cfg.Server.TokenTTL,
	})
	if err != nil {
		return nil, "", fmt.Errorf("attach backend: %w", err)
	}
	return backend, dataDir, nil
}
