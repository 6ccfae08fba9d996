package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

func newContractsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contracts",
		Aliases: []string{"contract"},
		Short:   "Manage rental contracts",
	}
	cmd.AddCommand(
		newContractListCmd(a),
		newContractCreateCmd(a),
		newContractUpdateCmd(a),
		newContractRemoveCmd(a),
		newContractEligibleCmd(a),
	)
	return cmd
}

// contractFlags are the writable contract fields as command-line text.
type contractFlags struct {
	apartment string
	start     string
	end       string
	active    bool
}

func (f *contractFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.apartment, "apartment", "", "apartment id")
	fs.StringVar(&f.start, "start", "", "start date (YYYY-MM-DD)")
	fs.StringVar(&f.end, "end", "", "end date (YYYY-MM-DD)")
	fs.BoolVar(&f.active, "active", true, "whether the contract is active")
}

// fields builds ContractFields, taking unset flags from base.
func (f *contractFlags) fields(fs *pflag.FlagSet, base types.ContractFields) (types.ContractFields, error) {
	out := base
	if fs.Changed("apartment") {
		out.ApartmentID = types.ID(f.apartment)
	}
	if fs.Changed("start") {
		d, err := types.ParseDate(f.start)
		if err != nil {
			return out, usageErrorf("--start: %v", err)
		}
		out.StartDate = d
	}
	if fs.Changed("end") {
		d, err := types.ParseDate(f.end)
		if err != nil {
			return out, usageErrorf("--end: %v", err)
		}
		out.EndDate = d
	}
	if fs.Changed("active") {
		active := f.active
		out.Active = &active
	}
	return out, nil
}

func (a *app) showContracts() error {
	snap := a.contracts.Store().Snapshot()
	if a.flags.jsonMode {
		return writeJSON(a.out, snap.Items)
	}
	renderContracts(a.out, snap)
	return nil
}

func (a *app) findContract(cmd *cobra.Command, id types.ID) (types.Contract, error) {
	if err := a.contracts.Reload(cmd.Context()); err != nil {
		return types.Contract{}, failure(err, a.contracts.Store().Banner())
	}
	c, ok := a.contracts.Store().Find(id)
	if !ok {
		return types.Contract{}, fmt.Errorf("contrato %s: %w", id, types.ErrNotFound)
	}
	return c, nil
}

func newContractListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.contracts.Reload(cmd.Context()); err != nil {
				return failure(err, a.contracts.Store().Banner())
			}
			return a.showContracts()
		},
	}
}

func newContractCreateCmd(a *app) *cobra.Command {
	var f contractFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a contract for an eligible apartment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := f.fields(cmd.Flags(), types.ContractFields{})
			if err != nil {
				return err
			}
			if _, err := a.contracts.Create(cmd.Context(), fields); err != nil {
				return failure(err, a.contracts.Store().Banner())
			}
			return a.showContracts()
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newContractUpdateCmd(a *app) *cobra.Command {
	var f contractFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.findContract(cmd, types.ID(args[0]))
			if err != nil {
				return err
			}
			fields, err := f.fields(cmd.Flags(), types.ContractFields{
				ApartmentID: current.ApartmentID,
				StartDate:   current.StartDate,
				EndDate:     current.EndDate,
			})
			if err != nil {
				return err
			}
			if _, err := a.contracts.Update(cmd.Context(), current.ID, fields); err != nil {
				return failure(err, a.contracts.Store().Banner())
			}
			return a.showContracts()
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newContractRemoveCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Deactivate a contract, or delete it when it has no apartment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.findContract(cmd, types.ID(args[0]))
			if err != nil {
				return err
			}
			hasRef := current.HasApartmentReference()
			ok, err := a.confirm(a.contracts.RemovalPlan(hasRef), yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.out, "Operación cancelada")
				return nil
			}
			if _, err := a.contracts.DeleteOrDeactivate(cmd.Context(), current.ID, hasRef); err != nil {
				return failure(err, a.contracts.Store().Banner())
			}
			return a.showContracts()
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newContractEligibleCmd(a *app) *cobra.Command {
	var current string
	cmd := &cobra.Command{
		Use:   "eligible",
		Short: "List apartments a contract can be assigned to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.apartments.Reload(cmd.Context()); err != nil {
				return failure(err, a.apartments.Store().Banner())
			}
			eligible := a.contracts.EligibleApartments(types.ID(current))
			if a.flags.jsonMode {
				if eligible == nil {
					eligible = []types.Apartment{}
				}
				return writeJSON(a.out, eligible)
			}
			if len(eligible) == 0 {
				fmt.Fprintln(a.out, "No hay apartamentos disponibles")
				return nil
			}
			for _, apt := range eligible {
				fmt.Fprintf(a.out, "%s\t%s (nivel %s)\n", apt.ID, apt.Number, apt.Level)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&current, "current", "", "apartment currently assigned to the contract being edited")
	return cmd
}
