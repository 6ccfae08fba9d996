package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

func newApartmentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apartments",
		Aliases: []string{"apartment", "apt"},
		Short:   "Manage apartments",
	}
	cmd.AddCommand(
		newApartmentListCmd(a),
		newApartmentCreateCmd(a),
		newApartmentUpdateCmd(a),
		newApartmentToggleCmd(a),
		newApartmentRemoveCmd(a),
	)
	return cmd
}

// showApartments prints the apartment store.
func (a *app) showApartments() error {
	snap := a.apartments.Store().Snapshot()
	if a.flags.jsonMode {
		return writeJSON(a.out, snap.Items)
	}
	renderApartments(a.out, snap)
	return nil
}

// findApartment reloads the store and returns apartment id.
func (a *app) findApartment(cmd *cobra.Command, id types.ID) (types.Apartment, error) {
	if err := a.apartments.Reload(cmd.Context()); err != nil {
		return types.Apartment{}, failure(err, a.apartments.Store().Banner())
	}
	apt, ok := a.apartments.Store().Find(id)
	if !ok {
		return types.Apartment{}, fmt.Errorf("apartamento %s: %w", id, types.ErrNotFound)
	}
	return apt, nil
}

func newApartmentListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List apartments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.apartments.Reload(cmd.Context()); err != nil {
				return failure(err, a.apartments.Store().Banner())
			}
			return a.showApartments()
		},
	}
}

func newApartmentCreateCmd(a *app) *cobra.Command {
	var f types.ApartmentFields
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an apartment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.apartments.Create(cmd.Context(), f); err != nil {
				return failure(err, a.apartments.Store().Banner())
			}
			return a.showApartments()
		},
	}
	cmd.Flags().StringVar(&f.Number, "number", "", "apartment number (max 10 characters)")
	cmd.Flags().StringVar(&f.Level, "level", "", "floor level (max 5 characters)")
	cmd.Flags().StringVar(&f.Status, "status", types.ApartmentStatusActive, "active or inactive")
	return cmd
}

func newApartmentUpdateCmd(a *app) *cobra.Command {
	var f types.ApartmentFields
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an apartment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.findApartment(cmd, types.ID(args[0]))
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("number") {
				f.Number = current.Number
			}
			if !cmd.Flags().Changed("level") {
				f.Level = current.Level
			}
			if _, err := a.apartments.Update(cmd.Context(), current.ID, f); err != nil {
				return failure(err, a.apartments.Store().Banner())
			}
			return a.showApartments()
		},
	}
	cmd.Flags().StringVar(&f.Number, "number", "", "new apartment number")
	cmd.Flags().StringVar(&f.Level, "level", "", "new floor level")
	cmd.Flags().StringVar(&f.Status, "status", "", "active or inactive (default: unchanged)")
	return cmd
}

func newApartmentToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Switch an apartment between active and inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.findApartment(cmd, types.ID(args[0]))
			if err != nil {
				return err
			}
			if _, err := a.apartments.ToggleStatus(cmd.Context(), current.ID, current.Status); err != nil {
				return failure(err, a.apartments.Store().Banner())
			}
			return a.showApartments()
		},
	}
}

func newApartmentRemoveCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete an apartment, or deactivate it when it has contracts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.findApartment(cmd, types.ID(args[0]))
			if err != nil {
				return err
			}
			plan := a.apartments.RemovalPlan(current.ContractsCount)
			ok, err := a.confirm(plan, yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.out, "Operación cancelada")
				return nil
			}
			if _, err := a.apartments.RemoveOrDeactivate(cmd.Context(), current.ID, current.ContractsCount); err != nil {
				return failure(err, a.apartments.Store().Banner())
			}
			return a.showApartments()
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
