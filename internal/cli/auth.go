package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = a.readLine("Correo: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.readLine("Contraseña: "); err != nil {
					return err
				}
			}
			cred, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return failure(err, nil)
			}
			if a.flags.jsonMode {
				return writeJSON(a.out, map[string]any{"email": cred.Email, "expires_at": cred.ExpiresAt})
			}
			fmt.Fprintln(a.out, "Sesión iniciada como", cred.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var name, email, password, confirm string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompts := []struct {
				dst    *string
				prompt string
			}{
				{&name, "Nombre completo: "},
				{&email, "Correo: "},
				{&password, "Contraseña: "},
				{&confirm, "Confirmar contraseña: "},
			}
			for _, p := range prompts {
				if *p.dst != "" {
					continue
				}
				v, err := a.readLine(p.prompt)
				if err != nil {
					return err
				}
				*p.dst = v
			}
			if err := a.session.Register(cmd.Context(), name, email, password, confirm); err != nil {
				return failure(err, nil)
			}
			fmt.Fprintln(a.out, "Cuenta creada. Inicia sesión con rentals login")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "password confirmation")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Sesión cerrada")
			return nil
		},
	}
}
