package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/soundstage-events/backoffice/models"
	"github.com/soundstage-events/backoffice/store"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var (
	adminEmail    string
	adminName     string
	adminPassword string
)

// createAdminCmd represents the create-admin command
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin or reset its password",
	Long:  `Create a back-office admin account. If the email already belongs to an admin, its password is replaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return createAdmin(cmd.Context(), st, adminEmail, adminName, adminPassword, cmd.OutOrStdout())
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email address")
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "Display name")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Password (at least 8 characters)")
	createAdminCmd.MarkFlagRequired("email")
	createAdminCmd.MarkFlagRequired("password")
}

func createAdmin(ctx context.Context, st *store.Store, email, name, password string, out io.Writer) error {
	email = store.NormalizeEmail(email)
	if email == "" {
		return errors.New("email is required")
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	existing, err := st.Admins.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := st.Admins.SetPassword(ctx, existing.ID, string(hash)); err != nil {
			return err
		}
		fmt.Fprintf(out, "Password reset for %s\n", email)
		return nil
	case !errors.Is(err, store.ErrNotFound):
		return err
	}

	admin := &models.Admin{Email: email, Name: name, Password: string(hash)}
	if err := st.Admins.Create(ctx, admin); err != nil {
		return err
	}
	fmt.Fprintf(out, "Created admin %s (%s)\n", email, admin.ID.Hex())
	return nil
}
