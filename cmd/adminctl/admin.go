package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/admin-console-api/internal/auth"
	"github.com/admin-console-api/internal/models"
	"github.com/admin-console-api/internal/repository"
	"github.com/admin-console-api/internal/validation"
)

func newCreateAdminCmd() *cobra.Command {
	var email, password, provider string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create or update an admin account",
		Long: `Create an admin account allowed through the login gate.

Password accounts need --password (at least 8 characters). Google accounts
sign in through the provider and take no password. Running it again for the
same email replaces the account.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, log, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			account, err := createAdmin(ctx, store.Account, email, password, provider)
			if err != nil {
				return err
			}
			log.Info().Str("email", account.Email).Str("provider", account.Provider).Msg("Admin account saved")
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s ready (%s)\n", account.Email, account.Provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&password, "password", "", "password for the password provider")
	cmd.Flags().StringVar(&provider, "provider", models.ProviderPassword, "sign-in provider: password or google")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// createAdmin validates the flags and upserts the account
func createAdmin(ctx context.Context, accounts repository.AccountRepository, email, password, provider string) (*models.Account, error) {
	v := validation.NewValidator()
	email = strings.ToLower(strings.TrimSpace(email))
	if verr := v.ValidateInvite(email); verr != nil {
		return nil, verr
	}

	account := &models.Account{
		ID:        uuid.NewString(),
		Email:     email,
		Provider:  provider,
		CreatedAt: time.Now().UTC(),
	}

	switch provider {
	case models.ProviderPassword:
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hash
	case models.ProviderGoogle:
		if password != "" {
			return nil, fmt.Errorf("google accounts take no password")
		}
	default:
		return nil, fmt.Errorf("provider must be one of: password, google")
	}

	if err := accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	return account, nil
}
