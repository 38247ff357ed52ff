package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/envis/envis/internal/auth"
	"github.com/envis/envis/internal/config"
	"github.com/envis/envis/internal/model"
	"github.com/envis/envis/internal/repository"
)

const minPasswordLen = 8

func createUserCmd() *cobra.Command {
	var (
		password      string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "create-user <username>",
		Short: "Create an operator account",
		Long: `Create an operator account with an argon2id password hash.

Prefer --password-stdin so the password stays out of shell history:
  echo "$PASSWORD" | envisctl create-user alice --password-stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(args[0])
			if passwordStdin {
				var err error
				if password, err = readPassword(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			if err := validateCredentials(username, password); err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			repo, err := repository.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("%s", config.SanitizeError(err, cfg.DatabaseURL))
			}
			defer repo.Close()

			user := &model.User{ID: ulid.Make().String(), Username: username, PasswordHash: hash}
			if err := repo.CreateUser(ctx, user); err != nil {
				if errors.Is(err, repository.ErrUsernameExists) {
					return fmt.Errorf("username %q is taken", username)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from the first line of stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
	return cmd
}

// userLookup finds operator accounts by username.
type userLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// errBadCredentials covers both an unknown user and a wrong password.
var errBadCredentials = errors.New("username or password is incorrect")

func verifyUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify-user <username>",
		Short: "Check an operator account's password",
		Long: `Check a password against the stored argon2id hash. The password is read
from the first line of stdin:
  echo "$PASSWORD" | envisctl verify-user alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(args[0])
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			repo, err := repository.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("%s", config.SanitizeError(err, cfg.DatabaseURL))
			}
			defer repo.Close()

			if err := checkUserPassword(ctx, repo, username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password ok for %s\n", username)
			return nil
		},
	}
	return cmd
}

func checkUserPassword(ctx context.Context, users userLookup, username, password string) error {
	user, err := users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errBadCredentials
		}
		return err
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("stored hash for %s: %w", username, err)
	}
	if !ok {
		return errBadCredentials
	}
	return nil
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func validateCredentials(username, password string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}
