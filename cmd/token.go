package main

import (
	"context"
	"fmt"

	"storefront-core/cmd/bootstrap"
	"storefront-core/cmd/bootstrap/components"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/jwt"
	"storefront-core/internal/pkg/password"
	"storefront-core/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type tokenOptions struct {
	UserID   string
	Email    string
	Password string
	Role     string
}

// newTokenCommand mints bearer tokens for operators. Accounts are managed
// outside this service, so it can also create one. It only makes sense with
// the postgres store.
func newTokenCommand() *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token, optionally creating the account first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.UserID == "" && opts.Email == "" {
				return fmt.Errorf("either --user-id or --email is required")
			}
			return runToken(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.UserID, "user-id", "", "existing account to issue a token for")
	cmd.Flags().StringVar(&opts.Email, "email", "", "create an account with this email")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password for the new account")
	cmd.Flags().StringVar(&opts.Role, "role", string(user.RoleUser), "role for the new account (user|admin)")

	return cmd
}

func runToken(cmd *cobra.Command, opts *tokenOptions) error {
	var (
		uow        shared.UnitOfWork
		jwtService *jwt.Service
		clk        clock.Clock
	)

	app := fx.New(
		bootstrap.ConfigModule,
		bootstrap.LoggerModule,
		components.ClockModule,
		bootstrap.JWTModule,
		bootstrap.DBModule,
		fx.Populate(&uow, &jwtService, &clk),
		fx.NopLogger,
	)
	ctx := cmd.Context()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = app.Stop(context.Background()) }()

	var u *user.User
	var err error
	if opts.UserID != "" {
		u, err = findUser(ctx, uow, opts.UserID)
	} else {
		u, err = createUser(ctx, uow, clk, opts)
	}
	if err != nil {
		return err
	}

	token, err := jwtService.GenerateToken(u.ID(), u.Role())
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "user_id: %s\nrole: %s\ntoken: %s\n", u.ID(), u.Role(), token)
	return nil
}

func findUser(ctx context.Context, uow shared.UnitOfWork, rawID string) (*user.User, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid --user-id: %w", err)
	}
	var u *user.User
	err = uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		found, err := tx.Users().FindByID(ctx, id)
		u = found
		return err
	})
	return u, err
}

func createUser(ctx context.Context, uow shared.UnitOfWork, clk clock.Clock, opts *tokenOptions) (*user.User, error) {
	email, err := user.NewEmail(opts.Email)
	if err != nil {
		return nil, err
	}
	role, err := user.NewRole(opts.Role)
	if err != nil {
		return nil, err
	}
	if !password.IsStrongEnough(opts.Password) {
		return nil, fmt.Errorf("--password must be at least %d characters", password.MinLength)
	}
	hash, err := password.Hash(opts.Password)
	if err != nil {
		return nil, err
	}

	u := user.NewUser(email, hash, role, clk.Now())
	err = uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().Create(ctx, u)
	})
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return u, nil
}
