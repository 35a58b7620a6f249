package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/crm-auth/internal"
	"github.com/frahmantamala/crm-auth/internal/auth"
	"github.com/frahmantamala/crm-auth/internal/core/events"
	"github.com/frahmantamala/crm-auth/internal/position"
	positionpostgres "github.com/frahmantamala/crm-auth/internal/position/postgres"
	"github.com/frahmantamala/crm-auth/internal/user"
	userpostgres "github.com/frahmantamala/crm-auth/internal/user/postgres"
	"github.com/frahmantamala/crm-auth/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	seedDemoUsers bool
	seedPassword  string
)

type demoAccount struct {
	Email    string
	FullName string
	Role     string
}

var demoAccounts = []demoAccount{
	{Email: "admin@example.com", FullName: "Demo Admin", Role: position.RoleAdmin},
	{Email: "agent@example.com", FullName: "Demo Agent", Role: user.DefaultRole},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed position tiers and demo accounts",
	Long:  `Upsert the position tiers by name and, unless disabled, create the demo admin and agent accounts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		lg := logger.LoggerWrapper()

		db, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			return err
		}

		positions := position.NewService(positionpostgres.NewPositionRepository(gdb), lg)
		seeded, err := positions.Seed(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d positions\n", len(seeded))

		if !seedDemoUsers {
			return nil
		}

		hasher := auth.NewBcryptHasher(cfg.Security.BCryptCost)
		users := user.NewService(userpostgres.NewUserRepository(gdb), positions, hasher, auth.NewABACPolicy(auth.NewPermissionChecker()), events.NopPublisher{}, lg)

		for _, acct := range demoAccounts {
			u, err := users.Bootstrap(ctx, user.CreateUserDTO{
				Email:    acct.Email,
				FullName: acct.FullName,
				Password: seedPassword,
				Role:     acct.Role,
			})
			if errors.Is(err, internal.ErrEmailTaken) {
				fmt.Println("Demo account already exists:", acct.Email)
				continue
			}
			if err != nil {
				return fmt.Errorf("seed %s: %w", acct.Email, err)
			}
			fmt.Printf("Seeded %s (%s) with position %s\n", u.Email, u.Role, u.Position.Name)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedDemoUsers, "demo-users", true, "create the demo admin and agent accounts")
	seedCmd.Flags().StringVar(&seedPassword, "password", "password123", "password for the demo accounts")
}
