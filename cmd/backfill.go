package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/crm-auth/internal/position"
	positionpostgres "github.com/frahmantamala/crm-auth/internal/position/postgres"
	"github.com/frahmantamala/crm-auth/internal/user"
	userpostgres "github.com/frahmantamala/crm-auth/internal/user/postgres"
	"github.com/frahmantamala/crm-auth/pkg/logger"
	"github.com/spf13/cobra"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill-positions",
	Short: "Assign role-derived positions to users with a missing or dangling position",
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
		result, err := user.NewBackfiller(userpostgres.NewBackfillRepository(db), positions, lg).Run(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Repaired %d users (%d admins, %d others)\n", result.Total(), result.Admins, result.Others)
		return nil
	},
}
