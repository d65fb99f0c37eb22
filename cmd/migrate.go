package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/financial-analyst/internal/database"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the embedded db migrations for the configured driver",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := mustLoadConfig()
	if err != nil {
		return err
	}

	// migrate is the one command allowed to create the sqlite file
	gdb, err := database.Open(cfg.Database, database.Options{})
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if migrateRollback {
		if err := database.Rollback(ctx, sqlDB, cfg.Database.Driver); err != nil {
			return err
		}
		fmt.Println("rolled back latest migration")
		return nil
	}

	if err := database.Migrate(ctx, sqlDB, cfg.Database.Driver); err != nil {
		return err
	}
	fmt.Println("database is up to date")
	return nil
}
