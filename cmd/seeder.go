package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/financial-analyst/internal/seed"
	"github.com/spf13/cobra"
)

var (
	seedFile   string
	seedIngest bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed companies, users and access grants",
	Long: `Seed the database from a YAML file. Existing users and grants are left untouched,
so the command can be re-run. With --ingest the listed documents are processed for
companies that have no financial data yet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := mustLoadConfig()
		if err != nil {
			return err
		}

		path := seedFile
		if path == "" {
			path = cfg.Seed.File
		}
		file, err := seed.Load(path)
		if err != nil {
			return err
		}

		deps, err := initializeDependencies(ctx, cfg, depOptions{NeedModel: seedIngest})
		if err != nil {
			return err
		}
		defer deps.Close()

		seeder := seed.NewSeeder(deps.Auth, deps.Companies, deps.Logger)
		summary, err := seeder.Apply(ctx, file)
		if err != nil {
			return err
		}
		fmt.Printf("companies: %d, users created: %d, users skipped: %d, grants: %d\n",
			summary.Companies, summary.UsersCreated, summary.UsersSkipped, summary.Grants)

		if !seedIngest {
			return nil
		}

		processed, err := seeder.Ingest(ctx, file, deps.Pipeline, deps.Financial)
		fmt.Printf("documents processed: %d\n", processed)
		return err
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed file (defaults to seed.file from config)")
	seedCmd.Flags().BoolVar(&seedIngest, "ingest", false, "process seed documents for companies without data")
}
