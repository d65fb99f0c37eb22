package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var ingestCompanyID int64

var ingestCmd = &cobra.Command{
	Use:   "ingest --company <id> <pdf>",
	Short: "Extract financial metrics from a PDF report",
	Long: `Reads the PDF, asks the model for per-year balance sheet metrics and stores them
for the company. Years already stored for the company are overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := mustLoadConfig()
		if err != nil {
			return err
		}

		deps, err := initializeDependencies(ctx, cfg, depOptions{NeedModel: true})
		if err != nil {
			return err
		}
		defer deps.Close()

		c, err := deps.Companies.GetByID(ctx, ingestCompanyID)
		if err != nil {
			return err
		}

		res, err := deps.Pipeline.ProcessDocument(ctx, c.ID, args[0])
		if res != nil {
			fmt.Printf("%s: stored years %v\n", c.Name, res.StoredYears)
			if len(res.FailedYears) > 0 {
				fmt.Printf("%s: failed years %s\n", c.Name, strings.Join(res.FailedKeys(), ", "))
			}
		}
		return err
	},
}

func init() {
	ingestCmd.Flags().Int64Var(&ingestCompanyID, "company", 0, "company id the document belongs to")
	_ = ingestCmd.MarkFlagRequired("company")
}
