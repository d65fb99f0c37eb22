package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/frahmantamala/financial-analyst/internal"
	"github.com/frahmantamala/financial-analyst/internal/analysis"
	"github.com/frahmantamala/financial-analyst/internal/auth"
	"github.com/spf13/cobra"
)

var (
	askUsername  string
	askCompanyID int64
	askPlain     bool
	askStyle     string
)

var askCmd = &cobra.Command{
	Use:   "ask --user <username> --company <id> <question>",
	Short: "Ask a question about a company's financials",
	Long: `Answers a free-text question from the stored financial table of a company.
The user must have access to the company.`,
	Args: cobra.MinimumNArgs(1),
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

		user, err := deps.Auth.FindByUsername(ctx, askUsername)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				return fmt.Errorf("unknown user %q", askUsername)
			}
			return err
		}

		resp, err := deps.Analysis.Ask(ctx, user.ID, askCompanyID, analysis.QuestionDTO{
			Question: strings.Join(args, " "),
		})
		if err != nil {
			if appErr, ok := internal.IsAppError(err); ok {
				return errors.New(appErr.GetDetailedMessage())
			}
			return err
		}

		out, err := renderAnswer(resp.Answer, askPlain, askStyle)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

// renderAnswer formats the model's markdown for the terminal.
func renderAnswer(answer string, plain bool, style string) (string, error) {
	if plain {
		return answer + "\n", nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(answer)
}

func init() {
	askCmd.Flags().StringVar(&askUsername, "user", "", "username asking the question")
	askCmd.Flags().Int64Var(&askCompanyID, "company", 0, "company id")
	askCmd.Flags().BoolVar(&askPlain, "plain", false, "print the raw markdown answer")
	askCmd.Flags().StringVar(&askStyle, "style", "dark", "glamour style (dark, light, notty, ...)")
	_ = askCmd.MarkFlagRequired("user")
	_ = askCmd.MarkFlagRequired("company")
}
