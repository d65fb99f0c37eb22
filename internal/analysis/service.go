// Package analysis answers free-text questions about a company's stored
// financial table with the language model.
package analysis

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/financial-analyst/internal"
	"github.com/frahmantamala/financial-analyst/internal/financial"
	"github.com/frahmantamala/financial-analyst/internal/llm"
	"github.com/frahmantamala/financial-analyst/pkg/logger"
)

// TableSource loads the table of a company the user is allowed to view.
type TableSource interface {
	GetCompanyFinancials(ctx context.Context, userID, companyID int64) (*financial.Table, error)
}

type Service struct {
	model  llm.Model
	tables TableSource
	logger *slog.Logger
}

func NewService(model llm.Model, tables TableSource, logger *slog.Logger) *Service {
	return &Service{
		model:  model,
		tables: tables,
		logger: logger,
	}
}

// Answer returns the model's reply verbatim. Model failures are logged and
// replaced by FallbackAnswer, so Answer never fails.
func (s *Service) Answer(ctx context.Context, question string, table *financial.Table) string {
	prompt := BuildAnalysisPrompt(table.CompanyName, RenderTable(table), question)

	reply, err := s.model.Generate(ctx, prompt)
	if err != nil {
		logger.Scoped(ctx, s.logger).Error("analysis failed",
			"company_id", table.CompanyID,
			"error", internal.ErrAnalysis.WithCause(err))
		return FallbackAnswer
	}
	return reply
}

// Ask checks access, loads the company's table and answers the question.
// Forbidden companies and companies without data are reported as errors.
func (s *Service) Ask(ctx context.Context, userID, companyID int64, dto QuestionDTO) (*AnswerResponse, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	table, err := s.tables.GetCompanyFinancials(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}

	logger.Scoped(ctx, s.logger).Info("answering question", "user_id", userID, "company_id", companyID, "years", len(table.Rows))
	return &AnswerResponse{
		CompanyID: companyID,
		Question:  dto.Question,
		Answer:    s.Answer(ctx, dto.Question, table),
	}, nil
}
