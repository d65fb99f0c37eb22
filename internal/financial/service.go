package financial

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/financial-analyst/internal"
	"github.com/frahmantamala/financial-analyst/internal/company"
	financialDatamodel "github.com/frahmantamala/financial-analyst/internal/core/datamodel/financial"
)

type RepositoryAPI interface {
	Upsert(ctx context.Context, row *financialDatamodel.FinancialData) error
	ListByCompany(ctx context.Context, companyID int64) ([]*financialDatamodel.FinancialData, error)
	CountByCompany(ctx context.Context, companyID int64) (int64, error)
}

// AccessChecker resolves a company for a user, failing when no grant exists.
type AccessChecker interface {
	Authorize(ctx context.Context, userID, companyID int64) (*company.Company, error)
}

type Service struct {
	repo   RepositoryAPI
	access AccessChecker
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, access AccessChecker, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		access: access,
		logger: logger,
	}
}

// Save upserts one year. An existing row for the same company and year is
// replaced, metrics and source document alike.
func (s *Service) Save(ctx context.Context, r Record) error {
	row, err := ToDataModel(r)
	if err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		return fmt.Errorf("upsert company %d year %d: %w", r.CompanyID, r.Year, err)
	}
	s.logger.Info("financial data stored", "company_id", r.CompanyID, "year", r.Year, "metrics", len(r.Metrics))
	return nil
}

func (s *Service) HasData(ctx context.Context, companyID int64) (bool, error) {
	n, err := s.repo.CountByCompany(ctx, companyID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetCompanyFinancials returns the table of a company the user may view.
func (s *Service) GetCompanyFinancials(ctx context.Context, userID, companyID int64) (*Table, error) {
	c, err := s.access.Authorize(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	return s.LoadTable(ctx, c)
}

// LoadTable reads every stored year of the company. No permission check.
func (s *Service) LoadTable(ctx context.Context, c *company.Company) (*Table, error) {
	rows, err := s.repo.ListByCompany(ctx, c.ID)
	if err != nil {
		s.logger.Error("failed to load financial data", "company_id", c.ID, "error", err)
		return nil, internal.NewInternalError("failed to load financial data", err)
	}
	if len(rows) == 0 {
		return nil, internal.ErrNoDataFound.WithMessage(
			fmt.Sprintf("No financial data found for %s. Please process the relevant documents.", c.Name))
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		r, err := FromDataModel(row)
		if err != nil {
			s.logger.Error("skipping unreadable financial row", "company_id", c.ID, "year", row.Year, "error", err)
			continue
		}
		records = append(records, r)
	}

	return BuildTable(c.ID, c.Name, records), nil
}
