package company

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/financial-analyst/internal"
	companyDatamodel "github.com/frahmantamala/financial-analyst/internal/core/datamodel/company"
	"github.com/frahmantamala/financial-analyst/pkg/logger"
)

type RepositoryAPI interface {
	ListAccessible(ctx context.Context, userID int64) ([]*companyDatamodel.Company, error)
	HasAccess(ctx context.Context, userID, companyID int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*companyDatamodel.Company, error)
	GetByName(ctx context.Context, name string) (*companyDatamodel.Company, error)
	ListByGroup(ctx context.Context, group string) ([]*companyDatamodel.Company, error)
	Create(ctx context.Context, c *companyDatamodel.Company) error
	Grant(ctx context.Context, userID, companyID int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ListAccessibleCompanies returns every company the user holds a grant for,
// ordered by name. An empty result is not an error.
func (s *Service) ListAccessibleCompanies(ctx context.Context, userID int64) ([]*Company, error) {
	rows, err := s.repo.ListAccessible(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list accessible companies", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("failed to list companies", err)
	}

	companies := make([]*Company, 0, len(rows))
	for _, row := range rows {
		companies = append(companies, FromDataModel(row))
	}
	return companies, nil
}

// CompanyPicker wraps ListAccessibleCompanies with the warning shown when the
// user has no grants at all.
func (s *Service) CompanyPicker(ctx context.Context, userID int64) (CompaniesResponse, error) {
	companies, err := s.ListAccessibleCompanies(ctx, userID)
	if err != nil {
		return CompaniesResponse{}, err
	}

	resp := CompaniesResponse{Companies: make([]CompanyResponse, 0, len(companies))}
	for _, c := range companies {
		resp.Companies = append(resp.Companies, c.ToResponse())
	}
	if len(resp.Companies) == 0 {
		resp.Warning = internal.NoAccessibleCompaniesWarning
	}
	return resp, nil
}

func (s *Service) HasAccess(ctx context.Context, userID, companyID int64) (bool, error) {
	ok, err := s.repo.HasAccess(ctx, userID, companyID)
	if err != nil {
		s.logger.Error("permission lookup failed", "user_id", userID, "company_id", companyID, "error", err)
		return false, internal.NewInternalError("failed to check company access", err)
	}
	return ok, nil
}

// Authorize loads the company only when the user holds a grant for it. A
// missing grant and a missing company both yield ErrCompanyForbidden.
func (s *Service) Authorize(ctx context.Context, userID, companyID int64) (*Company, error) {
	ok, err := s.HasAccess(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Scoped(ctx, s.logger).Warn("company access denied", "user_id", userID, "company_id", companyID)
		return nil, internal.ErrCompanyForbidden
	}
	return s.GetByID(ctx, companyID)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Company, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load company", err)
	}
	if row == nil {
		return nil, internal.ErrCompanyNotFound
	}
	return FromDataModel(row), nil
}

// Ensure returns the company with the given name, creating it when missing.
func (s *Service) Ensure(ctx context.Context, name, group string) (*Company, error) {
	row, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if row != nil {
		return FromDataModel(row), nil
	}

	c := NewCompany(name, group)
	dm := ToDataModel(c)
	if err := s.repo.Create(ctx, dm); err != nil {
		return nil, err
	}
	c.ID = dm.ID
	s.logger.Info("company created", "company_id", c.ID, "name", c.Name)
	return c, nil
}

// Grant records that the user may view the company. Repeating a grant is a no-op.
func (s *Service) Grant(ctx context.Context, userID, companyID int64) error {
	return s.repo.Grant(ctx, userID, companyID)
}

// GrantGroup materializes one grant row per company currently in the group.
// Companies added to the group later need their own grant.
func (s *Service) GrantGroup(ctx context.Context, userID int64, group string) (int, error) {
	rows, err := s.repo.ListByGroup(ctx, group)
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		if err := s.repo.Grant(ctx, userID, row.ID); err != nil {
			return 0, err
		}
	}
	s.logger.Info("group access granted", "user_id", userID, "group", group, "companies", len(rows))
	return len(rows), nil
}
