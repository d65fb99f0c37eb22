package store

import (
	"context"

	financialDatamodel "github.com/frahmantamala/financial-analyst/internal/core/datamodel/financial"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FinancialRepository struct {
	db *gorm.DB
}

func NewFinancialRepository(db *gorm.DB) *FinancialRepository {
	return &FinancialRepository{db: db}
}

// Upsert inserts the row or, when (company_id, year) already exists, replaces
// its metrics and source document.
func (r *FinancialRepository) Upsert(ctx context.Context, row *financialDatamodel.FinancialData) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{"data_json", "source_document"}),
		}).
		Create(row).Error
}

func (r *FinancialRepository) ListByCompany(ctx context.Context, companyID int64) ([]*financialDatamodel.FinancialData, error) {
	var rows []*financialDatamodel.FinancialData
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("year ASC").Find(&rows).Error
	return rows, err
}

func (r *FinancialRepository) CountByCompany(ctx context.Context, companyID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&financialDatamodel.FinancialData{}).Where("company_id = ?", companyID).Count(&count).Error
	return count, err
}
