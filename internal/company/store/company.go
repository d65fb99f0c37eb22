package store

import (
	"context"
	"errors"

	companyDatamodel "github.com/frahmantamala/financial-analyst/internal/core/datamodel/company"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const listAccessibleQuery = `
SELECT c.id, c.name, c.group_name
FROM companies c
JOIN user_company_permissions p ON p.company_id = c.id
WHERE p.user_id = ?
ORDER BY c.name`

type CompanyRepository struct {
	db *gorm.DB
	sx *sqlx.DB
}

func NewCompanyRepository(db *gorm.DB, sx *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db, sx: sx}
}

func (r *CompanyRepository) ListAccessible(ctx context.Context, userID int64) ([]*companyDatamodel.Company, error) {
	companies := []*companyDatamodel.Company{}
	err := r.sx.SelectContext(ctx, &companies, r.sx.Rebind(listAccessibleQuery), userID)
	return companies, err
}

func (r *CompanyRepository) HasAccess(ctx context.Context, userID, companyID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&companyDatamodel.Permission{}).
		Where("user_id = ? AND company_id = ?", userID, companyID).
		Count(&count).Error
	return count > 0, err
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*companyDatamodel.Company, error) {
	var c companyDatamodel.Company
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) GetByName(ctx context.Context, name string) (*companyDatamodel.Company, error) {
	var c companyDatamodel.Company
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) ListByGroup(ctx context.Context, group string) ([]*companyDatamodel.Company, error) {
	var companies []*companyDatamodel.Company
	err := r.db.WithContext(ctx).Where("group_name = ?", group).Order("id ASC").Find(&companies).Error
	return companies, err
}

func (r *CompanyRepository) Create(ctx context.Context, c *companyDatamodel.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CompanyRepository) Grant(ctx context.Context, userID, companyID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&companyDatamodel.Permission{UserID: userID, CompanyID: companyID}).Error
}
