package financial

type FinancialData struct {
	ID             int64   `gorm:"primaryKey"`
	CompanyID      int64   `gorm:"column:company_id;not null;uniqueIndex:idx_company_year"`
	Year           int     `gorm:"column:year;not null;uniqueIndex:idx_company_year"`
	DataJSON       string  `gorm:"column:data_json;not null"`
	SourceDocument *string `gorm:"column:source_document"`
}

func (FinancialData) TableName() string {
	return "financial_data"
}
