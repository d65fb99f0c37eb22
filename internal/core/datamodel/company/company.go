package company

type Company struct {
	ID        int64   `gorm:"primaryKey" db:"id"`
	Name      string  `gorm:"column:name;uniqueIndex;not null" db:"name"`
	GroupName *string `gorm:"column:group_name" db:"group_name"`
}

func (Company) TableName() string {
	return "companies"
}

// Permission is one grant row. Its existence is the whole authorization signal.
type Permission struct {
	UserID    int64 `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	CompanyID int64 `gorm:"column:company_id;primaryKey;autoIncrement:false"`
}

func (Permission) TableName() string {
	return "user_company_permissions"
}
