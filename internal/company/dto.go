package company

type CompanyResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	GroupName string `json:"group_name,omitempty"`
}

// CompaniesResponse is the company picker payload. Warning is set only when
// the list is empty.
type CompaniesResponse struct {
	Companies []CompanyResponse `json:"companies"`
	Warning   string            `json:"warning,omitempty"`
}
