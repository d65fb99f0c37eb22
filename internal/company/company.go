package company

import (
	companyDatamodel "github.com/frahmantamala/financial-analyst/internal/core/datamodel/company"
)

type Company struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	GroupName *string `json:"group_name,omitempty"`
}

func (c *Company) InGroup(group string) bool {
	return c.GroupName != nil && *c.GroupName == group
}

func (c *Company) ToResponse() CompanyResponse {
	resp := CompanyResponse{ID: c.ID, Name: c.Name}
	if c.GroupName != nil {
		resp.GroupName = *c.GroupName
	}
	return resp
}

func NewCompany(name, group string) *Company {
	c := &Company{Name: name}
	if group != "" {
		c.GroupName = &group
	}
	return c
}

func ToDataModel(c *Company) *companyDatamodel.Company {
	return &companyDatamodel.Company{
		ID:        c.ID,
		Name:      c.Name,
		GroupName: c.GroupName,
	}
}

func FromDataModel(c *companyDatamodel.Company) *Company {
	return &Company{
		ID:        c.ID,
		Name:      c.Name,
		GroupName: c.GroupName,
	}
}
