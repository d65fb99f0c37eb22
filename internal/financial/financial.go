package financial

import (
	"encoding/json"
	"fmt"
	"sort"

	financialDatamodel "github.com/frahmantamala/financial-analyst/internal/core/datamodel/financial"
)

// Record is the extracted metrics of one company for one fiscal year.
type Record struct {
	CompanyID      int64
	Year           int
	Metrics        Metrics
	SourceDocument string
}

type Row struct {
	Year           int     `json:"year"`
	Values         []Value `json:"values"`
	SourceDocument string  `json:"source_document,omitempty"`
}

// Table is the stored data of one company with years as rows and metrics as
// columns. Values[i] belongs to Columns[i].
type Table struct {
	CompanyID   int64    `json:"company_id"`
	CompanyName string   `json:"company_name"`
	Columns     []string `json:"columns"`
	Rows        []Row    `json:"rows"`
}

// Value returns the cell for the given year and metric.
func (t *Table) Value(year int, metric string) (Value, bool) {
	col := -1
	for i, c := range t.Columns {
		if c == metric {
			col = i
			break
		}
	}
	if col < 0 {
		return Value{}, false
	}
	for _, r := range t.Rows {
		if r.Year == year {
			return r.Values[col], true
		}
	}
	return Value{}, false
}

func (t *Table) Years() []int {
	years := make([]int, 0, len(t.Rows))
	for _, r := range t.Rows {
		years = append(years, r.Year)
	}
	return years
}

// BuildTable pivots records into a table sorted by year ascending.
func BuildTable(companyID int64, companyName string, records []Record) *Table {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	names := map[string]struct{}{}
	for _, r := range sorted {
		for name := range r.Metrics {
			names[name] = struct{}{}
		}
	}
	cols := OrderColumns(names)

	t := &Table{
		CompanyID:   companyID,
		CompanyName: companyName,
		Columns:     cols,
		Rows:        make([]Row, 0, len(sorted)),
	}
	for _, r := range sorted {
		values := make([]Value, len(cols))
		for i, c := range cols {
			values[i] = r.Metrics[c]
		}
		t.Rows = append(t.Rows, Row{Year: r.Year, Values: values, SourceDocument: r.SourceDocument})
	}
	return t
}

func ToDataModel(r Record) (*financialDatamodel.FinancialData, error) {
	data, err := json.Marshal(r.Metrics)
	if err != nil {
		return nil, fmt.Errorf("encode metrics for year %d: %w", r.Year, err)
	}
	row := &financialDatamodel.FinancialData{
		CompanyID: r.CompanyID,
		Year:      r.Year,
		DataJSON:  string(data),
	}
	if r.SourceDocument != "" {
		src := r.SourceDocument
		row.SourceDocument = &src
	}
	return row, nil
}

func FromDataModel(row *financialDatamodel.FinancialData) (Record, error) {
	var m Metrics
	if err := json.Unmarshal([]byte(row.DataJSON), &m); err != nil {
		return Record{}, fmt.Errorf("decode metrics for company %d year %d: %w", row.CompanyID, row.Year, err)
	}
	r := Record{
		CompanyID: row.CompanyID,
		Year:      row.Year,
		Metrics:   m,
	}
	if row.SourceDocument != nil {
		r.SourceDocument = *row.SourceDocument
	}
	return r, nil
}
