// Package model holds the shared types passed between the portfolio,
// search, and pitch packages.
package model

// RecordStatus indicates which sheet an engagement was loaded from.
type RecordStatus string

const (
	StatusActive RecordStatus = "active"
	StatusClosed RecordStatus = "closed"
)

// Record is one past engagement from the portfolio workbook. Identity is
// the row index within a load cycle; records are immutable after load.
type Record struct {
	Row          int          `json:"row"`
	ClientName   string       `json:"client_name"`
	Industry     string       `json:"industry"`
	Technologies string       `json:"technologies"`
	BusinessCase string       `json:"business_case"`
	Solution     string       `json:"solution"`
	Deliverables string       `json:"deliverables"`
	Problem      string       `json:"problem_statement"`
	Status       RecordStatus `json:"status"`

	// Extra preserves normalized columns that have no named field,
	// keyed by the lowercase-underscore column name.
	Extra map[string]string `json:"extra,omitempty"`
}

// Field returns a record attribute by its normalized column name, falling
// back to the Extra map for unrecognized columns.
func (r Record) Field(key string) string {
	switch key {
	case "client_name":
		return r.ClientName
	case "industry":
		return r.Industry
	case "technologies":
		return r.Technologies
	case "business_case":
		return r.BusinessCase
	case "solution":
		return r.Solution
	case "key_deliverables":
		return r.Deliverables
	case "problem_or_opportunity_statement":
		return r.Problem
	case "status":
		return string(r.Status)
	}
	return r.Extra[key]
}
