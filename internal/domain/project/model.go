package project

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ID identifies a backend entity. The backend emits numeric primary keys but
// some endpoints return them as strings, so both forms are accepted.
type ID string

// UnmarshalJSON accepts a JSON number, string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// ScheduleStatus is the traffic-light schedule indicator supplied by the backend.
type ScheduleStatus string

const (
	ScheduleGreen  ScheduleStatus = "GREEN"
	ScheduleYellow ScheduleStatus = "YELLOW"
	ScheduleRed    ScheduleStatus = "RED"
)

// ScopeTypeRef references a scope category. The backend sends it inline as a
// name, as a bare primary key, or as an object.
type ScopeTypeRef struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
}

// UnmarshalJSON accepts a string name, a numeric id or a {id,name,code} object.
func (r *ScopeTypeRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = ScopeTypeRef{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return err
		}
		*r = ScopeTypeRef{Name: name}
	case '{':
		var raw struct {
			ID   ID     `json:"id"`
			Name string `json:"name"`
			Code string `json:"code"`
		}
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		*r = ScopeTypeRef{ID: raw.ID, Name: raw.Name, Code: raw.Code}
	default:
		var id ID
		if err := id.UnmarshalJSON(trimmed); err != nil {
			return err
		}
		*r = ScopeTypeRef{ID: id}
	}
	return nil
}

// Scope is a unit of work within a project.
type Scope struct {
	ID              ID                  `json:"id"`
	ProjectID       ID                  `json:"project,omitempty"`
	ScopeType       *ScopeTypeRef       `json:"scope_type,omitempty"`
	ScopeTypeDetail *ScopeTypeRef       `json:"scope_type_detail,omitempty"`
	Description     string              `json:"description,omitempty"`
	QtySqFt         decimal.NullDecimal `json:"qty_sq_ft"`
	Quantity        decimal.NullDecimal `json:"quantity"`
	Installed       decimal.NullDecimal `json:"installed"`
	Foreman         int                 `json:"foreman"`
	Masons          int                 `json:"masons"`
	Tenders         int                 `json:"tenders"`
	Operators       int                 `json:"operators"`
}

// InitialQuantity returns the planned total, preferring qty_sq_ft over quantity.
func (s Scope) InitialQuantity() decimal.Decimal {
	if s.QtySqFt.Valid {
		return s.QtySqFt.Decimal
	}
	if s.Quantity.Valid {
		return s.Quantity.Decimal
	}
	return decimal.Zero
}

// TypeName returns the display name of the scope's category.
func (s Scope) TypeName() string {
	for _, ref := range []*ScopeTypeRef{s.ScopeType, s.ScopeTypeDetail} {
		if ref == nil {
			continue
		}
		if name := strings.TrimSpace(ref.Name); name != "" {
			return name
		}
	}
	for _, ref := range []*ScopeTypeRef{s.ScopeType, s.ScopeTypeDetail} {
		if ref != nil && strings.TrimSpace(ref.Code) != "" {
			return strings.TrimSpace(ref.Code)
		}
	}
	return ""
}

// SpectrumData is the optional ERP enrichment attached to a project. Every
// section may be absent.
type SpectrumData struct {
	Dates    json.RawMessage `json:"dates,omitempty"`
	Phases   json.RawMessage `json:"phases,omitempty"`
	UDF      json.RawMessage `json:"udf,omitempty"`
	Contacts json.RawMessage `json:"contacts,omitempty"`
}

// Sections lists the enrichment sections that carry data.
func (d *SpectrumData) Sections() []string {
	if d == nil {
		return nil
	}
	var sections []string
	for _, s := range []struct {
		name string
		raw  json.RawMessage
	}{
		{"dates", d.Dates},
		{"phases", d.Phases},
		{"udf", d.UDF},
		{"contacts", d.Contacts},
	} {
		if present(s.raw) {
			sections = append(sections, s.name)
		}
	}
	return sections
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Project is a construction job as delivered by the backend.
type Project struct {
	ID                        ID                  `json:"id"`
	JobNumber                 string              `json:"job_number"`
	Name                      string              `json:"name"`
	JobDescription            string              `json:"job_description,omitempty"`
	Status                    string              `json:"status,omitempty"`
	SpectrumStatusCode        string              `json:"spectrum_status_code,omitempty"`
	BranchCode                string              `json:"branch_code,omitempty"`
	BranchName                string              `json:"branch_name,omitempty"`
	StartDate                 string              `json:"start_date,omitempty"`
	ScheduleStatus            ScheduleStatus      `json:"schedule_status,omitempty"`
	DaysLate                  int                 `json:"days_late,omitempty"`
	ProductionPercentComplete decimal.NullDecimal `json:"production_percent_complete"`
	TotalInstalled            decimal.NullDecimal `json:"total_installed"`
	TotalQuantity             decimal.NullDecimal `json:"total_quantity"`
	Scopes                    []Scope             `json:"scopes,omitempty"`
	SpectrumData              *SpectrumData       `json:"spectrum_data,omitempty"`
}

// Started reports whether the project's start date is at or before now.
// Projects without a parseable start date have not started.
func (p Project) Started(now time.Time) bool {
	start, ok := ParseTimestamp(p.StartDate)
	if !ok {
		return false
	}
	return !start.After(now)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp parses the date and datetime layouts the backend emits.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
