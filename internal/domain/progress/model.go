package progress

import (
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/shopspring/decimal"
)

// MeetingPhase is a progress snapshot recorded during a site meeting.
type MeetingPhase struct {
	PhaseCode         string              `json:"phase_code"`
	InstalledQuantity decimal.NullDecimal `json:"installed_quantity"`
	PercentComplete   decimal.NullDecimal `json:"percent_complete"`
	MeetingDate       string              `json:"meeting_date,omitempty"`
	UpdatedAt         string              `json:"updated_at,omitempty"`
}

// Source names where a scope's installed quantity came from.
type Source string

const (
	// SourceMeeting means a matching meeting phase supplied the quantity.
	SourceMeeting Source = "meeting"
	// SourceScope means the scope's own stored installed value was used.
	SourceScope Source = "scope"
	// SourceNone means neither source had data and installed defaulted to zero.
	SourceNone Source = "none"
)

// MatchKind describes how a meeting phase was matched to a scope.
type MatchKind string

const (
	MatchNone      MatchKind = ""
	MatchExact     MatchKind = "exact"
	MatchSubstring MatchKind = "substring"
)

// ScopeProgress is the reconciled view of one scope. PercentComplete is not
// capped, so values above 100 surface inconsistent upstream data; BarWidth is
// the same value clamped to [0,100] for progress bars.
type ScopeProgress struct {
	ScopeID         project.ID `json:"scope_id"`
	ScopeType       string     `json:"scope_type"`
	InitialQuantity float64    `json:"initial_quantity"`
	Installed       float64    `json:"installed"`
	Remaining       float64    `json:"remaining"`
	PercentComplete float64    `json:"percent_complete"`
	BarWidth        float64    `json:"bar_width"`
	OverInstalled   bool       `json:"over_installed,omitempty"`
	Source          Source     `json:"source"`
	Match           MatchKind  `json:"match,omitempty"`
	MatchedPhase    string     `json:"matched_phase,omitempty"`
	Masons          int        `json:"masons"`
	Tenders         int        `json:"tenders"`
	Operators       int        `json:"operators"`
}

// Rollup aggregates reconciled scopes into project totals.
type Rollup struct {
	ScopeCount        int     `json:"scope_count"`
	TotalQuantity     float64 `json:"total_quantity"`
	TotalInstalled    float64 `json:"total_installed"`
	Remaining         float64 `json:"remaining"`
	ProductionPercent float64 `json:"production_percent"`
}

// Result is the reconciled view of a project's scopes. Scopes keeps input
// order; ByScope indexes the same values by scope id.
type Result struct {
	Scopes  []ScopeProgress              `json:"scopes"`
	ByScope map[project.ID]ScopeProgress `json:"-"`
	Rollup  Rollup                       `json:"rollup"`
}
