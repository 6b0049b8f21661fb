package portal

import "time"

// NoProjectsMessage is shown when the filtered list is empty.
const NoProjectsMessage = "No projects found."

// Query selects the list view of the dashboard.
type Query struct {
	Filter
	Page     int `json:"page,omitempty"`
	PageSize int `json:"page_size,omitempty"`
}

// Dashboard is the full portal view.
type Dashboard struct {
	Stats     Stats       `json:"stats"`
	Divisions []Division  `json:"divisions"`
	Charts    Charts      `json:"charts"`
	Projects  Page[Entry] `json:"projects"`
	Filtered  int         `json:"filtered"`
	Message   string      `json:"message,omitempty"`
	LoadedAt  time.Time   `json:"loaded_at"`
	Cached    bool        `json:"cached,omitempty"`
}

// BuildDashboard computes the dashboard for entries. Stats, divisions and
// charts cover every entry; only the project list honours the filter.
func BuildDashboard(entries []Entry, q Query, now time.Time) Dashboard {
	filtered := q.Filter.Apply(entries)
	d := Dashboard{
		Stats:     ComputeStats(entries),
		Divisions: Divisions(entries),
		Charts:    ComputeCharts(entries, now),
		Projects:  Paginate(filtered, q.Page, q.PageSize),
		Filtered:  len(filtered),
	}
	if d.Divisions == nil {
		d.Divisions = []Division{}
	}
	if len(filtered) == 0 {
		d.Message = NoProjectsMessage
	}
	return d
}
