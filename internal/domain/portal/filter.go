package portal

import (
	"sort"
	"strings"
)

// Division is a branch that owns projects.
type Division struct {
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// Key identifies a division by code, or by name when no code is set.
func (d Division) Key() string {
	if d.Code != "" {
		return d.Code
	}
	return d.Name
}

// Divisions collects the distinct divisions of entries sorted by key.
func Divisions(entries []Entry) []Division {
	seen := make(map[string]struct{})
	var divisions []Division
	for _, e := range entries {
		d := entryDivision(e)
		key := d.Key()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		divisions = append(divisions, d)
	}
	sort.SliceStable(divisions, func(i, j int) bool {
		return divisions[i].Key() < divisions[j].Key()
	})
	return divisions
}

func entryDivision(e Entry) Division {
	return Division{
		Code: strings.TrimSpace(e.Project.BranchCode),
		Name: strings.TrimSpace(e.Project.BranchName),
	}
}

// Filter narrows the project list. Empty fields match everything.
type Filter struct {
	Status   Status `json:"status,omitempty"`
	Division string `json:"division,omitempty"`
	Search   string `json:"search,omitempty"`
}

// Apply returns the entries passing the status, division and search filters,
// evaluated in that order.
func (f Filter) Apply(entries []Entry) []Entry {
	status := Status(strings.ToUpper(strings.TrimSpace(string(f.Status))))
	division := strings.TrimSpace(f.Division)
	term := strings.ToLower(strings.TrimSpace(f.Search))

	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if status != "" && e.Status != status {
			continue
		}
		if division != "" {
			if d := entryDivision(e); d.Code != division && d.Name != division {
				continue
			}
		}
		if term != "" && !matchesSearch(e, term) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

func matchesSearch(e Entry, term string) bool {
	p := e.Project
	for _, field := range []string{p.Name, p.JobDescription, p.JobNumber, p.BranchName, p.BranchCode} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
