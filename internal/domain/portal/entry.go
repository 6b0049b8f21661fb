package portal

import (
	"github.com/rpggio/sitetrack/internal/domain/progress"
	"github.com/rpggio/sitetrack/internal/domain/project"
)

// Entry is a portal project with its derived status and progress.
type Entry struct {
	Project           project.Project          `json:"project"`
	Status            Status                   `json:"status"`
	StatusLabel       string                   `json:"status_label"`
	Scopes            []progress.ScopeProgress `json:"scopes"`
	Rollup            progress.Rollup          `json:"rollup"`
	ProductionPercent *float64                 `json:"production_percent"`
	ProductionDisplay string                   `json:"production_display"`
}

// BuildEntries derives an Entry per project. Portal payloads carry no meeting
// data, so scopes reconcile against their stored installed values.
func BuildEntries(projects []project.Project) []Entry {
	entries := make([]Entry, 0, len(projects))
	for _, p := range projects {
		result := progress.Reconcile(p.Scopes, nil)
		pct := progress.ProductionPercent(p)
		entries = append(entries, Entry{
			Project:           p,
			Status:            NormalizeStatus(p),
			StatusLabel:       StatusLabel(p),
			Scopes:            result.Scopes,
			Rollup:            result.Rollup,
			ProductionPercent: pct,
			ProductionDisplay: progress.FormatPercent(pct),
		})
	}
	return entries
}
