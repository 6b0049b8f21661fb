package portal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rpggio/sitetrack/internal/domain/progress"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/shopspring/decimal"
)

const summaryScopeLimit = 3

const (
	riskHigh     = "Schedule risk is high: the project is running behind schedule and needs attention."
	riskModerate = "Schedule risk is moderate: upcoming milestones should be watched closely."
	riskLow      = "The project is tracking on schedule."
)

// ScopeLine is one scope highlighted in a summary.
type ScopeLine struct {
	ScopeType       string  `json:"scope_type"`
	Remaining       float64 `json:"remaining"`
	PercentComplete float64 `json:"percent_complete"`
	Text            string  `json:"text"`
}

// Summary is a short narrative of a project's progress.
type Summary struct {
	ProjectID        project.ID  `json:"project_id"`
	JobNumber        string      `json:"job_number"`
	Headline         string      `json:"headline"`
	Totals           string      `json:"totals"`
	ScheduleRisk     string      `json:"schedule_risk"`
	LargestRemaining []ScopeLine `json:"largest_remaining"`
	MostComplete     []ScopeLine `json:"most_complete"`
}

// Text joins the summary into a single paragraph.
func (s Summary) Text() string {
	parts := []string{s.Headline, s.Totals, s.ScheduleRisk}
	if len(s.LargestRemaining) > 0 {
		parts = append(parts, "Largest remaining scopes: "+joinLines(s.LargestRemaining)+".")
	}
	if len(s.MostComplete) > 0 {
		parts = append(parts, "Most complete scopes: "+joinLines(s.MostComplete)+".")
	}
	return strings.Join(parts, " ")
}

// Summarize builds the narrative summary of an entry.
func Summarize(e Entry) Summary {
	return Summary{
		ProjectID:        e.Project.ID,
		JobNumber:        e.Project.JobNumber,
		Headline:         headline(e.ProductionPercent),
		Totals:           totals(e),
		ScheduleRisk:     scheduleRisk(e.Project.ScheduleStatus),
		LargestRemaining: largestRemaining(e.Scopes),
		MostComplete:     mostComplete(e.Scopes),
	}
}

func headline(pct *float64) string {
	if pct == nil {
		return "Production progress is not yet available for this project."
	}
	return fmt.Sprintf("Production is %s complete.", progress.FormatPercent(pct))
}

func totals(e Entry) string {
	installed, qty, ok := entryTotals(e)
	if !ok {
		return "Installed quantities are not yet available."
	}
	remaining := decimal.Max(decimal.Zero, qty.Sub(installed))
	return fmt.Sprintf("%s of %s installed, %s remaining.",
		installed.Round(2).String(), qty.Round(2).String(), remaining.Round(2).String())
}

func entryTotals(e Entry) (decimal.Decimal, decimal.Decimal, bool) {
	if e.Rollup.ScopeCount > 0 {
		return decimal.NewFromFloat(e.Rollup.TotalInstalled), decimal.NewFromFloat(e.Rollup.TotalQuantity), true
	}
	p := e.Project
	if p.TotalInstalled.Valid && p.TotalQuantity.Valid {
		return p.TotalInstalled.Decimal, p.TotalQuantity.Decimal, true
	}
	return decimal.Zero, decimal.Zero, false
}

func scheduleRisk(status project.ScheduleStatus) string {
	switch project.ScheduleStatus(strings.ToUpper(string(status))) {
	case project.ScheduleRed:
		return riskHigh
	case project.ScheduleYellow:
		return riskModerate
	default:
		return riskLow
	}
}

func largestRemaining(scopes []progress.ScopeProgress) []ScopeLine {
	candidates := make([]progress.ScopeProgress, 0, len(scopes))
	for _, sp := range scopes {
		if sp.Remaining > 0 {
			candidates = append(candidates, sp)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Remaining > candidates[j].Remaining
	})
	lines := make([]ScopeLine, 0, summaryScopeLimit)
	for _, sp := range candidates {
		if len(lines) == summaryScopeLimit {
			break
		}
		lines = append(lines, scopeLine(sp, fmt.Sprintf("%s (%s remaining)", scopeName(sp), progress.FormatQuantity(sp.Remaining))))
	}
	return lines
}

func mostComplete(scopes []progress.ScopeProgress) []ScopeLine {
	candidates := append([]progress.ScopeProgress(nil), scopes...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].PercentComplete > candidates[j].PercentComplete
	})
	lines := make([]ScopeLine, 0, summaryScopeLimit)
	for _, sp := range candidates {
		if len(lines) == summaryScopeLimit {
			break
		}
		pct := sp.PercentComplete
		lines = append(lines, scopeLine(sp, fmt.Sprintf("%s (%s)", scopeName(sp), progress.FormatPercent(&pct))))
	}
	return lines
}

func scopeLine(sp progress.ScopeProgress, text string) ScopeLine {
	return ScopeLine{
		ScopeType:       sp.ScopeType,
		Remaining:       sp.Remaining,
		PercentComplete: sp.PercentComplete,
		Text:            text,
	}
}

func scopeName(sp progress.ScopeProgress) string {
	if sp.ScopeType != "" {
		return sp.ScopeType
	}
	return "Scope " + sp.ScopeID.String()
}

func joinLines(lines []ScopeLine) string {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, ", ")
}
