package portal

import (
	"sort"
	"strings"
	"time"
)

const (
	startedProgressThreshold = 1.0
	nearCompletionThreshold  = 90.0
	coverageTopN             = 3
	otherBucket              = "Other"
)

// ActiveProgress splits active projects into those that have started and show
// scope progress and the rest.
type ActiveProgress struct {
	StartedWithProgress int `json:"started_with_progress"`
	Other               int `json:"other"`
}

// CompletionSplit counts scope percentages at or above 90 against the rest.
type CompletionSplit struct {
	NearComplete int `json:"near_complete"`
	Remaining    int `json:"remaining"`
}

// CoverageBucket is the number of distinct projects containing a scope type.
type CoverageBucket struct {
	ScopeType string `json:"scope_type"`
	Projects  int    `json:"projects"`
}

// Charts are best-effort dashboard aggregates.
type Charts struct {
	Active         ActiveProgress   `json:"active"`
	NearCompletion CompletionSplit  `json:"near_completion"`
	ScopeCoverage  []CoverageBucket `json:"scope_coverage"`
}

// ComputeCharts builds all chart aggregates over entries.
func ComputeCharts(entries []Entry, now time.Time) Charts {
	return Charts{
		Active:         activeProgress(entries, now),
		NearCompletion: nearCompletion(entries),
		ScopeCoverage:  scopeCoverage(entries),
	}
}

func activeProgress(entries []Entry, now time.Time) ActiveProgress {
	var out ActiveProgress
	for _, e := range entries {
		if e.Status != StatusActive {
			continue
		}
		if e.Project.Started(now) && hasScopeProgress(e) {
			out.StartedWithProgress++
		} else {
			out.Other++
		}
	}
	return out
}

func hasScopeProgress(e Entry) bool {
	for _, sp := range e.Scopes {
		if sp.PercentComplete > startedProgressThreshold {
			return true
		}
	}
	return false
}

func nearCompletion(entries []Entry) CompletionSplit {
	var out CompletionSplit
	for _, e := range entries {
		for _, sp := range e.Scopes {
			if sp.PercentComplete >= nearCompletionThreshold {
				out.NearComplete++
			} else {
				out.Remaining++
			}
		}
	}
	return out
}

// scopeCoverage reports the top scope types by project count, folding the
// rest into a single Other bucket.
func scopeCoverage(entries []Entry) []CoverageBucket {
	counts := make(map[string]int)
	for _, e := range entries {
		seen := make(map[string]struct{})
		for _, sp := range e.Scopes {
			name := strings.TrimSpace(sp.ScopeType)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			counts[name]++
		}
	}

	buckets := make([]CoverageBucket, 0, len(counts))
	for name, n := range counts {
		buckets = append(buckets, CoverageBucket{ScopeType: name, Projects: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Projects != buckets[j].Projects {
			return buckets[i].Projects > buckets[j].Projects
		}
		return buckets[i].ScopeType < buckets[j].ScopeType
	})

	if len(buckets) <= coverageTopN {
		return buckets
	}
	other := 0
	for _, b := range buckets[coverageTopN:] {
		other += b.Projects
	}
	top := append([]CoverageBucket(nil), buckets[:coverageTopN]...)
	return append(top, CoverageBucket{ScopeType: otherBucket, Projects: other})
}
