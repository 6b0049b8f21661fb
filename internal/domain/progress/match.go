package progress

import (
	"strings"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/project"
)

// NormalizeKey uppercases value and strips every character outside [A-Z0-9].
func NormalizeKey(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range strings.ToUpper(value) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ScopeKeys returns the deduplicated, non-empty normalized keys a scope can be
// matched on: scope-type name and code, then detail name and code.
func ScopeKeys(scope project.Scope) []string {
	var candidates []string
	for _, ref := range []*project.ScopeTypeRef{scope.ScopeType, scope.ScopeTypeDetail} {
		if ref == nil {
			continue
		}
		candidates = append(candidates, ref.Name, ref.Code)
	}

	keys := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		key := NormalizeKey(c)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// MatchPhases returns the phases matching keys. Exact key equality is tried
// first; substring containment in either direction is only used when no phase
// matches exactly.
func MatchPhases(keys []string, phases []MeetingPhase) ([]MeetingPhase, MatchKind) {
	if len(keys) == 0 || len(phases) == 0 {
		return nil, MatchNone
	}

	phaseKeys := make([]string, len(phases))
	for i, phase := range phases {
		phaseKeys[i] = NormalizeKey(phase.PhaseCode)
	}

	var exact []MeetingPhase
	for i, phase := range phases {
		if phaseKeys[i] == "" {
			continue
		}
		for _, key := range keys {
			if phaseKeys[i] == key {
				exact = append(exact, phase)
				break
			}
		}
	}
	if len(exact) > 0 {
		return exact, MatchExact
	}

	var partial []MeetingPhase
	for i, phase := range phases {
		if phaseKeys[i] == "" {
			continue
		}
		for _, key := range keys {
			if strings.Contains(phaseKeys[i], key) || strings.Contains(key, phaseKeys[i]) {
				partial = append(partial, phase)
				break
			}
		}
	}
	if len(partial) > 0 {
		return partial, MatchSubstring
	}
	return nil, MatchNone
}

// LatestPhase picks the most recent phase by meeting_date, breaking ties with
// updated_at. Missing or unparseable timestamps sort earliest; on a full tie
// the earlier element wins.
func LatestPhase(phases []MeetingPhase) (MeetingPhase, bool) {
	if len(phases) == 0 {
		return MeetingPhase{}, false
	}
	best := phases[0]
	bestMeeting, bestUpdated := phaseTimes(best)
	for _, phase := range phases[1:] {
		meeting, updated := phaseTimes(phase)
		if meeting.After(bestMeeting) || (meeting.Equal(bestMeeting) && updated.After(bestUpdated)) {
			best, bestMeeting, bestUpdated = phase, meeting, updated
		}
	}
	return best, true
}

func phaseTimes(phase MeetingPhase) (time.Time, time.Time) {
	meeting, _ := project.ParseTimestamp(phase.MeetingDate)
	updated, _ := project.ParseTimestamp(phase.UpdatedAt)
	return meeting, updated
}
