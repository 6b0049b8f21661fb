package progress

import (
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Reconcile resolves the installed quantity of every scope against the
// project's meeting phases and derives remaining and percent figures. Scopes
// are never modified.
func Reconcile(scopes []project.Scope, phases []MeetingPhase) Result {
	result := Result{
		Scopes:  make([]ScopeProgress, 0, len(scopes)),
		ByScope: make(map[project.ID]ScopeProgress, len(scopes)),
	}

	totalQty := decimal.Zero
	totalInstalled := decimal.Zero
	for _, scope := range scopes {
		sp, qty, installed := reconcileScope(scope, phases)
		result.Scopes = append(result.Scopes, sp)
		result.ByScope[scope.ID] = sp
		totalQty = totalQty.Add(qty)
		totalInstalled = totalInstalled.Add(installed)
	}

	result.Rollup = Rollup{
		ScopeCount:        len(scopes),
		TotalQuantity:     totalQty.InexactFloat64(),
		TotalInstalled:    totalInstalled.InexactFloat64(),
		Remaining:         remaining(totalQty, totalInstalled).InexactFloat64(),
		ProductionPercent: percent(totalInstalled, totalQty).InexactFloat64(),
	}
	return result
}

// ResolveInstalled returns the authoritative installed quantity for a scope
// along with where it came from and the phase that supplied it, if any.
func ResolveInstalled(scope project.Scope, phases []MeetingPhase) (decimal.Decimal, Source, MatchKind, *MeetingPhase) {
	matches, kind := MatchPhases(ScopeKeys(scope), phases)
	if latest, ok := LatestPhase(matches); ok && latest.InstalledQuantity.Valid {
		return latest.InstalledQuantity.Decimal, SourceMeeting, kind, &latest
	}
	if scope.Installed.Valid {
		return scope.Installed.Decimal, SourceScope, MatchNone, nil
	}
	return decimal.Zero, SourceNone, MatchNone, nil
}

func reconcileScope(scope project.Scope, phases []MeetingPhase) (ScopeProgress, decimal.Decimal, decimal.Decimal) {
	qty := scope.InitialQuantity()
	installed, source, kind, phase := ResolveInstalled(scope, phases)

	pct := percent(installed, qty)
	sp := ScopeProgress{
		ScopeID:         scope.ID,
		ScopeType:       scope.TypeName(),
		InitialQuantity: qty.InexactFloat64(),
		Installed:       installed.InexactFloat64(),
		Remaining:       remaining(qty, installed).InexactFloat64(),
		PercentComplete: pct.InexactFloat64(),
		BarWidth:        BarWidth(pct.InexactFloat64()),
		OverInstalled:   qty.IsPositive() && installed.GreaterThan(qty),
		Source:          source,
		Match:           kind,
		Masons:          scope.Masons,
		Tenders:         scope.Tenders,
		Operators:       scope.Operators,
	}
	if phase != nil {
		sp.MatchedPhase = phase.PhaseCode
	}
	return sp, qty, installed
}

// BarWidth clamps a percentage into [0,100].
func BarWidth(pct float64) float64 {
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

func remaining(qty, installed decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, qty.Sub(installed))
}

func percent(installed, qty decimal.Decimal) decimal.Decimal {
	if !qty.IsPositive() {
		return decimal.Zero
	}
	return installed.Div(qty).Mul(hundred)
}
