package progress

import (
	"testing"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func nd(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func masonryScope(qty, installed string) project.Scope {
	s := project.Scope{
		ID:        "s1",
		ScopeType: &project.ScopeTypeRef{Name: "Masonry"},
		QtySqFt:   nd(qty),
	}
	if installed != "" {
		s.Installed = nd(installed)
	}
	return s
}

func TestReconcile_LatestMeetingPhaseWins(t *testing.T) {
	scope := masonryScope("100", "10")
	phases := []MeetingPhase{
		phase("MASONRY", 40, "2024-01-01", ""),
		phase("MASONRY", 65, "2024-02-01", ""),
	}

	result := Reconcile([]project.Scope{scope}, phases)
	require.Len(t, result.Scopes, 1)
	sp := result.ByScope["s1"]
	require.Equal(t, 65.0, sp.Installed)
	require.Equal(t, 35.0, sp.Remaining)
	require.Equal(t, 65.0, sp.PercentComplete)
	require.Equal(t, SourceMeeting, sp.Source)
	require.Equal(t, MatchExact, sp.Match)
	require.Equal(t, "MASONRY", sp.MatchedPhase)
	require.Equal(t, "65.0%", FormatPercent(&sp.PercentComplete))

	// inputs are untouched
	require.Equal(t, "10", scope.Installed.Decimal.String())
}

func TestReconcile_FallsBackToScopeInstalled(t *testing.T) {
	result := Reconcile([]project.Scope{masonryScope("200", "50")}, []MeetingPhase{phase("STONE", 99, "2024-01-01", "")})
	sp := result.Scopes[0]
	require.Equal(t, 50.0, sp.Installed)
	require.Equal(t, 25.0, sp.PercentComplete)
	require.Equal(t, SourceScope, sp.Source)
	require.Equal(t, MatchNone, sp.Match)
}

func TestReconcile_PhaseWithoutQuantityFallsBack(t *testing.T) {
	p := MeetingPhase{PhaseCode: "MASONRY", MeetingDate: "2024-01-01"}
	sp := Reconcile([]project.Scope{masonryScope("100", "30")}, []MeetingPhase{p}).Scopes[0]
	require.Equal(t, 30.0, sp.Installed)
	require.Equal(t, SourceScope, sp.Source)
}

func TestReconcile_NoDataIsZeroWithSourceNone(t *testing.T) {
	// "no data" and "confirmed zero" produce the same figures and are told
	// apart only by Source.
	noData := Reconcile([]project.Scope{masonryScope("100", "")}, nil).Scopes[0]
	zero := Reconcile([]project.Scope{masonryScope("100", "0")}, nil).Scopes[0]

	require.Equal(t, noData.Installed, zero.Installed)
	require.Equal(t, noData.PercentComplete, zero.PercentComplete)
	require.Equal(t, SourceNone, noData.Source)
	require.Equal(t, SourceScope, zero.Source)
}

func TestReconcile_ZeroQuantity(t *testing.T) {
	sp := Reconcile([]project.Scope{masonryScope("0", "25")}, nil).Scopes[0]
	require.Equal(t, 0.0, sp.PercentComplete)
	require.Equal(t, 0.0, sp.Remaining)
	require.False(t, sp.OverInstalled)
}

func TestReconcile_OverInstalledIsUnbounded(t *testing.T) {
	sp := Reconcile([]project.Scope{masonryScope("100", "150")}, nil).Scopes[0]
	require.Equal(t, 150.0, sp.PercentComplete)
	require.Equal(t, 100.0, sp.BarWidth)
	require.Equal(t, 0.0, sp.Remaining)
	require.True(t, sp.OverInstalled)
}

func TestReconcile_RemainingNeverNegative(t *testing.T) {
	for _, installed := range []string{"0", "50", "100", "101", "1000"} {
		sp := Reconcile([]project.Scope{masonryScope("100", installed)}, nil).Scopes[0]
		require.GreaterOrEqual(t, sp.Remaining, 0.0, installed)
	}
}

func TestReconcile_Rollup(t *testing.T) {
	scopes := []project.Scope{
		masonryScope("100", "50"),
		{ID: "s2", ScopeType: &project.ScopeTypeRef{Name: "Stone"}, Quantity: nd("300"), Installed: nd("100")},
	}
	result := Reconcile(scopes, nil)
	require.Equal(t, 2, result.Rollup.ScopeCount)
	require.Equal(t, 400.0, result.Rollup.TotalQuantity)
	require.Equal(t, 150.0, result.Rollup.TotalInstalled)
	require.Equal(t, 250.0, result.Rollup.Remaining)
	require.Equal(t, 37.5, result.Rollup.ProductionPercent)

	empty := Reconcile(nil, nil)
	require.Equal(t, 0.0, empty.Rollup.ProductionPercent)
	require.NotNil(t, empty.Scopes)
}

func TestReconcile_CarriesCrewCounts(t *testing.T) {
	scope := masonryScope("10", "1")
	scope.Masons, scope.Tenders, scope.Operators = 4, 2, 1
	sp := Reconcile([]project.Scope{scope}, nil).Scopes[0]
	require.Equal(t, 4, sp.Masons)
	require.Equal(t, 2, sp.Tenders)
	require.Equal(t, 1, sp.Operators)
}

func TestBarWidth(t *testing.T) {
	require.Equal(t, 0.0, BarWidth(-5))
	require.Equal(t, 42.5, BarWidth(42.5))
	require.Equal(t, 100.0, BarWidth(180))
}
