package progress

import (
	"testing"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func phase(code string, installed int64, meetingDate, updatedAt string) MeetingPhase {
	return MeetingPhase{
		PhaseCode:         code,
		InstalledQuantity: decimal.NewNullDecimal(decimal.NewFromInt(installed)),
		MeetingDate:       meetingDate,
		UpdatedAt:         updatedAt,
	}
}

func TestNormalizeKey(t *testing.T) {
	require.Equal(t, "MASONRY", NormalizeKey("Masonry"))
	require.Equal(t, "CMUBLOCK8", NormalizeKey(" cmu-block (8\") "))
	require.Equal(t, "", NormalizeKey("--"))
}

func TestScopeKeys_DedupesAndDropsEmpty(t *testing.T) {
	scope := project.Scope{
		ScopeType:       &project.ScopeTypeRef{Name: "Masonry", Code: "masonry"},
		ScopeTypeDetail: &project.ScopeTypeRef{Name: "", Code: "MAS-01"},
	}
	require.Equal(t, []string{"MASONRY", "MAS01"}, ScopeKeys(scope))
	require.Empty(t, ScopeKeys(project.Scope{}))
}

func TestMatchPhases_ExactBeatsSubstring(t *testing.T) {
	phases := []MeetingPhase{
		phase("MASONRY-EXTRA", 90, "2024-03-01", ""),
		phase("Masonry", 40, "2024-01-01", ""),
	}
	matches, kind := MatchPhases([]string{"MASONRY"}, phases)
	require.Equal(t, MatchExact, kind)
	require.Len(t, matches, 1)
	require.Equal(t, "Masonry", matches[0].PhaseCode)
}

func TestMatchPhases_SubstringBothDirections(t *testing.T) {
	phases := []MeetingPhase{
		phase("BLOCK", 10, "2024-01-01", ""),
		phase("BLOCKWALLNORTH", 20, "2024-01-02", ""),
		phase("STONE", 30, "2024-01-03", ""),
	}
	matches, kind := MatchPhases([]string{"BLOCKWALL"}, phases)
	require.Equal(t, MatchSubstring, kind)
	require.Len(t, matches, 2)
}

func TestMatchPhases_EmptyKeysNeverMatch(t *testing.T) {
	phases := []MeetingPhase{phase("", 10, "2024-01-01", ""), phase("***", 10, "2024-01-01", "")}
	matches, kind := MatchPhases([]string{"MASONRY"}, phases)
	require.Nil(t, matches)
	require.Equal(t, MatchNone, kind)

	matches, kind = MatchPhases(nil, []MeetingPhase{phase("MASONRY", 1, "", "")})
	require.Nil(t, matches)
	require.Equal(t, MatchNone, kind)
}

func TestLatestPhase_OrderIndependent(t *testing.T) {
	a := phase("M", 40, "2024-01-01", "2024-01-01T09:00:00Z")
	b := phase("M", 65, "2024-02-01", "2024-02-01T09:00:00Z")
	c := phase("M", 50, "2024-01-15", "2024-03-01T09:00:00Z")

	for _, order := range [][]MeetingPhase{{a, b, c}, {c, b, a}, {b, a, c}} {
		got, ok := LatestPhase(order)
		require.True(t, ok)
		require.Equal(t, "65", got.InstalledQuantity.Decimal.String())
	}
}

func TestLatestPhase_UpdatedAtBreaksTies(t *testing.T) {
	a := phase("M", 1, "2024-02-01", "2024-02-01T10:00:00Z")
	b := phase("M", 2, "2024-02-01", "2024-02-02T10:00:00Z")
	got, _ := LatestPhase([]MeetingPhase{b, a})
	require.Equal(t, "2", got.InstalledQuantity.Decimal.String())
	got, _ = LatestPhase([]MeetingPhase{a, b})
	require.Equal(t, "2", got.InstalledQuantity.Decimal.String())
}

func TestLatestPhase_UnparseableSortsEarliestAndTiesKeepFirst(t *testing.T) {
	bad := phase("M", 1, "not a date", "")
	good := phase("M", 2, "2020-01-01", "")
	got, _ := LatestPhase([]MeetingPhase{good, bad})
	require.Equal(t, "2", got.InstalledQuantity.Decimal.String())

	first := phase("M", 3, "2024-01-01", "")
	second := phase("M", 4, "2024-01-01", "")
	got, _ = LatestPhase([]MeetingPhase{first, second})
	require.Equal(t, "3", got.InstalledQuantity.Decimal.String())

	_, ok := LatestPhase(nil)
	require.False(t, ok)
}
