package portal

import (
	"testing"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func nd(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func scope(id, typeName, qty, installed string) project.Scope {
	s := project.Scope{
		ID:        project.ID(id),
		ScopeType: &project.ScopeTypeRef{Name: typeName},
		QtySqFt:   nd(qty),
	}
	if installed != "" {
		s.Installed = nd(installed)
	}
	return s
}

func sampleProjects() []project.Project {
	return []project.Project{
		{
			ID: "1", JobNumber: "J-100", Name: "Central Library", Status: "PENDING", SpectrumStatusCode: "A",
			BranchCode: "NE", BranchName: "Northeast", StartDate: "2024-01-10", ScheduleStatus: project.ScheduleRed,
			Scopes: []project.Scope{
				scope("11", "Masonry", "100", "95"),
				scope("12", "Stone", "200", "50"),
			},
		},
		{
			ID: "2", JobNumber: "J-200", Name: "Harbor Clinic", Status: "active",
			BranchCode: "SE", BranchName: "Southeast", StartDate: "2030-01-01",
			Scopes: []project.Scope{scope("21", "Masonry", "100", "10")},
		},
		{
			ID: "3", JobNumber: "J-300", Name: "Depot", Status: "completed", SpectrumStatusCode: "",
			BranchName: "Central", TotalInstalled: nd("50"), TotalQuantity: nd("200"),
		},
		{
			ID: "4", JobNumber: "J-400", Name: "Annex", SpectrumStatusCode: "I", Status: "ACTIVE",
			BranchCode: "NE", BranchName: "Northeast",
			Scopes: []project.Scope{scope("41", "Precast", "50", "0"), scope("42", "Caulking", "10", "1")},
		},
		{
			ID: "5", JobNumber: "J-500", Name: "Warehouse", Status: "On Hold",
			Scopes: []project.Scope{scope("51", "Masonry", "0", "")},
		},
	}
}

func TestNormalizeStatus(t *testing.T) {
	require.Equal(t, StatusActive, NormalizeStatus(project.Project{SpectrumStatusCode: "A", Status: "PENDING"}))
	require.Equal(t, StatusCompleted, NormalizeStatus(project.Project{SpectrumStatusCode: "c"}))
	require.Equal(t, StatusPending, NormalizeStatus(project.Project{SpectrumStatusCode: "I", Status: "ACTIVE"}))
	require.Equal(t, StatusActive, NormalizeStatus(project.Project{SpectrumStatusCode: "X", Status: "active"}))
	require.Equal(t, StatusOther, NormalizeStatus(project.Project{Status: "On Hold"}))

	require.Equal(t, "On Hold", StatusLabel(project.Project{Status: "On Hold"}))
	require.Equal(t, "OTHER", StatusLabel(project.Project{}))
	require.Equal(t, "ACTIVE", StatusLabel(project.Project{SpectrumStatusCode: "A"}))
}

func TestFilter_StatusCodeTakesPriority(t *testing.T) {
	entries := BuildEntries(sampleProjects())
	active := Filter{Status: StatusActive}.Apply(entries)

	ids := make([]project.ID, len(active))
	for i, e := range active {
		ids[i] = e.Project.ID
	}
	require.Equal(t, []project.ID{"1", "2"}, ids)
}

func TestFilter_DivisionMatchesCodeOrName(t *testing.T) {
	entries := BuildEntries(sampleProjects())
	require.Len(t, Filter{Division: "NE"}.Apply(entries), 2)
	require.Len(t, Filter{Division: "Northeast"}.Apply(entries), 2)
	require.Len(t, Filter{Division: "Central"}.Apply(entries), 1)
	require.Len(t, Filter{Status: StatusPending, Division: "NE"}.Apply(entries), 1)
}

func TestFilter_DivisionFromListingMatchesPaddedBranches(t *testing.T) {
	entries := BuildEntries([]project.Project{
		{ID: "1", BranchCode: " NW ", BranchName: "Northwest "},
		{ID: "2", BranchName: "  Mountain"},
		{ID: "3", BranchCode: "NE", BranchName: "Northeast"},
	})

	for _, d := range Divisions(entries) {
		require.Len(t, Filter{Division: d.Key()}.Apply(entries), 1, d.Key())
		require.Len(t, Filter{Division: d.Name}.Apply(entries), 1, d.Name)
	}
	require.Len(t, Filter{Division: " NW"}.Apply(entries), 1)
}

func TestFilter_SearchIsCaseInsensitiveOverFields(t *testing.T) {
	entries := BuildEntries(sampleProjects())
	require.Len(t, Filter{Search: "library"}.Apply(entries), 1)
	require.Len(t, Filter{Search: "j-2"}.Apply(entries), 1)
	require.Len(t, Filter{Search: "southeast"}.Apply(entries), 1)
	require.Len(t, Filter{Search: "ne"}.Apply(entries), 2)
	require.Empty(t, Filter{Search: "EQ-"}.Apply(entries))
	require.Len(t, Filter{}.Apply(entries), 5)
}

func TestDivisions_DedupedAndSorted(t *testing.T) {
	divisions := Divisions(BuildEntries(sampleProjects()))
	require.Equal(t, []Division{
		{Name: "Central"},
		{Code: "NE", Name: "Northeast"},
		{Code: "SE", Name: "Southeast"},
	}, divisions)
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(BuildEntries(sampleProjects()))
	require.Equal(t, Stats{Total: 5, Active: 2, Completed: 1, Pending: 1, Other: 1}, stats)
}

func TestPaginate(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	page := Paginate(items, 3, 10)
	require.Equal(t, []int{20, 21, 22}, page.Items)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, 23, page.Total)

	page = Paginate(items, 9, 10)
	require.Equal(t, 3, page.Page)

	page = Paginate(items, 0, 7)
	require.Equal(t, DefaultPageSize, page.PageSize)
	require.Equal(t, 1, page.Page)
	require.Len(t, page.Items, 10)

	empty := Paginate([]int(nil), 1, 25)
	require.Equal(t, 1, empty.TotalPages)
	require.NotNil(t, empty.Items)
	require.Empty(t, empty.Items)
}

func TestPaginate_LengthProperty(t *testing.T) {
	for _, count := range []int{0, 1, 9, 10, 11, 99, 100, 101, 250} {
		items := make([]int, count)
		for _, size := range PageSizes {
			totalPages := max(1, (count+size-1)/size)
			for page := 1; page <= totalPages; page++ {
				got := Paginate(items, page, size)
				require.Equal(t, totalPages, got.TotalPages)
				require.Len(t, got.Items, min(size, count-(page-1)*size))
			}
		}
	}
}

func TestComputeCharts(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	charts := ComputeCharts(BuildEntries(sampleProjects()), now)

	// project 1 started with progress; project 2 has not started yet
	require.Equal(t, ActiveProgress{StartedWithProgress: 1, Other: 1}, charts.Active)
	// 95% masonry is the only scope at or above 90
	require.Equal(t, CompletionSplit{NearComplete: 1, Remaining: 5}, charts.NearCompletion)
	require.Equal(t, []CoverageBucket{
		{ScopeType: "Masonry", Projects: 3},
		{ScopeType: "Caulking", Projects: 1},
		{ScopeType: "Precast", Projects: 1},
		{ScopeType: "Other", Projects: 1},
	}, charts.ScopeCoverage)
}

func TestComputeCharts_CoverageWithoutOther(t *testing.T) {
	entries := BuildEntries([]project.Project{{
		ID:     "1",
		Scopes: []project.Scope{scope("1", "Masonry", "1", ""), scope("2", "Masonry", "1", "")},
	}})
	charts := ComputeCharts(entries, time.Now())
	require.Equal(t, []CoverageBucket{{ScopeType: "Masonry", Projects: 1}}, charts.ScopeCoverage)
}

func TestSummarize(t *testing.T) {
	entries := BuildEntries(sampleProjects())
	summary := Summarize(entries[0])

	require.Equal(t, project.ID("1"), summary.ProjectID)
	require.Equal(t, "Production is 48.3% complete.", summary.Headline)
	require.Equal(t, "145 of 300 installed, 155 remaining.", summary.Totals)
	require.Equal(t, riskHigh, summary.ScheduleRisk)
	require.Len(t, summary.LargestRemaining, 2)
	require.Equal(t, "Stone (150 remaining)", summary.LargestRemaining[0].Text)
	require.Equal(t, "Masonry (95.0%)", summary.MostComplete[0].Text)
	require.Contains(t, summary.Text(), "Largest remaining scopes: Stone (150 remaining), Masonry (5 remaining).")
}

func TestSummarize_FallbacksAndRisk(t *testing.T) {
	entries := BuildEntries(sampleProjects())

	depot := Summarize(entries[2])
	require.Equal(t, "Production is 25.0% complete.", depot.Headline)
	require.Equal(t, "50 of 200 installed, 150 remaining.", depot.Totals)
	require.Equal(t, riskLow, depot.ScheduleRisk)
	require.Empty(t, depot.LargestRemaining)
	require.Empty(t, depot.MostComplete)

	bare := Summarize(BuildEntries([]project.Project{{ID: "9", ScheduleStatus: project.ScheduleYellow}})[0])
	require.Equal(t, "Production progress is not yet available for this project.", bare.Headline)
	require.Equal(t, "Installed quantities are not yet available.", bare.Totals)
	require.Equal(t, riskModerate, bare.ScheduleRisk)
}

func TestSummarize_LimitsScopes(t *testing.T) {
	p := project.Project{ID: "1", Scopes: []project.Scope{
		scope("1", "A", "100", "10"),
		scope("2", "B", "100", "20"),
		scope("3", "C", "100", "30"),
		scope("4", "D", "100", "40"),
		scope("5", "E", "100", "100"),
	}}
	summary := Summarize(BuildEntries([]project.Project{p})[0])
	require.Len(t, summary.LargestRemaining, 3)
	require.Equal(t, "A", summary.LargestRemaining[0].ScopeType)
	require.Len(t, summary.MostComplete, 3)
	require.Equal(t, "E", summary.MostComplete[0].ScopeType)
	require.Equal(t, "D", summary.MostComplete[1].ScopeType)
}

func TestBuildDashboard_NoMatches(t *testing.T) {
	entries := BuildEntries(sampleProjects())
	d := BuildDashboard(entries, Query{Filter: Filter{Search: "EQ-"}}, time.Now())

	require.Equal(t, 0, d.Filtered)
	require.Empty(t, d.Projects.Items)
	require.Equal(t, NoProjectsMessage, d.Message)
	require.Equal(t, 5, d.Stats.Total)
}

func TestBuildDashboard_StatsInvariantUnderFilters(t *testing.T) {
	entries := BuildEntries(sampleProjects())
	now := time.Now()
	base := BuildDashboard(entries, Query{}, now)

	for _, q := range []Query{
		{Filter: Filter{Status: StatusCompleted}},
		{Filter: Filter{Division: "SE"}},
		{Filter: Filter{Search: "annex"}},
		{Filter: Filter{Status: StatusActive, Division: "NE", Search: "library"}, Page: 2, PageSize: 25},
	} {
		d := BuildDashboard(entries, q, now)
		require.Equal(t, base.Stats, d.Stats)
		require.Equal(t, base.Divisions, d.Divisions)
		require.Equal(t, base.Charts, d.Charts)
		require.Empty(t, d.Message)
	}
}
