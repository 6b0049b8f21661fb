package progress

import (
	"testing"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func TestProductionPercent_FallbackChain(t *testing.T) {
	explicit := project.Project{ProductionPercentComplete: nd("12.5"), TotalInstalled: nd("50"), TotalQuantity: nd("200")}
	require.Equal(t, 12.5, *ProductionPercent(explicit))

	totals := project.Project{TotalInstalled: nd("50"), TotalQuantity: nd("200")}
	pct := ProductionPercent(totals)
	require.NotNil(t, pct)
	require.Equal(t, 25.0, *pct)
	require.Equal(t, "25.0%", FormatPercent(pct))

	fromScopes := project.Project{
		TotalInstalled: nd("10"),
		TotalQuantity:  nd("0"),
		Scopes: []project.Scope{
			{QtySqFt: nd("100"), Installed: nd("30")},
			{QtySqFt: nd("100")},
		},
	}
	require.Equal(t, 15.0, *ProductionPercent(fromScopes))

	zeroQty := project.Project{Scopes: []project.Scope{{Installed: nd("5")}}}
	require.Equal(t, 0.0, *ProductionPercent(zeroQty))
	require.Equal(t, "0.0%", FormatPercent(ProductionPercent(zeroQty)))
}

func TestProductionPercent_NullWhenUnavailable(t *testing.T) {
	pct := ProductionPercent(project.Project{TotalInstalled: nd("50")})
	require.Nil(t, pct)
	require.Equal(t, NotAvailable, FormatPercent(pct))
}

func TestProjectPercent_PrefersReconciledRollup(t *testing.T) {
	p := project.Project{
		ProductionPercentComplete: nd("99"),
		Scopes:                    []project.Scope{masonryScope("100", "20")},
	}
	result := Reconcile(p.Scopes, nil)
	require.Equal(t, 20.0, *ProjectPercent(p, result))

	bare := project.Project{ProductionPercentComplete: nd("99")}
	require.Equal(t, 99.0, *ProjectPercent(bare, Reconcile(nil, nil)))
}

func TestFormatQuantity(t *testing.T) {
	require.Equal(t, "1234.57", FormatQuantity(1234.5678))
	require.Equal(t, "100", FormatQuantity(100))
}
