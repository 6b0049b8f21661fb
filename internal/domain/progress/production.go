package progress

import (
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/shopspring/decimal"
)

// NotAvailable is the display value for a percentage that cannot be derived.
const NotAvailable = "N/A"

// ProductionPercent derives a project's production percentage for views that
// only see the project payload. It prefers the explicit
// production_percent_complete field, then total_installed/total_quantity, then
// the ratio of summed scope installed to summed scope quantity. It returns nil
// when none of those are available, which is distinct from a zero percentage.
func ProductionPercent(p project.Project) *float64 {
	if p.ProductionPercentComplete.Valid {
		return floatPtr(p.ProductionPercentComplete.Decimal)
	}
	if p.TotalInstalled.Valid && p.TotalQuantity.Valid && p.TotalQuantity.Decimal.IsPositive() {
		return floatPtr(percent(p.TotalInstalled.Decimal, p.TotalQuantity.Decimal))
	}
	if len(p.Scopes) > 0 {
		qty := decimal.Zero
		installed := decimal.Zero
		for _, scope := range p.Scopes {
			qty = qty.Add(scope.InitialQuantity())
			if scope.Installed.Valid {
				installed = installed.Add(scope.Installed.Decimal)
			}
		}
		return floatPtr(percent(installed, qty))
	}
	return nil
}

// ProjectPercent returns the production percentage for a project whose scopes
// have been reconciled, falling back to ProductionPercent when the project
// exposes no scopes.
func ProjectPercent(p project.Project, result Result) *float64 {
	if result.Rollup.ScopeCount > 0 {
		pct := result.Rollup.ProductionPercent
		return &pct
	}
	return ProductionPercent(p)
}

// FormatPercent renders a percentage with one decimal place, or N/A for nil.
func FormatPercent(pct *float64) string {
	if pct == nil {
		return NotAvailable
	}
	return decimal.NewFromFloat(*pct).StringFixed(1) + "%"
}

// FormatQuantity renders a quantity with at most two decimal places.
func FormatQuantity(qty float64) string {
	return decimal.NewFromFloat(qty).Round(2).String()
}

func floatPtr(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}
