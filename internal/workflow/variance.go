package workflow

type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// BudgetVariance is the computed relationship between approved budget and
// recorded spend. Over-budget is a displayed condition, never a blocked one.
type BudgetVariance struct {
	Spent       float64  `json:"spent"`
	Budget      float64  `json:"budget"`
	PercentUsed float64  `json:"percent_used"`
	Severity    Severity `json:"severity"`
	OverBudget  bool     `json:"over_budget"`
}

// Variance computes the spend percentage saturated at 100. A zero budget
// yields 0% when nothing is spent and saturates otherwise.
func Variance(budget, spent float64) BudgetVariance {
	var pct float64
	switch {
	case budget > 0:
		pct = spent / budget * 100
		if pct > 100 {
			pct = 100
		}
	case spent > 0:
		pct = 100
	}

	sev := SeverityNormal
	switch {
	case pct > 90:
		sev = SeverityCritical
	case pct > 75:
		sev = SeverityWarning
	}

	return BudgetVariance{
		Spent:       spent,
		Budget:      budget,
		PercentUsed: pct,
		Severity:    sev,
		OverBudget:  spent > budget,
	}
}
