package billing

import "strings"

// Plan is one subscription tier.
type Plan struct {
	Name         string
	MonthlyPrice float64
	MaxClients   int // 0 means unlimited
	Features     []string
}

// Plans lists the subscription tiers, cheapest first.
var Plans = []Plan{
	{
		Name:         "Free",
		MonthlyPrice: 0,
		MaxClients:   2,
		Features:     []string{"Automatic time tracking", "Daily hours chart"},
	},
	{
		Name:         "Pro",
		MonthlyPrice: 12,
		MaxClients:   20,
		Features:     []string{"Automatic time tracking", "Daily hours chart", "Client billing", "CSV and JSON export"},
	},
	{
		Name:         "Business",
		MonthlyPrice: 39,
		MaxClients:   0,
		Features:     []string{"Everything in Pro", "Screenshots", "Partner program", "Priority support"},
	},
}

// PlanByName looks a plan up case-insensitively.
func PlanByName(name string) (Plan, bool) {
	for _, p := range Plans {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Plan{}, false
}

// AllowsClients reports whether the plan permits n clients.
func (p Plan) AllowsClients(n int) bool {
	return p.MaxClients == 0 || n <= p.MaxClients
}
