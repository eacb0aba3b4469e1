package billing

import "github.com/sadopc/smartbill/internal/model"

// DashboardStats is the summary shown on the dashboard cards.
type DashboardStats struct {
	TotalHours         float64
	BillableHours      float64
	UnbilledHours      float64
	UnbilledAmount     float64
	ClientDistribution []ClientShare
}

// ClientShare is one client's slice of the tracked time.
type ClientShare struct {
	ClientID   string
	ClientName string
	Hours      float64
	Amount     float64
}

// BilledAmount is the sum of all client shares.
func (s DashboardStats) BilledAmount() float64 {
	var total float64
	for _, c := range s.ClientDistribution {
		total += c.Amount
	}
	return total
}

// ComputeStats reduces entries and clients into a DashboardStats.
//
// BillableHours counts every entry carrying a client id. The distribution
// only covers clients present in clients, in their list order; each share's
// amount matches CalculateBill for that client. Time with no client, or a
// client id that no longer resolves, is unbilled and valued at unbilledRate.
func ComputeStats(entries []model.TimeEntry, clients []model.Client, unbilledRate float64) DashboardStats {
	idx := model.ClientIndex(clients)

	type share struct {
		seconds int64
		amount  float64
	}
	shares := make(map[string]*share)

	var total, billable, unbilled int64
	for _, e := range entries {
		total += e.Duration
		if e.HasClient() {
			billable += e.Duration
		}
		c, ok := idx[e.ClientID]
		if !e.HasClient() || !ok {
			unbilled += e.Duration
			continue
		}
		sh, ok := shares[c.ID]
		if !ok {
			sh = &share{}
			shares[c.ID] = sh
		}
		sh.seconds += e.Duration
		sh.amount += amount(e.Duration, c.HourlyRate)
	}

	if unbilledRate < 0 {
		unbilledRate = 0
	}

	stats := DashboardStats{
		TotalHours:         hours(total),
		BillableHours:      hours(billable),
		UnbilledHours:      hours(unbilled),
		UnbilledAmount:     amount(unbilled, unbilledRate),
		ClientDistribution: []ClientShare{},
	}
	for _, c := range clients {
		sh, ok := shares[c.ID]
		if !ok {
			continue
		}
		delete(shares, c.ID)
		stats.ClientDistribution = append(stats.ClientDistribution, ClientShare{
			ClientID:   c.ID,
			ClientName: c.Name,
			Hours:      hours(sh.seconds),
			Amount:     sh.amount,
		})
	}
	return stats
}
