package billing

import "github.com/sadopc/smartbill/internal/model"

// CalculateBill returns the billable amount for entries. With a non-empty
// clientID only that client's entries count; otherwise every entry that has
// a client does. Entries without a client, or whose client is not in
// clients, contribute nothing. The sum is not rounded.
func CalculateBill(entries []model.TimeEntry, clients []model.Client, clientID string) float64 {
	idx := model.ClientIndex(clients)

	var total float64
	for _, e := range entries {
		if !e.HasClient() {
			continue
		}
		if clientID != "" && e.ClientID != clientID {
			continue
		}
		c, ok := idx[e.ClientID]
		if !ok {
			continue
		}
		total += amount(e.Duration, c.HourlyRate)
	}
	return total
}

func amount(secs int64, rate float64) float64 {
	return hours(secs) * rate
}
