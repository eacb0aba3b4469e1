package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/smartbill/internal/billing"
)

func TestComputeStatsEmpty(t *testing.T) {
	got := billing.ComputeStats(nil, nil, 0)
	assert.Equal(t, billing.DashboardStats{ClientDistribution: []billing.ClientShare{}}, got)
	assert.NotNil(t, got.ClientDistribution)
}

func TestComputeStats(t *testing.T) {
	entries, clients := sampleEntries(), sampleClients()
	got := billing.ComputeStats(entries, clients, 0)

	assert.InDelta(t, 18900.0/3600, got.TotalHours, 1e-9)
	// The dangling "deleted" reference still carries a client id.
	assert.InDelta(t, 15300.0/3600, got.BillableHours, 1e-9)
	assert.InDelta(t, 10800.0/3600, got.UnbilledHours, 1e-9)
	assert.Zero(t, got.UnbilledAmount)

	require.Len(t, got.ClientDistribution, 2)
	assert.Equal(t, billing.ClientShare{ClientID: "acme", ClientName: "Acme", Hours: 1.5, Amount: 150}, got.ClientDistribution[0])
	assert.Equal(t, "globex", got.ClientDistribution[1].ClientID)
	assert.InDelta(t, 0.75, got.ClientDistribution[1].Hours, 1e-9)
	assert.InDelta(t, 210, got.BilledAmount(), 1e-9)
}

func TestComputeStatsSharesMatchCalculateBill(t *testing.T) {
	entries, clients := sampleEntries(), sampleClients()
	got := billing.ComputeStats(entries, clients, 0)
	for _, share := range got.ClientDistribution {
		assert.Equal(t, billing.CalculateBill(entries, clients, share.ClientID), share.Amount, share.ClientID)
	}
}

func TestComputeStatsUnbilledRate(t *testing.T) {
	got := billing.ComputeStats(sampleEntries(), sampleClients(), 40)
	assert.InDelta(t, 3*40, got.UnbilledAmount, 1e-9)

	got = billing.ComputeStats(sampleEntries(), sampleClients(), -10)
	assert.Zero(t, got.UnbilledAmount)
}

func TestComputeStatsBounds(t *testing.T) {
	entries, clients := sampleEntries(), sampleClients()
	got := billing.ComputeStats(entries, clients, 0)

	assert.LessOrEqual(t, got.BillableHours, got.TotalHours)

	var distributed float64
	for _, s := range got.ClientDistribution {
		distributed += s.Hours
	}
	assert.LessOrEqual(t, distributed, got.BillableHours+1e-9)

	// Without the dangling entry every billable second is distributed.
	got = billing.ComputeStats(entries[:4], clients, 0)
	distributed = 0
	for _, s := range got.ClientDistribution {
		distributed += s.Hours
	}
	assert.InDelta(t, got.BillableHours, distributed, 1e-9)
}

func TestComputeStatsIdempotent(t *testing.T) {
	entries, clients := sampleEntries(), sampleClients()
	first := billing.ComputeStats(entries, clients, 25)
	second := billing.ComputeStats(entries, clients, 25)
	assert.Equal(t, first, second)
}
