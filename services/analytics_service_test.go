package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sirswa/crm_backend/models"
	"github.com/sirswa/crm_backend/repositories"
)

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		current, previous float64
		want              string
	}{
		{0, 0, "0%"},
		{5, 0, "+100%"},
		{10, 10, "+0.0%"},
		{15, 10, "+50.0%"},
		{5, 10, "-50.0%"},
		{1, 3, "-66.7%"},
		{0, 4, "-100.0%"},
		{401, 400, "+0.3%"},
		{399, 400, "-0.3%"},
		{1001, 400, "+150.3%"},
		{4001, 4000, "+0.0%"},
		{3999, 4000, "-0.0%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GrowthRate(tt.current, tt.previous), "GrowthRate(%v, %v)", tt.current, tt.previous)
	}
}

func TestComputeDashboard(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	thisMonth := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2024, time.February, 29, 23, 59, 0, 0, time.UTC)
	older := time.Date(2023, time.December, 5, 0, 0, 0, 0, time.UTC)

	lead := func(status string, created time.Time) *models.Lead {
		l := &models.Lead{Status: status}
		l.CreatedAt = created
		return l
	}
	client := func(status string, received, pending, contract float64, created time.Time) *models.Client {
		c := &models.Client{Status: status, PaymentReceived: received, PaymentPending: pending, ContractValue: contract}
		c.CreatedAt = created
		return c
	}
	expense := func(status string, amount float64, created time.Time) *models.Expense {
		e := &models.Expense{Status: status, Amount: amount}
		e.CreatedAt = created
		return e
	}

	snap := &Snapshot{
		Leads: []*models.Lead{
			lead("qualified", thisMonth),
			lead("converted", thisMonth),
			lead("new", lastMonth),
			lead("new", older),
		},
		Clients: []*models.Client{
			client("active", 300, 100, 400, thisMonth),
			client("inactive", 200, 0, 200, lastMonth),
		},
		Expenses: []*models.Expense{
			expense(models.ExpensePending, 50, thisMonth),
			expense(models.ExpenseApproved, 100, lastMonth),
			expense(models.ExpenseRejected, 25, older),
		},
		Developments: []*models.Development{{}, {}},
	}

	stats := ComputeDashboard(snap, now)

	assert.Equal(t, 4, stats.TotalLeads)
	assert.Equal(t, 1, stats.QualifiedLeads)
	assert.Equal(t, 1, stats.ConvertedLeads)
	assert.Equal(t, 2, stats.TotalClients)
	assert.Equal(t, 1, stats.ActiveClients)
	assert.Equal(t, 500.0, stats.TotalRevenue)
	assert.Equal(t, 100.0, stats.PendingPayments)
	assert.Equal(t, 600.0, stats.TotalContracts)
	assert.Equal(t, 1, stats.PendingExpenses)
	assert.Equal(t, 1, stats.ApprovedExpenses)
	assert.Equal(t, 175.0, stats.TotalExpenseAmount)
	assert.Equal(t, 2, stats.TotalDevelopers)

	assert.Equal(t, "+100.0%", stats.LeadsGrowth)
	assert.Equal(t, "+0.0%", stats.ClientsGrowth)
	assert.Equal(t, "+50.0%", stats.RevenueGrowth)
	assert.Equal(t, "-50.0%", stats.ExpenseGrowth)
}

func TestComputeDashboard_Empty(t *testing.T) {
	stats := ComputeDashboard(&Snapshot{}, time.Now())

	assert.Zero(t, stats.TotalLeads)
	assert.Zero(t, stats.TotalRevenue)
	assert.Equal(t, "0%", stats.LeadsGrowth)
	assert.Equal(t, "0%", stats.RevenueGrowth)
}

func TestComputeBreakdown(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	c1 := &models.Client{Industry: "Retail", PaymentReceived: 100}
	c1.CreatedAt = time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)
	c2 := &models.Client{PaymentReceived: 40}
	c2.CreatedAt = time.Date(2023, time.October, 20, 0, 0, 0, 0, time.UTC)
	c3 := &models.Client{Industry: "Retail", PaymentReceived: 999}
	c3.CreatedAt = time.Date(2023, time.September, 30, 0, 0, 0, 0, time.UTC)

	snap := &Snapshot{
		Leads: []*models.Lead{
			{Source: "website", Status: "new"},
			{Source: "website", Status: "qualified"},
			{Source: "referral", Status: "new"},
		},
		Clients: []*models.Client{c1, c2, c3},
		Expenses: []*models.Expense{
			{Category: "travel", Amount: 10},
			{Category: "travel", Amount: 15},
			{Category: "office", Amount: 7},
		},
	}

	data := ComputeBreakdown(snap, now)

	assert.Equal(t, map[string]int{"website": 2, "referral": 1}, data.LeadsBySource)
	assert.Equal(t, map[string]int{"new": 2, "qualified": 1}, data.LeadsByStatus)
	assert.Equal(t, map[string]int{"Retail": 2, "Other": 1}, data.ClientsByIndustry)
	assert.Equal(t, map[string]float64{"travel": 25, "office": 7}, data.ExpensesByCategory)

	require.Len(t, data.MonthlyRevenue, 6)
	months := make([]string, 0, 6)
	for _, m := range data.MonthlyRevenue {
		months = append(months, m.Month)
	}
	assert.Equal(t, []string{"Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}, months)
	assert.Equal(t, 40.0, data.MonthlyRevenue[0].Revenue)
	assert.Equal(t, 100.0, data.MonthlyRevenue[5].Revenue)
	assert.Zero(t, data.MonthlyRevenue[2].Revenue)
}

func TestStoreAggregator_Dashboard(t *testing.T) {
	store := repositories.NewMemoryStore()
	clients := repositories.NewRepository[models.Client](store, repositories.ClientsCollection)
	agg := NewStoreAggregator(
		repositories.NewRepository[models.Lead](store, repositories.LeadsCollection),
		clients,
		repositories.NewRepository[models.Expense](store, repositories.ExpensesCollection),
		repositories.NewRepository[models.Development](store, repositories.DevelopmentsCollection),
	)
	ctx := context.Background()
	now := time.Now()

	c := &models.Client{Name: "Acme", Phone: "1", Company: "Acme", PaymentReceived: 250}
	c.Prepare(primitive.NewObjectID(), now)
	_, err := clients.Insert(ctx, c)
	require.NoError(t, err)

	stats, err := agg.Dashboard(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalClients)
	assert.Equal(t, 1, stats.ActiveClients)
	assert.Equal(t, 250.0, stats.TotalRevenue)
	assert.Equal(t, "+100%", stats.RevenueGrowth)
}
