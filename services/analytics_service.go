package services

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"github.com/sirswa/crm_backend/models"
	"github.com/sirswa/crm_backend/repositories"
)

// Aggregator computes the reporting views.
type Aggregator interface {
	Dashboard(ctx context.Context, now time.Time) (*models.DashboardStats, error)
	Breakdown(ctx context.Context, now time.Time) (*models.AnalyticsData, error)
}

// Snapshot is the set of records the reports are folded from.
type Snapshot struct {
	Leads        []*models.Lead
	Clients      []*models.Client
	Expenses     []*models.Expense
	Developments []*models.Development
}

// StoreAggregator loads whole collections and folds them in process.
type StoreAggregator struct {
	leads        *repositories.Repository[models.Lead]
	clients      *repositories.Repository[models.Client]
	expenses     *repositories.Repository[models.Expense]
	developments *repositories.Repository[models.Development]
}

func NewStoreAggregator(
	leads *repositories.Repository[models.Lead],
	clients *repositories.Repository[models.Client],
	expenses *repositories.Repository[models.Expense],
	developments *repositories.Repository[models.Development],
) *StoreAggregator {
	return &StoreAggregator{leads: leads, clients: clients, expenses: expenses, developments: developments}
}

func (a *StoreAggregator) Dashboard(ctx context.Context, now time.Time) (*models.DashboardStats, error) {
	snap, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeDashboard(snap, now), nil
}

func (a *StoreAggregator) Breakdown(ctx context.Context, now time.Time) (*models.AnalyticsData, error) {
	snap, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeBreakdown(snap, now), nil
}

// load reads the four collections concurrently. The reads are independent,
// so the result is not a consistent snapshot under concurrent writes.
func (a *StoreAggregator) load(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.Leads, err = a.leads.List(gCtx, bson.M{}, nil)
		return wrap("load leads", err)
	})
	g.Go(func() error {
		var err error
		snap.Clients, err = a.clients.List(gCtx, bson.M{}, nil)
		return wrap("load clients", err)
	})
	g.Go(func() error {
		var err error
		snap.Expenses, err = a.expenses.List(gCtx, bson.M{}, nil)
		return wrap("load expenses", err)
	})
	g.Go(func() error {
		var err error
		snap.Developments, err = a.developments.List(gCtx, bson.M{}, nil)
		return wrap("load developments", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// monthStart returns the first instant of the month containing t, offset by
// the given number of months.
func monthStart(t time.Time, offset int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(offset), 1, 0, 0, 0, 0, t.Location())
}

// window is a half-open time range [from, to).
type window struct {
	from, to time.Time
}

func (w window) contains(t time.Time) bool {
	return !t.Before(w.from) && t.Before(w.to)
}

// ComputeDashboard folds a snapshot into the dashboard figures. Growth compares
// the calendar month containing now with the previous calendar month.
func ComputeDashboard(snap *Snapshot, now time.Time) *models.DashboardStats {
	thisMonth := window{from: monthStart(now, 0), to: monthStart(now, 1)}
	lastMonth := window{from: monthStart(now, -1), to: monthStart(now, 0)}

	stats := &models.DashboardStats{
		TotalLeads:      len(snap.Leads),
		TotalClients:    len(snap.Clients),
		TotalDevelopers: len(snap.Developments),
	}

	var leadsNow, leadsPrev int
	for _, l := range snap.Leads {
		switch l.Status {
		case "qualified":
			stats.QualifiedLeads++
		case "converted":
			stats.ConvertedLeads++
		}
		switch {
		case thisMonth.contains(l.CreatedAt):
			leadsNow++
		case lastMonth.contains(l.CreatedAt):
			leadsPrev++
		}
	}

	var clientsNow, clientsPrev int
	var revenueNow, revenuePrev float64
	for _, c := range snap.Clients {
		if c.Status == "active" {
			stats.ActiveClients++
		}
		stats.TotalRevenue += c.PaymentReceived
		stats.PendingPayments += c.PaymentPending
		stats.TotalContracts += c.ContractValue
		switch {
		case thisMonth.contains(c.CreatedAt):
			clientsNow++
			revenueNow += c.PaymentReceived
		case lastMonth.contains(c.CreatedAt):
			clientsPrev++
			revenuePrev += c.PaymentReceived
		}
	}

	var expenseNow, expensePrev float64
	for _, e := range snap.Expenses {
		switch e.Status {
		case models.ExpensePending:
			stats.PendingExpenses++
		case models.ExpenseApproved:
			stats.ApprovedExpenses++
		}
		stats.TotalExpenseAmount += e.Amount
		switch {
		case thisMonth.contains(e.CreatedAt):
			expenseNow += e.Amount
		case lastMonth.contains(e.CreatedAt):
			expensePrev += e.Amount
		}
	}

	stats.LeadsGrowth = GrowthRate(float64(leadsNow), float64(leadsPrev))
	stats.ClientsGrowth = GrowthRate(float64(clientsNow), float64(clientsPrev))
	stats.RevenueGrowth = GrowthRate(revenueNow, revenuePrev)
	stats.ExpenseGrowth = GrowthRate(expenseNow, expensePrev)
	return stats
}

// GrowthRate formats the change from previous to current as a signed
// percentage with one decimal.
func GrowthRate(current, previous float64) string {
	if previous == 0 {
		if current > 0 {
			return "+100%"
		}
		return "0%"
	}
	rate := (current - previous) / previous * 100
	sign := "+"
	if rate < 0 {
		sign = "-"
	}
	return sign + formatTenths(math.Abs(rate)) + "%"
}

// formatTenths renders a non-negative value with one decimal, rounding an
// exact half up. The decision is made on the exact binary value, so 0.25
// becomes 0.3 while 0.15 (stored just below) stays 0.1.
func formatTenths(v float64) string {
	scaled := new(big.Float).SetPrec(256).SetFloat64(v)
	scaled.Mul(scaled, big.NewFloat(10))
	tenths, _ := scaled.Int(nil)
	frac := new(big.Float).Sub(scaled, new(big.Float).SetInt(tenths))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		tenths.Add(tenths, big.NewInt(1))
	}

	digits := tenths.String()
	if len(digits) < 2 {
		digits = "0" + digits
	}
	return digits[:len(digits)-1] + "." + digits[len(digits)-1:]
}

const revenueMonths = 6

// ComputeBreakdown folds a snapshot into the chart data.
func ComputeBreakdown(snap *Snapshot, now time.Time) *models.AnalyticsData {
	data := &models.AnalyticsData{
		LeadsBySource:      make(map[string]int),
		LeadsByStatus:      make(map[string]int),
		ClientsByIndustry:  make(map[string]int),
		ExpensesByCategory: make(map[string]float64),
		MonthlyRevenue:     make([]models.MonthlyRevenue, 0, revenueMonths),
	}

	for _, l := range snap.Leads {
		data.LeadsBySource[l.Source]++
		data.LeadsByStatus[l.Status]++
	}
	for _, c := range snap.Clients {
		industry := c.Industry
		if industry == "" {
			industry = "Other"
		}
		data.ClientsByIndustry[industry]++
	}
	for _, e := range snap.Expenses {
		data.ExpensesByCategory[e.Category] += e.Amount
	}

	for i := revenueMonths - 1; i >= 0; i-- {
		month := window{from: monthStart(now, -i), to: monthStart(now, -i+1)}
		var revenue float64
		for _, c := range snap.Clients {
			if month.contains(c.CreatedAt) {
				revenue += c.PaymentReceived
			}
		}
		data.MonthlyRevenue = append(data.MonthlyRevenue, models.MonthlyRevenue{
			Month:   month.from.Format("Jan"),
			Revenue: revenue,
		})
	}
	return data
}
