package models

// DashboardStats are the headline figures on the dashboard.
type DashboardStats struct {
	TotalLeads         int     `json:"totalLeads"`
	QualifiedLeads     int     `json:"qualifiedLeads"`
	ConvertedLeads     int     `json:"convertedLeads"`
	TotalClients       int     `json:"totalClients"`
	ActiveClients      int     `json:"activeClients"`
	TotalRevenue       float64 `json:"totalRevenue"`
	PendingPayments    float64 `json:"pendingPayments"`
	TotalContracts     float64 `json:"totalContracts"`
	PendingExpenses    int     `json:"pendingExpenses"`
	ApprovedExpenses   int     `json:"approvedExpenses"`
	TotalExpenseAmount float64 `json:"totalExpenseAmount"`
	TotalDevelopers    int     `json:"totalDevelopers"`
	LeadsGrowth        string  `json:"leadsGrowth"`
	ClientsGrowth      string  `json:"clientsGrowth"`
	RevenueGrowth      string  `json:"revenueGrowth"`
	ExpenseGrowth      string  `json:"expenseGrowth"`
}

// MonthlyRevenue is one point of the revenue chart.
type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// AnalyticsData holds the chart breakdowns.
type AnalyticsData struct {
	LeadsBySource      map[string]int     `json:"leadsBySource"`
	LeadsByStatus      map[string]int     `json:"leadsByStatus"`
	ClientsByIndustry  map[string]int     `json:"clientsByIndustry"`
	ExpensesByCategory map[string]float64 `json:"expensesByCategory"`
	MonthlyRevenue     []MonthlyRevenue   `json:"monthlyRevenue"`
}
