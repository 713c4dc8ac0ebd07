package models

import "github.com/shopspring/decimal"

// TransactionSummary aggregates money movement over a period.
type TransactionSummary struct {
	TotalPayments    decimal.Decimal            `json:"total_payments"`
	TotalRefunds     decimal.Decimal            `json:"total_refunds"`
	NetRevenue       decimal.Decimal            `json:"net_revenue"`
	TransactionCount int                        `json:"transaction_count"`
	ByPaymentMethod  map[string]decimal.Decimal `json:"by_payment_method"`
}

// DailyRevenue is one row of the revenue-by-day report.
type DailyRevenue struct {
	Day      string          `json:"day"` // YYYY-MM-DD
	Payments decimal.Decimal `json:"payments"`
	Refunds  decimal.Decimal `json:"refunds"`
	Net      decimal.Decimal `json:"net"`
}

// DashboardSummary is the at-a-glance view for the terminal's home screen.
type DashboardSummary struct {
	OccupiedRoomsCount        int             `json:"occupied_rooms_count"`
	AvailableRoomsCount       int             `json:"available_rooms_count"`
	ActiveOrdersCount         int             `json:"active_orders_count"`
	PausedOrdersCount         int             `json:"paused_orders_count"`
	TotalSalesToday           decimal.Decimal `json:"total_sales_today"`
	UpcomingAppointmentsCount int             `json:"upcoming_appointments_count"`
}
