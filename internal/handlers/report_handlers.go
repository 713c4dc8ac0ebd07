package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"gamezone_pos_backend/internal/database"
	"gamezone_pos_backend/internal/models"
	"gamezone_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const DefaultReportDateLayout = "2006-01-02"

// parseReportRange reads start_date/end_date query params, defaulting to
// the current day. The returned end bound is exclusive.
func parseReportRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	if startStr := c.Query("start_date"); startStr != "" {
		t, err := time.Parse(DefaultReportDateLayout, startStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid start_date format. Use YYYY-MM-DD.", err.Error()))
			return start, end, false
		}
		start = t
	}
	if endStr := c.Query("end_date"); endStr != "" {
		t, err := time.Parse(DefaultReportDateLayout, endStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid end_date format. Use YYYY-MM-DD.", err.Error()))
			return start, end, false
		}
		end = t.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "end_date must not be before start_date.", ""))
		return start, end, false
	}
	return start, end, true
}

// GetDashboardSummary provides a summary of key metrics for the dashboard.
func GetDashboardSummary(c *gin.Context) {
	db := database.GetDB()
	var summary models.DashboardSummary
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	// Room occupancy
	err := db.QueryRow(`SELECT COUNT(*) FROM rooms WHERE status = 'occupied'`).Scan(&summary.OccupiedRoomsCount)
	if err != nil && err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get occupied rooms count: " + err.Error()})
		return
	}
	err = db.QueryRow(`SELECT COUNT(*) FROM rooms WHERE status = 'available'`).Scan(&summary.AvailableRoomsCount)
	if err != nil && err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get available rooms count: " + err.Error()})
		return
	}

	// Orders in flight
	err = db.QueryRow(`SELECT COUNT(*) FROM orders WHERE status = 'active'`).Scan(&summary.ActiveOrdersCount)
	if err != nil && err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get active orders count: " + err.Error()})
		return
	}
	err = db.QueryRow(`SELECT COUNT(*) FROM orders WHERE status = 'paused'`).Scan(&summary.PausedOrdersCount)
	if err != nil && err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get paused orders count: " + err.Error()})
		return
	}

	// Net takings today: payments minus refunds
	var salesStr string
	err = db.QueryRow(`
		SELECT COALESCE(SUM(CASE WHEN transaction_type = 'payment' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2`, startOfDay, endOfDay).Scan(&salesStr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get total sales today: " + err.Error()})
		return
	}
	summary.TotalSalesToday, err = decimal.NewFromString(salesStr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse total sales today: " + err.Error()})
		return
	}

	// Appointments still ahead of us today
	err = db.QueryRow(`
		SELECT COUNT(*) FROM appointments
		WHERE appointment_date = $1 AND status IN ('scheduled', 'active') AND appointment_time >= $2`,
		now.Format(DefaultReportDateLayout), now.Format("15:04")).Scan(&summary.UpcomingAppointmentsCount)
	if err != nil && err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get upcoming appointments count: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetTransactionSummary aggregates payments and refunds over a date range.
func GetTransactionSummary(c *gin.Context) {
	start, end, ok := parseReportRange(c)
	if !ok {
		return
	}

	db := database.GetDB()
	summary := models.TransactionSummary{
		TotalPayments:   decimal.Zero,
		TotalRefunds:    decimal.Zero,
		NetRevenue:      decimal.Zero,
		ByPaymentMethod: map[string]decimal.Decimal{},
	}

	rows, err := db.Query(`
		SELECT transaction_type, payment_method, COUNT(*), COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY transaction_type, payment_method`, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate transactions: " + err.Error()})
		return
	}
	defer rows.Close()

	for rows.Next() {
		var txnType, method, amountStr string
		var count int
		if err := rows.Scan(&txnType, &method, &count, &amountStr); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan transaction summary row: " + err.Error()})
			return
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse transaction amount: " + err.Error()})
			return
		}

		summary.TransactionCount += count
		switch txnType {
		case models.TransactionTypePayment:
			summary.TotalPayments = summary.TotalPayments.Add(amount)
			summary.ByPaymentMethod[method] = summary.ByPaymentMethod[method].Add(amount)
		case models.TransactionTypeRefund:
			summary.TotalRefunds = summary.TotalRefunds.Add(amount)
			summary.ByPaymentMethod[method] = summary.ByPaymentMethod[method].Sub(amount)
		}
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed reading transaction summary rows: " + err.Error()})
		return
	}

	summary.NetRevenue = summary.TotalPayments.Sub(summary.TotalRefunds)
	c.JSON(http.StatusOK, summary)
}

// GetDailyRevenue breaks revenue down by calendar day over a date range.
func GetDailyRevenue(c *gin.Context) {
	start, end, ok := parseReportRange(c)
	if !ok {
		return
	}

	db := database.GetDB()
	rows, err := db.Query(`
		SELECT to_char(created_at, 'YYYY-MM-DD') AS day,
		       COALESCE(SUM(CASE WHEN transaction_type = 'payment' THEN amount ELSE 0 END), 0) AS payments,
		       COALESCE(SUM(CASE WHEN transaction_type = 'refund' THEN amount ELSE 0 END), 0) AS refunds
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY day
		ORDER BY day`, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate daily revenue: " + err.Error()})
		return
	}
	defer rows.Close()

	report := []models.DailyRevenue{}
	for rows.Next() {
		var day, paymentsStr, refundsStr string
		if err := rows.Scan(&day, &paymentsStr, &refundsStr); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan daily revenue row: " + err.Error()})
			return
		}
		payments, err := decimal.NewFromString(paymentsStr)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse payments amount: " + err.Error()})
			return
		}
		refunds, err := decimal.NewFromString(refundsStr)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse refunds amount: " + err.Error()})
			return
		}
		report = append(report, models.DailyRevenue{
			Day:      day,
			Payments: payments,
			Refunds:  refunds,
			Net:      payments.Sub(refunds),
		})
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed reading daily revenue rows: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}
