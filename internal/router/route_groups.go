package router

import (
	"gamezone_pos_backend/internal/handlers"
	"gamezone_pos_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupUserRoutes sets up staff account management. Admin only.
func SetupUserRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	userRoutes := authenticatedGroup.Group("/users")
	userRoutes.Use(middleware.RoleAuthMiddleware("admin"))
	{
		userRoutes.GET("", authHandler.GetUsers)
		userRoutes.PATCH("/:id/active", authHandler.SetUserActive)
	}
}

// SetupRoomRoutes sets up room CRUD and the room-scoped session actions.
func SetupRoomRoutes(authenticatedGroup *gin.RouterGroup, roomHandler *handlers.RoomHandler, sessionHandler *handlers.SessionHandler) {
	roomRoutes := authenticatedGroup.Group("/rooms")
	roomRoutes.Use(middleware.RoleAuthMiddleware("admin", "cashier"))
	{
		roomRoutes.GET("", roomHandler.GetRooms)
		roomRoutes.GET("/:id", roomHandler.GetRoomByID)

		roomRoutes.POST("/:id/start-session", sessionHandler.StartSession)
		roomRoutes.POST("/:id/stop-session", sessionHandler.StopSession)
		roomRoutes.POST("/:id/adjust-time", sessionHandler.AdjustTime)
	}

	roomAdminRoutes := authenticatedGroup.Group("/rooms")
	roomAdminRoutes.Use(middleware.RoleAuthMiddleware("admin"))
	{
		roomAdminRoutes.POST("", roomHandler.CreateRoom)
		roomAdminRoutes.PUT("/:id", roomHandler.UpdateRoom)
		roomAdminRoutes.PATCH("/:id/status", roomHandler.SetRoomStatus)
		roomAdminRoutes.DELETE("/:id", roomHandler.DeleteRoom)
	}
}

// SetupSessionRoutes sets up the live-session overview.
func SetupSessionRoutes(authenticatedGroup *gin.RouterGroup, sessionHandler *handlers.SessionHandler) {
	sessionRoutes := authenticatedGroup.Group("/sessions")
	sessionRoutes.Use(middleware.RoleAuthMiddleware("admin", "cashier"))
	{
		sessionRoutes.GET("/active", sessionHandler.GetActiveSessions)
	}
}

// SetupOrderRoutes sets up order CRUD plus the order-scoped session and
// payment actions.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler, sessionHandler *handlers.SessionHandler, transactionHandler *handlers.TransactionHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	orderRoutes.Use(middleware.RoleAuthMiddleware("admin", "cashier"))
	{
		orderRoutes.POST("/cafe", orderHandler.CreateCafeOrder)
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.POST("/:id/items", orderHandler.AttachCafeItems)
		orderRoutes.POST("/:id/recalculate", orderHandler.RecalculateTotal)
		orderRoutes.PATCH("/:id/cancel", orderHandler.CancelOrder)

		orderRoutes.POST("/:id/reactivate", sessionHandler.ReactivateSession)
		orderRoutes.POST("/:id/extend-time", sessionHandler.ExtendTime)
		orderRoutes.POST("/:id/complete-payment", sessionHandler.CompletePayment)

		orderRoutes.GET("/:id/transactions", transactionHandler.GetOrderTransactions)
	}

	orderAdminRoutes := authenticatedGroup.Group("/orders")
	orderAdminRoutes.Use(middleware.RoleAuthMiddleware("admin"))
	{
		orderAdminRoutes.DELETE("/:id", orderHandler.DeleteOrder)
		orderAdminRoutes.POST("/:id/refund", transactionHandler.RefundOrder)
	}
}

// SetupTransactionRoutes sets up the read-only payment ledger.
func SetupTransactionRoutes(authenticatedGroup *gin.RouterGroup, transactionHandler *handlers.TransactionHandler) {
	transactionRoutes := authenticatedGroup.Group("/transactions")
	transactionRoutes.Use(middleware.RoleAuthMiddleware("admin", "cashier"))
	{
		transactionRoutes.GET("", transactionHandler.GetTransactions)
		transactionRoutes.GET("/:id", transactionHandler.GetTransactionByID)
	}
}

// SetupAppointmentRoutes sets up the appointment scheduling routes.
func SetupAppointmentRoutes(authenticatedGroup *gin.RouterGroup, appointmentHandler *handlers.AppointmentHandler) {
	appointmentRoutes := authenticatedGroup.Group("/appointments")
	appointmentRoutes.Use(middleware.RoleAuthMiddleware("admin", "cashier"))
	{
		appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
		appointmentRoutes.GET("", appointmentHandler.GetAppointments)
		appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
		appointmentRoutes.PUT("/:id", appointmentHandler.UpdateAppointment)
		appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
		appointmentRoutes.DELETE("/:id", appointmentHandler.DeleteAppointment)
	}
}

// SetupCafeProductRoutes sets up the cafe catalog routes.
func SetupCafeProductRoutes(authenticatedGroup *gin.RouterGroup, cafeProductHandler *handlers.CafeProductHandler) {
	cafeReadRoutes := authenticatedGroup.Group("/cafe-products")
	cafeReadRoutes.Use(middleware.RoleAuthMiddleware("admin", "cashier"))
	{
		cafeReadRoutes.GET("", cafeProductHandler.GetCafeProducts)
		cafeReadRoutes.GET("/:id", cafeProductHandler.GetCafeProductByID)
		cafeReadRoutes.PATCH("/:id/stock", cafeProductHandler.AdjustCafeProductStock)
	}

	cafeAdminRoutes := authenticatedGroup.Group("/cafe-products")
	cafeAdminRoutes.Use(middleware.RoleAuthMiddleware("admin"))
	{
		cafeAdminRoutes.POST("", cafeProductHandler.CreateCafeProduct)
		cafeAdminRoutes.PUT("/:id", cafeProductHandler.UpdateCafeProduct)
		cafeAdminRoutes.DELETE("/:id", cafeProductHandler.DeleteCafeProduct)
	}
}

// SetupReportRoutes sets up the report routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup) {
	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(middleware.RoleAuthMiddleware("admin"))
	{
		reportRoutes.GET("/transactions", handlers.GetTransactionSummary)
		reportRoutes.GET("/daily-revenue", handlers.GetDailyRevenue)
	}
}

// SetupDashboardRoutes sets up the dashboard routes.
func SetupDashboardRoutes(authenticatedGroup *gin.RouterGroup) {
	dashboardRoutes := authenticatedGroup.Group("/dashboard")
	dashboardRoutes.Use(middleware.RoleAuthMiddleware("admin", "cashier"))
	{
		dashboardRoutes.GET("/summary", handlers.GetDashboardSummary)
	}
}
