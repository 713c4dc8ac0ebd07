package router

import (
	"database/sql"

	"gamezone_pos_backend/internal/handlers"
	"gamezone_pos_backend/internal/middleware"
	"gamezone_pos_backend/internal/repositories"
	"gamezone_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	roomRepo := repositories.NewRoomRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	appointmentRepo := repositories.NewAppointmentRepository(db)
	cafeProductRepo := repositories.NewCafeProductRepository(db)

	// Initialize Services
	authService := services.NewAuthService(authRepo, db)
	roomService := services.NewRoomService(roomRepo, db)
	sessionService := services.NewSessionService(roomRepo, orderRepo, transactionRepo, db)
	orderService := services.NewOrderService(orderRepo, cafeProductRepo, transactionRepo, db)
	transactionService := services.NewTransactionService(transactionRepo, orderRepo, db)
	appointmentService := services.NewAppointmentService(appointmentRepo, roomRepo, db)
	cafeService := services.NewCafeService(cafeProductRepo, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	roomHandler := handlers.NewRoomHandler(roomService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	orderHandler := handlers.NewOrderHandler(orderService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	cafeProductHandler := handlers.NewCafeProductHandler(cafeService)

	apiV1 := engine.Group("/api/v1")

	// Public authentication routes
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	// Authenticated routes
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupUserRoutes(authenticated, authHandler)
		SetupRoomRoutes(authenticated, roomHandler, sessionHandler)
		SetupSessionRoutes(authenticated, sessionHandler)
		SetupOrderRoutes(authenticated, orderHandler, sessionHandler, transactionHandler)
		SetupTransactionRoutes(authenticated, transactionHandler)
		SetupAppointmentRoutes(authenticated, appointmentHandler)
		SetupCafeProductRoutes(authenticated, cafeProductHandler)
		SetupReportRoutes(authenticated)
		SetupDashboardRoutes(authenticated)
	}
}

// SetupPublicAuthRoutes registers login, which needs no token.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.Login)
}

// SetupAuthenticatedAuthRoutes registers token-protected auth routes.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetProfile)
	group.POST("/register", middleware.RoleAuthMiddleware("admin"), authHandler.Register)
}
