package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/althafr/cinetick/config"
	"github.com/althafr/cinetick/internal/booking"
	"github.com/althafr/cinetick/internal/handlers"
	"github.com/althafr/cinetick/internal/middleware"
	"github.com/althafr/cinetick/internal/models"
	"github.com/althafr/cinetick/internal/stores"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	r := gin.Default()

	setupRoutes(r, db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB) {
	ticketStore := stores.NewTicketStore(db)
	userStore := stores.NewUserStore(db)
	bookingService := booking.NewService(ticketStore, userStore)

	authHandler := handlers.NewAuthHandler(userStore)
	userHandler := handlers.NewUserHandler(userStore, ticketStore)
	ticketHandler := handlers.NewTicketHandler(ticketStore, bookingService)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/profile", middleware.JWTAuthMiddleware(), authHandler.GetProfile)
	}

	users := v1.Group("/users")
	users.Use(middleware.JWTAuthMiddleware())
	{
		users.GET("",
			middleware.RequireRoles(models.RoleAdmin, models.RoleStaff),
			userHandler.ListUsers)
		users.GET("/id/:id",
			middleware.RequireResourceOwner(),
			userHandler.GetUserByID)
		users.GET("/name/:name",
			middleware.RequireRoles(models.RoleAdmin, models.RoleStaff),
			userHandler.GetUserByName)
		users.PATCH("/:id/vip",
			middleware.RequireRoles(models.RoleAdmin),
			userHandler.ToggleVIP)
		users.GET("/id/:id/tickets",
			middleware.RequireResourceOwner(),
			userHandler.GetUserTickets)
		users.DELETE("/id/:id/tickets",
			middleware.RequireResourceOwner(),
			userHandler.ClearUserTickets)
	}

	tickets := v1.Group("/tickets")
	tickets.Use(middleware.JWTAuthMiddleware())
	{
		tickets.GET("",
			middleware.RequireRoles(models.RoleAdmin, models.RoleStaff),
			ticketHandler.ListTickets)
		tickets.POST("",
			middleware.RequireRoles(models.RoleAdmin, models.RoleStaff),
			ticketHandler.CreateTicket)
		tickets.GET("/available",
			middleware.RequireRoles(models.RoleUser, models.RoleAdmin, models.RoleStaff),
			ticketHandler.AvailableTickets)
		tickets.GET("/user/:userId",
			middleware.RequireResourceOwner(),
			ticketHandler.UserTickets)
		tickets.POST("/book",
			middleware.RequireRoles(models.RoleUser, models.RoleStaff),
			ticketHandler.BookTicket)
		tickets.PUT("/:id/cancel",
			middleware.RequireRoles(models.RoleUser, models.RoleAdmin, models.RoleStaff),
			ticketHandler.CancelTicket)
		tickets.DELETE("/:id",
			middleware.RequireRoles(models.RoleAdmin),
			ticketHandler.DeleteTicket)
		tickets.GET("/:id/qr",
			middleware.RequireRoles(models.RoleUser, models.RoleAdmin, models.RoleStaff),
			ticketHandler.GenerateTicketQR)
		tickets.POST("/validate",
			middleware.RequireRoles(models.RoleAdmin, models.RoleStaff),
			ticketHandler.ValidateTicket)
	}
}
