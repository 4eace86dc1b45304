package routes

import (
	"caravanshare/internal/handlers"
	"caravanshare/internal/middleware"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/pkg/websocket"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Caravan     *handlers.CaravanHandler
	Reservation *handlers.ReservationHandler
	Payment     *handlers.PaymentHandler
	Rating      *handlers.RatingHandler
	Review      *handlers.ReviewHandler
	User        *handlers.UserHandler
	Message     *handlers.MessageHandler
	Settlement  *handlers.SettlementHandler
	Health      *handlers.HealthHandler
	WebSocket   *websocket.Handler
}

type Options struct {
	JWTSecret     string
	UserRepo      interfaces.UserRepository
	WebSocketPath string
	// UploadsDir is served under /uploads when files are stored locally.
	UploadsDir string
}

// Setup registers every route on r.
func Setup(r *gin.Engine, h *Handlers, opts Options) {
	auth := middleware.AuthRequired(opts.JWTSecret)

	r.GET("/health", h.Health.Health)
	if h.WebSocket != nil {
		path := opts.WebSocketPath
		if path == "" {
			path = "/ws"
		}
		r.GET(path, auth, h.WebSocket.HandleWebSocket)
	}
	if opts.UploadsDir != "" {
		r.Static("/uploads", opts.UploadsDir)
	}

	api := r.Group("/api/v1")

	SetupAuthRoutes(api, h.Auth)
	SetupCaravanRoutes(api, h.Caravan, auth)
	SetupReservationRoutes(api, h.Reservation, auth, middleware.GuestRequired(opts.UserRepo))
	SetupPaymentRoutes(api, h.Payment, auth)
	SetupReviewRoutes(api, h.Rating, h.Review, auth)
	SetupUserRoutes(api, h.User, h.Review, auth)
	SetupMessageRoutes(api, h.Message, auth)
	SetupSettlementRoutes(api, h.Settlement, auth)
}

func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/google", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
	}
}

func SetupCaravanRoutes(r *gin.RouterGroup, caravanHandler *handlers.CaravanHandler, auth gin.HandlerFunc) {
	caravans := r.Group("/caravans")
	{
		caravans.GET("", caravanHandler.List)
		caravans.GET("/:id", caravanHandler.Get)
		caravans.GET("/:id/booked-dates", caravanHandler.BookedDates)
		caravans.GET("/:id/reviews", caravanHandler.Reviews)
	}

	// Host-owned listing management
	owned := caravans.Group("", auth)
	{
		owned.GET("/host/me", caravanHandler.ListMine)
		owned.POST("", caravanHandler.Create)
		owned.PUT("/:id", caravanHandler.Update)
		owned.DELETE("/:id", caravanHandler.Delete)
		owned.POST("/:id/photos", caravanHandler.UploadPhotos)
	}
}

func SetupReservationRoutes(r *gin.RouterGroup, reservationHandler *handlers.ReservationHandler, auth, guestOnly gin.HandlerFunc) {
	reservations := r.Group("/reservations", auth)
	{
		reservations.POST("", guestOnly, reservationHandler.Create)
		reservations.GET("/me", reservationHandler.ListMine)
		reservations.GET("/host", reservationHandler.ListHosting)
		reservations.GET("/:id", reservationHandler.Get)
		reservations.PUT("/:id/approve", reservationHandler.Approve)
		reservations.PUT("/:id/reject", reservationHandler.Reject)
		reservations.PUT("/:id/cancel", reservationHandler.Cancel)
	}
}

func SetupPaymentRoutes(r *gin.RouterGroup, paymentHandler *handlers.PaymentHandler, auth gin.HandlerFunc) {
	payments := r.Group("/payments", auth)
	{
		payments.POST("", paymentHandler.Pay)
		payments.GET("/reservation/:id", paymentHandler.GetForReservation)
	}
}

func SetupReviewRoutes(r *gin.RouterGroup, ratingHandler *handlers.RatingHandler, reviewHandler *handlers.ReviewHandler, auth gin.HandlerFunc) {
	ratings := r.Group("/ratings", auth)
	{
		ratings.POST("/guest", ratingHandler.RateGuest)
		ratings.POST("/host", ratingHandler.RateHost)
	}

	r.POST("/reviews", auth, reviewHandler.Create)
}

func SetupUserRoutes(r *gin.RouterGroup, userHandler *handlers.UserHandler, reviewHandler *handlers.ReviewHandler, auth gin.HandlerFunc) {
	users := r.Group("/users")
	{
		users.GET("/me", auth, userHandler.GetMe)
		users.PUT("/me", auth, userHandler.UpdateMe)
		users.POST("/me/photo", auth, userHandler.UploadPhoto)
		users.POST("/verify", auth, userHandler.Verify)
		users.GET("/:id", userHandler.GetPublic)
		users.GET("/:id/reviews", reviewHandler.ListForUser)
	}
}

func SetupMessageRoutes(r *gin.RouterGroup, messageHandler *handlers.MessageHandler, auth gin.HandlerFunc) {
	messages := r.Group("/messages", auth)
	{
		messages.POST("", messageHandler.Send)
		messages.GET("", messageHandler.Inbox)
		messages.GET("/:userId", messageHandler.Conversation)
	}
}

func SetupSettlementRoutes(r *gin.RouterGroup, settlementHandler *handlers.SettlementHandler, auth gin.HandlerFunc) {
	settlements := r.Group("/settlements", auth)
	{
		settlements.POST("", settlementHandler.Settle)
		settlements.GET("/me", settlementHandler.ListMine)
	}
}
