package routes

import (
	"time"

	"guruconnect/handlers"
	"guruconnect/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterTutorRoutes registers tutor availability endpoints.
func RegisterTutorRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/tutors")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/:id/availability", hb.GetAvailability)
		api.GET("/:id/slots", hb.GetSlots)
		api.PUT("/:id/availability", hb.SetAvailability)
	}
}

// RegisterBookingRoutes registers payment order and session endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/payments/orders", hb.CreatePaymentOrder)
		api.POST("/sessions", hb.CreateSession)
		api.GET("/sessions", hb.ListSessions)
	}
}

// RegisterChatRoutes registers chat endpoints and the websocket upgrade.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/chats")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.GetOrCreateChat)
		api.GET("/:chatId/messages", hb.ChatHistory)
	}

	// The websocket authenticates from ?token= since browsers cannot set headers on upgrade.
	r.GET("/ws", hb.ServeWS)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterTutorRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterChatRoutes(r, hb)
}
