package api

import (
	stdhttp "net/http"

	intconfig "campushub/internal/config"
	h "campushub/internal/http/handlers"
	"campushub/internal/http/middleware"
	"campushub/internal/storage"
	"campushub/internal/utils"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.LogError("", "router", "trusted_proxies", err)
	}
	// Ten images per request plus form fields stay in memory; the rest spills to disk.
	r.MaxMultipartMemory = 8 << 20

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":      "route not found",
			"code":       "not_found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	uploads := storage.NewUploads(env.UploadDir, env.MaxUploadBytes)
	r.Static("/uploads", uploads.Dir)

	sessions := h.SessionConfig{
		Secret:       []byte(env.SessionSecret),
		TTL:          env.SessionTTL,
		CookieSecure: env.CookieSecure,
	}
	requireAgent := middleware.RequireAgent(sessions.Authenticator())
	requireBusiness := middleware.RequireBusiness(sessions.Authenticator())
	requireAdmin := middleware.RequireAdmin(env.AdminAPIKey)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Housing
		properties := api.Group("/properties")
		properties.GET("", h.ListProperties)
		properties.GET("/:id", h.GetProperty)
		properties.POST("", h.CreateProperty(uploads))
		properties.DELETE("/:id", requireAdmin, h.DeleteProperty)

		bookings := api.Group("/bookings")
		bookings.POST("", h.CreateBooking)
		bookings.GET("", requireAdmin, h.ListBookings)
		bookings.GET("/export", requireAdmin, h.ExportBookings)
		bookings.POST("/:id/confirm", requireAdmin, h.ConfirmBooking)

		api.POST("/reviews", h.CreateReview)

		// Marketplace
		businesses := api.Group("/businesses")
		businesses.GET("", h.ListBusinesses)
		businesses.GET("/admin", requireAdmin, h.ListAllBusinesses)
		businesses.GET("/:id", h.GetBusiness)
		businesses.POST("", h.CreateBusiness(uploads))
		businesses.POST("/:id/approve", requireAdmin, h.ApproveBusiness)
		businesses.POST("/:id/password", requireAdmin, h.SetBusinessPassword)
		businesses.DELETE("/:id", requireAdmin, h.DeleteBusiness)
		businesses.GET("/:id/orders", requireBusiness, h.BusinessOrders)

		services := api.Group("/services")
		services.GET("", h.ListServices)
		services.GET("/:id", h.GetService)
		services.POST("", h.CreateService(uploads))

		api.POST("/service-bookings", h.CreateServiceBooking)

		business := api.Group("/business")
		business.POST("/login", h.BusinessLogin(sessions))
		business.POST("/logout", h.Logout(sessions))
		business.POST("/order/:id/deliver", requireBusiness, h.MarkOrderDelivered)
		business.GET("/:id/notifications", requireBusiness, h.BusinessNotifications)

		// Transport, public
		transport := api.Group("/transport")
		transport.GET("/routes", h.ListRoutes)
		transport.POST("/routes", requireAgent, h.CreateRoute)
		transport.GET("/buses/:id/layout", h.BusLayout)
		transport.GET("/trips", h.ListTrips)
		transport.GET("/trips/:id/seats", h.TripSeats)
		transport.POST("/trips/:id/bookings", h.BookSeat)
		transport.GET("/tickets/:code", h.ETicket)

		// Transport, agent console
		agent := api.Group("/agent")
		agent.POST("/login", h.AgentLogin(sessions))
		agent.POST("/logout", h.Logout(sessions))

		console := agent.Group("", requireAgent)
		console.GET("/me", h.AgentMe(sessions))
		console.GET("/buses", h.ListAgentBuses)
		console.POST("/buses", h.CreateBus)
		console.PUT("/buses/:id", h.UpdateBus)
		console.DELETE("/buses/:id", h.DeleteBus)
		console.GET("/trips", h.ListAgentTrips)
		console.POST("/trips", h.CreateTrip)
		console.PUT("/trips/:id/status", h.UpdateTripStatus)
		console.GET("/bookings", h.ListAgentBookings)
		console.GET("/bookings/export", h.ExportAgentBookings)
		console.POST("/bookings/:id/confirm", h.ConfirmSeatBooking)
		console.POST("/bookings/:id/cancel", h.CancelSeatBooking)
	}

	h.SetRouter(r)
	return r
}
