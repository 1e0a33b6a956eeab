package api

import (
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/cache"
	intconfig "github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/config"
	h "github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/http/handlers"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/http/middleware"
)

func NewRouter(env intconfig.Env, c *cache.Cache) *gin.Engine {
	h.Configure(env, c)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)
		api.GET("/cache-stats", h.CacheStats)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)

		protected := api.Group("")
		protected.Use(middleware.RequireAuth([]byte(env.JWTSecret)))

		// Vehicles
		vehicles := protected.Group("/vehicles")
		vehicles.GET("", h.GetVehicles)
		vehicles.GET("/:id", h.GetVehicleByID)
		vehicles.POST("", h.CreateVehicle)
		vehicles.PUT("/:id", h.UpdateVehicle)
		vehicles.DELETE("/:id", h.DeleteVehicle)

		// Customers
		customers := protected.Group("/customers")
		customers.GET("", h.GetCustomers)
		customers.GET("/:id", h.GetCustomerByID)
		customers.POST("", h.CreateCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.DELETE("/:id", h.DeleteCustomer)

		// Rentals and everything hanging off a rental
		rentals := protected.Group("/rentals")
		rentals.GET("", h.GetRentals)
		rentals.POST("", h.CreateRental)
		rentals.GET("/:id", h.GetRentalByID)
		rentals.PUT("/:id/status", h.UpdateRentalStatus)

		rentals.POST("/:id/tolls/refresh", h.RefreshRentalTolls)
		rentals.GET("/:id/tolls", h.GetRentalTolls)
		rentals.GET("/:id/tolls/weekly", h.GetRentalTollsWeekly)
		rentals.PUT("/:id/tolls/:noticeId/pay", h.PayRentalToll)
		rentals.GET("/:id/tolls/export", h.ExportRentalTollsCSV)

		rentals.POST("/:id/payments", h.RecordRentalPayment)
		rentals.GET("/:id/statement", h.GetRentalStatement)
		rentals.GET("/:id/invoice", h.GetRentalInvoicePDF)
	}

	h.SetRouter(r)
	return r
}
