package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mirantsoa/clinic-api/internal/middleware"
	"github.com/mirantsoa/clinic-api/internal/models"
	"github.com/mirantsoa/clinic-api/internal/tenant"
)

// NewRouter wires the full HTTP surface: tenant-scoped resource routes under
// /api/:tenant, the legacy header-tenant surface under /api, and the
// cron-triggered sweeps under /cron.
func (h *Handler) NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     h.Cfg.App.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", tenant.HeaderName},
		AllowCredentials: true,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h.mountAPI(r.Group("/api/:tenant"))

	// Legacy surface: the same handler set mounted without the tenant path
	// segment; the tenant resolver falls back to the X-Tenant header. Static
	// segments win over :tenant in gin's tree, so both surfaces coexist.
	h.mountAPI(r.Group("/api"))

	cron := r.Group("/cron", middleware.CronSecret(h.Cfg.Cron.Secret))
	{
		cron.POST("/subscriptions/expire", h.ExpireSubscriptions)
	}

	return r
}

// mountAPI registers every resource route on the given group. Called once for
// the tenant-scoped surface and once for the legacy header-tenant surface.
func (h *Handler) mountAPI(api *gin.RouterGroup) {
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/logout", h.Logout)
	}

	protected := api.Group("")
	protected.Use(middleware.Auth(h.Sessions, h.Cfg.Session.CookieName))
	{
		protected.GET("/auth/verify-role", h.VerifyRole)
		protected.POST("/auth/register",
			middleware.RequireRole(models.RoleOwner), h.RegisterUser)

		appointments := protected.Group("/appointments")
		{
			appointments.GET("", h.ListAppointments)
			appointments.POST("", h.CreateAppointment)
			appointments.GET("/:id", h.GetAppointment)
			appointments.PUT("/:id", h.UpdateAppointment)
			appointments.DELETE("/:id", h.DeleteAppointment)
		}

		patients := protected.Group("/patients",
			middleware.RequireRole(models.RoleOwner, models.RoleDoctor, models.RoleStaff))
		{
			patients.GET("", h.ListPatients)
			patients.POST("", h.CreatePatient)
			patients.GET("/:id", h.GetPatient)
			patients.PUT("/:id", h.UpdatePatient)
			patients.DELETE("/:id", h.DeletePatient)
		}

		procedures := protected.Group("/procedures",
			middleware.RequireRole(models.RoleOwner, models.RoleDoctor, models.RoleStaff))
		{
			procedures.GET("", h.ListProcedures)
			procedures.POST("", h.CreateProcedure)
			procedures.GET("/:id", h.GetProcedure)
			procedures.PUT("/:id", h.UpdateProcedure)
			procedures.DELETE("/:id", h.DeleteProcedure)
		}

		bills := protected.Group("/bills",
			middleware.RequireRole(models.RoleOwner, models.RoleStaff))
		{
			bills.GET("", h.ListBills)
			bills.POST("", h.CreateBill)
			bills.GET("/:id", h.GetBill)
			bills.PUT("/:id", h.UpdateBill)
			bills.DELETE("/:id", h.DeleteBill)
		}

		income := protected.Group("/income",
			middleware.RequireRole(models.RoleOwner, models.RoleStaff))
		{
			income.GET("", h.ListIncome)
			income.POST("", h.CreateIncome)
			income.GET("/:id", h.GetIncome)
			income.PUT("/:id", h.UpdateIncome)
			income.DELETE("/:id", h.DeleteIncome)
		}

		users := protected.Group("/users",
			middleware.RequireRole(models.RoleOwner, models.RoleStaff))
		{
			users.GET("", h.ListUsers)
			users.GET("/:id", h.GetUser)
			users.PUT("/:id", middleware.RequireRole(models.RoleOwner), h.UpdateUser)
			users.DELETE("/:id", middleware.RequireRole(models.RoleOwner), h.DeleteUser)
		}

		documents := protected.Group("/documents",
			middleware.RequireRole(models.RoleOwner, models.RoleDoctor, models.RoleStaff))
		{
			documents.GET("", h.ListDocuments)
			documents.POST("", h.CreateDocument)
			documents.GET("/:id", h.GetDocument)
			documents.DELETE("/:id", h.DeleteDocument)
		}

		subscriptions := protected.Group("/subscriptions",
			middleware.RequireRole(models.RoleOwner))
		{
			subscriptions.GET("", h.ListSubscriptions)
			subscriptions.POST("", h.CreateSubscription)
			subscriptions.GET("/:id", h.GetSubscription)
			subscriptions.PUT("/:id", h.UpdateSubscription)
			subscriptions.DELETE("/:id", h.DeleteSubscription)
		}

		stock := protected.Group("/stock",
			middleware.RequireRole(models.RoleOwner, models.RoleStaff))
		{
			stock.GET("", h.ListStockItems)
			stock.POST("", h.CreateStockItem)
			stock.GET("/:id", h.GetStockItem)
			stock.PUT("/:id", h.UpdateStockItem)
			stock.DELETE("/:id", h.DeleteStockItem)
			stock.POST("/:id/movements", h.CreateStockMovement)
			stock.GET("/:id/movements", h.ListStockMovements)
		}
	}
}
