package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Thiahho/Resto-Bar-sub001/config"
	"github.com/Thiahho/Resto-Bar-sub001/controllers"
	"github.com/Thiahho/Resto-Bar-sub001/kds"
	"github.com/Thiahho/Resto-Bar-sub001/middlewares"
	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/services"
)

// Deps are the long-lived objects the HTTP layer is built from.
type Deps struct {
	Config  config.Config
	DB      *gorm.DB
	Hub     *kds.Hub
	Tables  *services.TableService
	Orders  *services.OrderService
	Kitchen *services.KitchenService
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.Config.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(d.DB, d.Config.StaffTokenTTL)
	tableCtrl := controllers.NewTableController(d.Tables)
	sessionCtrl := controllers.NewTableSessionController(d.Tables, d.Orders)
	orderCtrl := controllers.NewOrderController(d.Orders)
	ticketCtrl := controllers.NewKitchenTicketController(d.Kitchen)
	menuCtrl := controllers.NewMenuController(d.DB)
	categoryCtrl := controllers.NewMenuCategoryController(d.DB)
	pushCtrl := controllers.NewPushSubscriptionController(d.DB)
	kdsCtrl := controllers.NewKDSController(d.Hub, d.Config.CORSOrigins)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/login", middlewares.NewStrictRateLimiter(), userCtrl.Login)
	r.GET("/menu", menuCtrl.GetMenu)
	r.GET("/orders/track/:code", orderCtrl.TrackOrder)
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(), kdsCtrl.Serve)

	publicLimiter := middlewares.NewRateLimiter(d.Config.PublicRateLimit, d.Config.PublicRateLimit)
	public := r.Group("/public")
	public.Use(publicLimiter.RateLimit())
	{
		public.GET("/tables/:id", tableCtrl.GetPublicTable)
		public.POST("/tables/:id/orders", middlewares.OptionalTableToken(), orderCtrl.CreatePublicTableOrder)
	}

	// Staff or table token: diners holding a table QR token may order into their session.
	r.POST("/admin/table-sessions/:id/orders", middlewares.StaffOrTableAuth(), orderCtrl.CreateSessionOrder)

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware())
	{
		admin.GET("/profile", userCtrl.GetProfile)
		admin.POST("/logout", userCtrl.Logout)

		floor := admin.Group("")
		floor.Use(middlewares.RequireRoles(models.RoleAdmin, models.RoleWaiter))
		{
			floor.GET("/tables", tableCtrl.ListTables)
			floor.GET("/tables/:id/qr", tableCtrl.GetTableQR)
			floor.POST("/tables/:id/open-session", tableCtrl.OpenSession)
			floor.POST("/tables/:id/request-bill", tableCtrl.RequestBill)
			floor.POST("/tables/:id/close-session", tableCtrl.CloseSession)
			floor.POST("/tables/:id/reserve", tableCtrl.Reserve)
			floor.POST("/tables/:id/release", tableCtrl.Release)
			floor.POST("/tables/:id/out-of-service", tableCtrl.MarkOutOfService)

			floor.GET("/table-sessions", sessionCtrl.ListSessions)
			floor.GET("/table-sessions/:id", sessionCtrl.GetSession)
			floor.GET("/table-sessions/:id/orders", sessionCtrl.GetSessionOrders)
			floor.POST("/table-sessions/:id/close", sessionCtrl.CloseSession)

			floor.PUT("/orders/:id/status", orderCtrl.UpdateOrderStatus)
		}

		kitchen := admin.Group("")
		kitchen.Use(middlewares.RequireRoles(models.RoleAdmin, models.RoleWaiter, models.RoleKitchen))
		{
			kitchen.GET("/kitchen-tickets", ticketCtrl.ListTickets)
			kitchen.PUT("/kitchen-tickets/:id/status", ticketCtrl.UpdateTicketStatus)

			kitchen.GET("/push-subscriptions", pushCtrl.List)
			kitchen.POST("/push-subscriptions", pushCtrl.Subscribe)
			kitchen.DELETE("/push-subscriptions/:id", pushCtrl.Unsubscribe)
		}

		owner := admin.Group("")
		owner.Use(middlewares.RequireRoles(models.RoleAdmin))
		{
			owner.GET("/users", userCtrl.GetAllUsers)
			owner.POST("/users", userCtrl.Register)

			owner.GET("/categories", categoryCtrl.GetAllCategories)
			owner.POST("/categories", categoryCtrl.CreateCategory)
			owner.PUT("/categories/:id", categoryCtrl.UpdateCategory)
			owner.POST("/products", menuCtrl.CreateProduct)
			owner.PUT("/products/:id", menuCtrl.UpdateProduct)
		}
	}

	return r
}
