package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dispetcher/backend/config"
	"dispetcher/backend/internal/api/handler"
	"dispetcher/backend/internal/api/middleware"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/pkg/jwt"
)

// loginRateLimit caps login attempts per IP per minute.
const loginRateLimit = 10

// Deps are the shared runtime collaborators of the HTTP layer.
type Deps struct {
	JWT     *jwt.Manager
	Revoked middleware.RevocationChecker
	Limiter middleware.RateLimiter // nil disables rate limiting
	Logger  *zap.Logger
}

// Setup builds the Gin engine.
func Setup(cfg *config.Config, h *handler.Handler, deps Deps) *gin.Engine {
	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	staff := middleware.RoleAuth(model.RoleAdmin, model.RoleDispatcher)
	admin := middleware.RoleAuth(model.RoleAdmin)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(deps.Limiter, cfg.Server.RateLimit, cfg.Server.RateWindow))
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(deps.Limiter, loginRateLimit, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		v1.GET("/meta", h.Meta.Get)

		// the socket authenticates with its first frame
		v1.GET("/ws", h.Stream.Serve)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(deps.JWT, deps.Revoked))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			orders := authorized.Group("/orders")
			{
				orders.GET("", h.Order.List)
				orders.POST("", staff, h.Order.Create)
				orders.GET("/:id", h.Order.GetByID)
				orders.PUT("/:id/geo", staff, h.Order.SetGeoRequired)
				orders.PUT("/:id/status", staff, h.Order.SetStatus)
				orders.PUT("/:id/finance", staff, h.Order.SaveFinance)
				orders.POST("/:id/claim", staff, h.Order.Claim)

				self := middleware.WorkerSelf("workerId")
				workers := orders.Group("/:id/workers/:workerId")
				{
					workers.POST("/claim", self, h.Order.ClaimWorker)
					workers.POST("/assign", staff, h.Order.AssignWorker)
					workers.POST("/confirm", self, h.Order.ConfirmWorker)
					workers.POST("/reject", self, h.Order.RejectWorker)
					workers.PATCH("", staff, h.Order.PatchWorker)
					workers.POST("/start", self, h.Order.StartShift)
					workers.POST("/finish", self, h.Order.FinishShift)
				}
			}

			finance := authorized.Group("/finance")
			{
				finance.POST("/payments", staff, h.Finance.DistributePayment)
				finance.GET("/debtors", staff, h.Finance.Debtors)
				finance.GET("/workers/:id", middleware.WorkerSelf("id"), h.Finance.WorkerFinance)
			}

			stats := authorized.Group("/stats", staff)
			{
				stats.GET("/system", h.Stats.System)
				stats.GET("/finance", h.Stats.Finance)
				stats.GET("/admin", admin, h.Stats.Admin)
			}

			reports := authorized.Group("/reports", staff)
			{
				reports.GET("/payroll", h.Stats.Payroll)
				reports.GET("/payroll.xlsx", h.Export.PayrollWorkbook)
			}

			employees := authorized.Group("/employees")
			{
				self := middleware.WorkerSelf("id")
				employees.GET("", staff, h.Employee.List)
				employees.POST("", staff, h.Employee.Create)
				employees.POST("/offline-locations/sync", h.Employee.SyncOfflineLocations)
				employees.GET("/:id", self, h.Employee.GetByID)
				employees.PATCH("/:id", staff, h.Employee.Update)
				employees.POST("/:id/reviews", staff, h.Employee.AddReview)
				employees.POST("/:id/location", self, h.Employee.UpdateLocation)
				employees.POST("/:id/offline-locations", self, h.Employee.BufferLocation)
				employees.POST("/:id/emergency", self, h.Employee.TriggerEmergency)
				employees.DELETE("/:id/emergency", staff, h.Employee.ResolveEmergency)
				employees.GET("/:id/calendar.ics", self, h.Export.WorkerCalendar)
			}

			dispatchers := authorized.Group("/dispatchers", staff)
			{
				dispatchers.GET("", h.Dispatcher.List)
				dispatchers.PATCH("/:id", admin, h.Dispatcher.Update)
				dispatchers.PUT("/:id/geo-access", admin, h.Dispatcher.ToggleGeoAccess)
				dispatchers.PUT("/:id/status", h.Dispatcher.SetStatus)
			}

			customers := authorized.Group("/customers", staff)
			{
				customers.GET("", h.Customer.List)
				customers.POST("", h.Customer.Create)
				customers.PATCH("/:id", h.Customer.Update)
			}

			authorized.GET("/logs", staff, h.Activity.List)

			chats := authorized.Group("/chats")
			{
				chats.GET("", h.Chat.List)
				chats.POST("", h.Chat.Send)
				chats.PUT("/read", h.Chat.MarkRead)
			}
		}
	}

	return r
}
