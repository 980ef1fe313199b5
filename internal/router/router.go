package router

import (
	"log"
	"time"

	"khakiestate/config"
	"khakiestate/internal/domain"
	"khakiestate/internal/handler"
	"khakiestate/internal/middleware"
	"khakiestate/internal/queue"
	"khakiestate/internal/repository"
	"khakiestate/internal/sequence"
	"khakiestate/internal/service"
	"khakiestate/internal/ws"
	"khakiestate/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, q queue.Queue) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewSlidingWindowLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	residentRepo := repository.NewResidentRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	announcementCatRepo := repository.NewAnnouncementCategoryRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)
	maintenanceCatRepo := repository.NewMaintenanceCategoryRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	areaRepo := repository.NewCommonAreaRepository(db)
	approverRepo := repository.NewApproverRepository(db)
	eventRepo := repository.NewEventRepository(db)
	marketplaceRepo := repository.NewMarketplaceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	notificationTypeRepo := repository.NewNotificationTypeRepository(db)
	seq := sequence.NewGenerator(db)

	notificationHub := ws.NewHub()

	// Services
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath)
	if fcmSvc != nil {
		log.Printf("[FCM] Push notifications enabled")
	} else if cfg.Firebase.ServiceAccountPath != "" {
		log.Printf("[FCM] Push notifications disabled: failed to init (check service account file)")
	} else {
		log.Printf("[FCM] Push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	notifSvc := service.NewNotificationService(notificationRepo, notificationTypeRepo, userRepo, residentRepo, staffRepo, q, notificationHub, fcmSvc)
	authSvc := service.NewAuthService(cfg, userRepo, residentRepo, staffRepo, notifSvc)
	maintenanceSvc := service.NewMaintenanceService(maintenanceRepo, maintenanceCatRepo, staffRepo, seq, notifSvc)
	bookingSvc := service.NewBookingService(bookingRepo, areaRepo, approverRepo, staffRepo, seq, notifSvc)
	announcementSvc := service.NewAnnouncementService(announcementRepo, announcementCatRepo, residentRepo, staffRepo, notifSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	meHandler := handler.NewMeHandler(userRepo, residentRepo, staffRepo)
	announcementHandler := handler.NewAnnouncementHandler(announcementSvc, announcementRepo, announcementCatRepo)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceSvc, maintenanceRepo, maintenanceCatRepo)
	bookingHandler := handler.NewBookingHandler(bookingSvc, bookingRepo, areaRepo)
	approverHandler := handler.NewApproverHandler(bookingSvc, approverRepo)
	areaHandler := handler.NewAreaHandler(areaRepo)
	eventHandler := handler.NewEventHandler(eventRepo, notifSvc)
	marketplaceHandler := handler.NewMarketplaceHandler(marketplaceRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	uploadHandler := handler.NewUploadHandler(cloud)

	authMw := middleware.AuthRequired(&cfg.JWT)
	staffMw := middleware.RequireUserType(domain.UserTypeStaff)
	residentMw := middleware.RequireUserType(domain.UserTypeResident)

	// Tight limit keyed by IP and path keeps credential stuffing from
	// eating the global budget.
	authLimiter := middleware.NewSlidingWindowLimiter(10, 60*time.Second)
	authLimit := middleware.RateLimitBy(authLimiter, func(c *gin.Context) string {
		return c.ClientIP() + c.FullPath()
	})

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authLimit, authHandler.RegisterResident)
			authGroup.POST("/register-staff", authLimit, authHandler.RegisterStaff)
			authGroup.POST("/login", authLimit, authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.GetProfile)
			me.PATCH("/preferences", meHandler.UpdatePreferences)
			me.PATCH("/contact", meHandler.UpdateContact)
			me.POST("/fcm-token", meHandler.RegisterFCMToken)
			me.GET("/notifications", notificationHandler.List)
			me.GET("/notifications/unread-count", notificationHandler.UnreadCount)
			me.GET("/notifications/:id", notificationHandler.Get)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		}

		announcements := api.Group("/announcements")
		announcements.Use(authMw)
		{
			announcements.GET("", announcementHandler.List)
			announcements.POST("", announcementHandler.Create)
			announcements.GET("/categories", announcementHandler.ListCategories)
			announcements.GET("/:id", announcementHandler.Get)
			announcements.PUT("/:id/read", announcementHandler.MarkRead)
			announcements.GET("/:id/comments", announcementHandler.ListComments)
			announcements.POST("/:id/comments", announcementHandler.Comment)
		}

		maintenance := api.Group("/maintenance")
		maintenance.Use(authMw)
		{
			maintenance.GET("/categories", maintenanceHandler.ListCategories)
			maintenance.POST("/requests", residentMw, maintenanceHandler.Create)
			maintenance.GET("/requests", maintenanceHandler.List)
			maintenance.GET("/requests/assigned", staffMw, maintenanceHandler.ListAssigned)
			maintenance.GET("/requests/:id", maintenanceHandler.Get)
			maintenance.POST("/requests/:id/acknowledge", staffMw, maintenanceHandler.Acknowledge)
			maintenance.POST("/requests/:id/assign", staffMw, maintenanceHandler.Assign)
			maintenance.POST("/requests/:id/start", staffMw, maintenanceHandler.StartProgress)
			maintenance.POST("/requests/:id/resolve", staffMw, maintenanceHandler.Resolve)
			maintenance.POST("/requests/:id/close", staffMw, maintenanceHandler.Close)
			maintenance.POST("/requests/:id/cancel", residentMw, maintenanceHandler.Cancel)
			maintenance.PATCH("/requests/:id/costs", staffMw, maintenanceHandler.SetCosts)
			maintenance.POST("/requests/:id/rate", residentMw, maintenanceHandler.Rate)
			maintenance.GET("/requests/:id/updates", maintenanceHandler.ListUpdates)
			maintenance.POST("/requests/:id/updates", maintenanceHandler.AddUpdate)
		}

		bookings := api.Group("/bookings")
		bookings.Use(authMw)
		{
			bookings.GET("/areas", bookingHandler.ListAreas)
			bookings.POST("", residentMw, bookingHandler.Create)
			bookings.GET("", bookingHandler.ListMine)
			bookings.GET("/pending-approvals", bookingHandler.ListPendingApprovals)
			bookings.GET("/:id", bookingHandler.Get)
			bookings.POST("/:id/approve", bookingHandler.Approve)
			bookings.POST("/:id/reject", bookingHandler.Reject)
			bookings.POST("/:id/confirm", residentMw, bookingHandler.Confirm)
			bookings.POST("/:id/cancel", residentMw, bookingHandler.Cancel)
			bookings.POST("/:id/complete", bookingHandler.Complete)
			bookings.POST("/:id/pay", staffMw, bookingHandler.MarkPaid)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, staffMw)
		{
			admin.POST("/approvers", approverHandler.Assign)
			admin.GET("/approvers", approverHandler.List)
			admin.POST("/areas", areaHandler.Create)
			admin.PATCH("/areas/:id", areaHandler.Update)
		}

		events := api.Group("/events")
		events.Use(authMw)
		{
			events.GET("", eventHandler.ListUpcoming)
			events.POST("", eventHandler.Create)
			events.GET("/:id", eventHandler.Get)
			events.POST("/:id/rsvp", residentMw, eventHandler.RSVP)
		}

		marketplace := api.Group("/marketplace")
		marketplace.Use(authMw)
		{
			marketplace.GET("/items", marketplaceHandler.List)
			marketplace.POST("/items", residentMw, marketplaceHandler.Create)
			marketplace.GET("/items/:id", marketplaceHandler.Get)
			marketplace.PATCH("/items/:id/status", residentMw, marketplaceHandler.UpdateStatus)
		}

		api.POST("/uploads", authMw, uploadHandler.UploadAttachment)
	}

	r.GET("/ws/notifications", ws.UpgradeNotificationWS(&cfg.JWT, notificationHub))

	return r
}
