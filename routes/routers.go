package routes

import (
	"net/http"

	"makazi/controllers"
	"makazi/middleware"
	"makazi/services"
	"makazi/services/logger"
	"makazi/services/notification"
	"makazi/types"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies are the services the HTTP layer is built from.
type Dependencies struct {
	Logger        logger.Logger
	Tokens        *services.TokenService
	Auth          *services.AuthService
	Properties    *services.PropertyService
	Tours         *services.TourRequestService
	Messages      *services.MessageService
	Notifications *notification.Service
	Melody        *melody.Melody
	AuthLimiter   *middleware.RateLimiter
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	authController := controllers.NewAuthController(deps.Auth)
	propertyController := controllers.NewPropertyController(deps.Properties)
	adminController := controllers.NewAdminController(deps.Properties, deps.Tours)
	tourController := controllers.NewTourRequestController(deps.Tours)
	messageController := controllers.NewMessageController(deps.Messages)
	notificationController := controllers.NewNotificationController(deps.Notifications, deps.Melody, deps.Logger)

	limiter := deps.AuthLimiter
	if limiter == nil {
		limiter = middleware.NewStrictRateLimiter()
	}

	authenticated := middleware.AuthMiddleware(deps.Tokens)
	tenantOnly := middleware.AuthMiddleware(deps.Tokens, types.RoleTenant)
	landlordOnly := middleware.AuthMiddleware(deps.Tokens, types.RoleLandlord)
	adminOnly := middleware.AuthMiddleware(deps.Tokens, types.RoleAdmin)
	optional := middleware.OptionalAuth(deps.Tokens)

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")

	v1.POST("/auth/register", limiter.RateLimit(), authController.Register)
	v1.POST("/auth/login", limiter.RateLimit(), authController.Login)
	v1.POST("/auth/google", limiter.RateLimit(), authController.AuthGoogle)
	v1.DELETE("/auth/logout", authenticated, authController.Logout)
	v1.GET("/auth/session", authenticated, authController.Session)
	v1.GET("/auth/redirect", optional, authController.Redirect)

	v1.GET("/properties", propertyController.SearchProperties)
	v1.GET("/properties/last-filters", propertyController.LastFilters)
	v1.DELETE("/properties/last-filters", propertyController.ClearLastFilters)
	v1.GET("/properties/:id", optional, propertyController.GetProperty)
	v1.POST("/properties", landlordOnly, propertyController.CreateProperty)
	v1.PUT("/properties/:id", landlordOnly, propertyController.UpdateProperty)
	v1.PUT("/properties/:id/status", landlordOnly, propertyController.UpdatePropertyStatus)
	v1.GET("/landlord/properties", landlordOnly, propertyController.GetMyProperties)

	admin := v1.Group("/admin", adminOnly)
	admin.GET("/properties/pending", adminController.GetPendingProperties)
	admin.PUT("/properties/:id/approve", adminController.ApproveProperty)
	admin.DELETE("/properties/:id", adminController.DenyProperty)
	admin.GET("/tour-requests", adminController.GetTourRequests)

	v1.GET("/tour-requests/template", tourController.GetTemplate)
	v1.POST("/tour-requests", authenticated, tourController.CreateTourRequest)
	v1.GET("/tour-requests/:id", authenticated, tourController.GetTourRequest)
	v1.PUT("/tour-requests/:id/cancel", tenantOnly, tourController.CancelTourRequest)
	v1.PUT("/tour-requests/:id/approve", landlordOnly, tourController.ApproveTourRequest)
	v1.PUT("/tour-requests/:id/deny", landlordOnly, tourController.DenyTourRequest)
	v1.GET("/tenant/tour-requests", tenantOnly, tourController.GetTenantTourRequests)
	v1.GET("/landlord/tour-requests/pending", landlordOnly, tourController.GetLandlordPending)
	v1.GET("/landlord/tour-requests/upcoming", landlordOnly, tourController.GetLandlordUpcoming)

	v1.GET("/notifications", authenticated, notificationController.GetNotifyByUser)
	v1.PUT("/notifications/:id/read", authenticated, notificationController.MarkRead)

	v1.POST("/messages", authenticated, messageController.SendMessage)
	v1.GET("/messages/inbox", authenticated, messageController.GetInbox)
	v1.GET("/messages/sent", authenticated, messageController.GetSent)
	v1.PUT("/messages/:id/read", authenticated, messageController.MarkRead)

	router.GET("/ws", authenticated, notificationController.Connect)
}
