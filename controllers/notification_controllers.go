package controllers

import (
	"makazi/middleware"
	"makazi/response"
	"makazi/services/logger"
	"makazi/services/notification"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

type NotificationController struct {
	notifications *notification.Service
	melody        *melody.Melody
	logger        logger.Logger
}

func NewNotificationController(notifications *notification.Service, m *melody.Melody, log logger.Logger) *NotificationController {
	return &NotificationController{
		notifications: notifications,
		melody:        m,
		logger:        log,
	}
}

func (ctrl *NotificationController) GetNotifyByUser(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	page, limit := pageQuery(c)

	notifies, total, err := ctrl.notifications.List(c.Request.Context(), actor.ID, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, notifies, page, limit, int(total))
}

func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.notifications.MarkRead(c.Request.Context(), middleware.CurrentActor(c).ID, id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// Connect upgrades to a websocket tagged with the caller's id so pushes reach only them.
func (ctrl *NotificationController) Connect(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	keys := map[string]interface{}{notification.SessionUserKey: actor.ID}
	if err := ctrl.melody.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		ctrl.logger.Warn("websocket for user %d: %v", actor.ID, err)
	}
}
