package controllers

import (
	"makazi/dto"
	"makazi/middleware"
	"makazi/models"
	"makazi/response"
	"makazi/services"

	"github.com/gin-gonic/gin"
)

type MessageController struct {
	messages *services.MessageService
}

func NewMessageController(messages *services.MessageService) *MessageController {
	return &MessageController{messages: messages}
}

func (ctrl *MessageController) SendMessage(c *gin.Context) {
	var input dto.SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	message, err := ctrl.messages.Send(c.Request.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, convertToMessageResponse(*message))
}

func (ctrl *MessageController) GetInbox(c *gin.Context) {
	page, limit := pageQuery(c)
	messages, total, err := ctrl.messages.Inbox(c.Request.Context(), middleware.CurrentActor(c), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, convertToMessageResponses(messages), page, limit, int(total))
}

func (ctrl *MessageController) GetSent(c *gin.Context) {
	page, limit := pageQuery(c)
	messages, total, err := ctrl.messages.Sent(c.Request.Context(), middleware.CurrentActor(c), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, convertToMessageResponses(messages), page, limit, int(total))
}

func (ctrl *MessageController) MarkRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.messages.MarkRead(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

func convertToMessageResponses(messages []models.Message) []dto.MessageResponse {
	out := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, convertToMessageResponse(m))
	}
	return out
}
