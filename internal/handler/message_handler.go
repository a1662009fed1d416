package handler

import (
	"net/http"

	"chatlink/internal/services"
	"chatlink/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", httpdto.CodeInvalidRequest))
		return
	}

	caller, ok := callerID(c)
	if !ok {
		return
	}
	chatID, ok := parseObjectID(c, c.Param("chatId"), "chat id")
	if !ok {
		return
	}

	msg, err := h.service.Send(c.Request.Context(), caller, chatID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(gin.H{"message": msg}))
}

// GetMessages returns the chat record plus its history, newest first.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	chatID, ok := parseObjectID(c, c.Param("chatId"), "chat id")
	if !ok {
		return
	}

	history, err := h.service.History(c.Request.Context(), chatID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(history))
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	var req httpdto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", httpdto.CodeInvalidRequest))
		return
	}

	caller, ok := callerID(c)
	if !ok {
		return
	}
	messageID, ok := parseObjectID(c, req.MessageID, "message id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), caller, messageID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"msg": "message marked as read"}))
}
