package handler

import (
	"errors"
	"io"
	"net/http"

	"chatlink/internal/services"
	"chatlink/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// FetchChats lists the caller's chats, each annotated with the other
// members' profiles. No chats yet is an empty list, not an error.
func (h *ChatHandler) FetchChats(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	chats, err := h.service.ListChats(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"chats": chats}))
}

func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req httpdto.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", httpdto.CodeInvalidRequest))
		return
	}
	if req.IsGroupChat == nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("please fill the required fields", httpdto.CodeInvalidRequest))
		return
	}

	caller, ok := callerID(c)
	if !ok {
		return
	}
	members, ok := parseObjectIDs(c, req.Members, "member id")
	if !ok {
		return
	}
	admins, ok := parseObjectIDs(c, req.ChatAdmin, "admin id")
	if !ok {
		return
	}

	chat, err := h.service.CreateChat(c.Request.Context(), caller, services.CreateChatInput{
		ChatName:    req.ChatName,
		IsGroupChat: *req.IsGroupChat,
		Members:     members,
		ChatAdmin:   admins,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(gin.H{"chat": chat}))
}

// AddUserToGroup handles both an admin adding members to the chat in the
// path and a user redeeming an invite link from the body.
func (h *ChatHandler) AddUserToGroup(c *gin.Context) {
	var req httpdto.AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", httpdto.CodeInvalidRequest))
		return
	}
	if len(req.UserIDs) == 0 {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("please send user ids", httpdto.CodeInvalidRequest))
		return
	}

	userIDs, ok := parseObjectIDs(c, req.UserIDs, "user id")
	if !ok {
		return
	}

	if req.Link != "" {
		if len(userIDs) != 1 {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("link redemption takes exactly one user id", httpdto.CodeInvalidRequest))
			return
		}
		chat, err := h.service.RedeemLink(c.Request.Context(), req.Link, userIDs[0])
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"chat": chat}))
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

	chat, err := h.service.AddUsersToGroup(c.Request.Context(), caller, chatID, userIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"updatedChat": chat}))
}

func (h *ChatHandler) RenameGroup(c *gin.Context) {
	var req httpdto.RenameGroupRequest
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

	chat, err := h.service.RenameGroup(c.Request.Context(), caller, chatID, req.UpdatedName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"updatedChat": chat}))
}

func (h *ChatHandler) RemoveFromChat(c *gin.Context) {
	var req httpdto.RemoveFromChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", httpdto.CodeInvalidRequest))
		return
	}
	if req.ChatID == "" || req.DeletedUserID == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("chat id and user id are required", httpdto.CodeInvalidRequest))
		return
	}

	caller, ok := callerID(c)
	if !ok {
		return
	}
	chatID, ok := parseObjectID(c, req.ChatID, "chat id")
	if !ok {
		return
	}
	deletedUserID, ok := parseObjectID(c, req.DeletedUserID, "user id")
	if !ok {
		return
	}

	if err := h.service.RemoveFromChat(c.Request.Context(), caller, chatID, deletedUserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"msg": "user was removed successfully"}))
}

func (h *ChatHandler) ExitChat(c *gin.Context) {
	var req httpdto.ExitChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", httpdto.CodeInvalidRequest))
		return
	}

	caller, ok := callerID(c)
	if !ok {
		return
	}
	chatID, ok := parseObjectID(c, req.ChatID, "chat id")
	if !ok {
		return
	}

	if err := h.service.ExitChat(c.Request.Context(), caller, chatID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"msg": "user has exited successfully"}))
}

func (h *ChatHandler) AddAdmin(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	userID, ok := parseObjectID(c, c.Param("userId"), "user id")
	if !ok {
		return
	}
	chatID, ok := parseObjectID(c, c.Param("chatId"), "chat id")
	if !ok {
		return
	}

	chat, err := h.service.AddAdmin(c.Request.Context(), caller, chatID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"msg": "user is now an admin", "chat": chat}))
}

func (h *ChatHandler) CreateGroupLink(c *gin.Context) {
	// The body is optional; without one the expiration falls back to the
	// default window.
	var req httpdto.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
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

	chat, err := h.service.CreateGroupLink(c.Request.Context(), caller, chatID, req.ExpirationDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(gin.H{"msg": "link created successfully", "chat": chat}))
}
