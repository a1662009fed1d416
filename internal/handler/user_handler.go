package handler

import (
	"net/http"

	"chatlink/internal/repository"
	"chatlink/internal/services"
	"chatlink/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users   repository.UserRepository
	uploads *services.UploadService
}

func NewUserHandler(users repository.UserRepository, uploads *services.UploadService) *UserHandler {
	return &UserHandler{users: users, uploads: uploads}
}

func (h *UserHandler) Me(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	u, err := h.users.FindByID(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"user": u}))
}

// Avatar presigns an S3 upload for the caller's new profile picture.
func (h *UserHandler) Avatar(c *gin.Context) {
	var req httpdto.AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", httpdto.CodeInvalidRequest))
		return
	}

	caller, ok := callerID(c)
	if !ok {
		return
	}

	upload, err := h.uploads.CreateAvatarUpload(c.Request.Context(), caller, req.ContentType, req.SizeBytes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(upload))
}
