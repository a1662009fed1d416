package handler

import (
	"net/http"

	"chatlink/internal/services"
	"chatlink/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondError maps a service error onto the response. Store and other
// unexpected failures are logged by the error middleware and surface as a
// bare 500.
func respondError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, httpdto.NewErrorResponse("internal server error", httpdto.CodeInternalError))
		return
	}
	c.JSON(status, httpdto.NewErrorResponse(err.Error(), codeForStatus(status)))
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return httpdto.CodeUnauthorized
	case http.StatusNotFound:
		return httpdto.CodeNotFound
	case http.StatusTooManyRequests:
		return httpdto.CodeRateLimited
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return httpdto.CodeInvalidRequest
	default:
		return httpdto.CodeRequestFailed
	}
}

// callerID pulls the authenticated user from the request context. The auth
// middleware guarantees it on protected routes; a miss still answers 401.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", httpdto.CodeUnauthorized))
		return primitive.NilObjectID, false
	}
	return userID, true
}

func parseObjectID(c *gin.Context, value, field string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid "+field, httpdto.CodeInvalidRequest))
		return primitive.NilObjectID, false
	}
	return id, true
}

func parseObjectIDs(c *gin.Context, values []string, field string) ([]primitive.ObjectID, bool) {
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		id, ok := parseObjectID(c, v, field)
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
