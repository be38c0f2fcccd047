package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
	"github.com/Akhielesh/secure-chat/internal/pkg/auth"
	"github.com/Akhielesh/secure-chat/internal/pkg/chat/application/usecase"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

// GrantMembershipController lets a member add users to a room, e.g. to set up a
// direct or group conversation.
type GrantMembershipController struct {
	UC      *usecase.GrantMembershipUseCase
	Log     *logger.Logger
	Timeout time.Duration
}

func NewGrantMembershipController(uc *usecase.GrantMembershipUseCase, log *logger.Logger, timeout time.Duration) *GrantMembershipController {
	return &GrantMembershipController{UC: uc, Log: log, Timeout: timeout}
}

type grantMembershipRequest struct {
	UserIDs []string `json:"userIds" binding:"required"`
}

func (h *GrantMembershipController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := auth.IdentityFrom(c)
		if !ok {
			writeError(c, appErrors.ErrMissingToken, h.Log, "grant")
			return
		}

		var req grantMembershipRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, appErrors.InvalidPayload("userIds is required"), h.Log, "grant")
			return
		}

		roomID := c.Param("roomId")
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()
		granted, err := h.UC.Execute(ctx, usecase.GrantMembershipInput{RoomID: roomID, GranterID: who.ID, UserIDs: req.UserIDs})
		if err != nil {
			writeError(c, err, h.Log, "grant")
			return
		}
		c.JSON(http.StatusOK, gin.H{"roomId": roomID, "userIds": granted})
	}
}
