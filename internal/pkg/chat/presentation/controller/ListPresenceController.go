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

// ListPresenceController returns the live roster of a room.
type ListPresenceController struct {
	UC      *usecase.ListPresenceUseCase
	Log     *logger.Logger
	Timeout time.Duration
}

func NewListPresenceController(uc *usecase.ListPresenceUseCase, log *logger.Logger, timeout time.Duration) *ListPresenceController {
	return &ListPresenceController{UC: uc, Log: log, Timeout: timeout}
}

func (h *ListPresenceController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := auth.IdentityFrom(c)
		if !ok {
			writeError(c, appErrors.ErrMissingToken, h.Log, "presence")
			return
		}
		roomID := c.Param("roomId")

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()
		users, err := h.UC.Execute(ctx, usecase.ListPresenceInput{RoomID: roomID, UserID: who.ID})
		if err != nil {
			writeError(c, err, h.Log, "presence")
			return
		}
		c.JSON(http.StatusOK, gin.H{"roomId": roomID, "users": users, "count": len(users)})
	}
}
