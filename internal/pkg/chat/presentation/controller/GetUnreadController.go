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

// GetUnreadController reports the caller's unread count in a room.
type GetUnreadController struct {
	UC      *usecase.GetUnreadCountUseCase
	Log     *logger.Logger
	Timeout time.Duration
}

func NewGetUnreadController(uc *usecase.GetUnreadCountUseCase, log *logger.Logger, timeout time.Duration) *GetUnreadController {
	return &GetUnreadController{UC: uc, Log: log, Timeout: timeout}
}

func (h *GetUnreadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := auth.IdentityFrom(c)
		if !ok {
			writeError(c, appErrors.ErrMissingToken, h.Log, "unread")
			return
		}
		roomID := c.Param("roomId")

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()
		n, err := h.UC.Execute(ctx, usecase.GetUnreadCountInput{RoomID: roomID, UserID: who.ID})
		if err != nil {
			writeError(c, err, h.Log, "unread")
			return
		}
		c.JSON(http.StatusOK, gin.H{"roomId": roomID, "unread": n})
	}
}
