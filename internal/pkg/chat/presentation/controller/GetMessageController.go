package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
	"github.com/Akhielesh/secure-chat/internal/pkg/auth"
	"github.com/Akhielesh/secure-chat/internal/pkg/chat/application/usecase"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

// GetMessageController pages a room's history (one controller per endpoint)
type GetMessageController struct {
	UC      *usecase.GetMessageUseCase
	Log     *logger.Logger
	Timeout time.Duration
}

func NewGetMessageController(uc *usecase.GetMessageUseCase, log *logger.Logger, timeout time.Duration) *GetMessageController {
	return &GetMessageController{UC: uc, Log: log, Timeout: timeout}
}

func (h *GetMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := auth.IdentityFrom(c)
		if !ok {
			writeError(c, appErrors.ErrMissingToken, h.Log, "history")
			return
		}

		limit := usecase.DefaultHistoryLimit
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(c, appErrors.InvalidPayload("limit must be a positive integer"), h.Log, "history")
				return
			}
			limit = n
		}

		in := usecase.GetMessageInput{
			RoomID:   c.Param("roomId"),
			UserID:   who.ID,
			BeforeID: c.Query("before"),
			Limit:    limit,
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, in)
		if err != nil {
			writeError(c, err, h.Log, "history")
			return
		}

		nextBefore := ""
		if len(msgs) > 0 {
			nextBefore = msgs[0].ID
		}
		c.JSON(http.StatusOK, gin.H{
			"roomId":     in.RoomID,
			"messages":   msgs,
			"count":      len(msgs),
			"nextBefore": nextBefore,
		})
	}
}
