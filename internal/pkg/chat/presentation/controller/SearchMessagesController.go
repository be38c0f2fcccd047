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

// SearchMessagesController serves full-text search over a room's history
type SearchMessagesController struct {
	UC      *usecase.SearchMessagesUseCase
	Log     *logger.Logger
	Timeout time.Duration
}

func NewSearchMessagesController(uc *usecase.SearchMessagesUseCase, log *logger.Logger, timeout time.Duration) *SearchMessagesController {
	return &SearchMessagesController{UC: uc, Log: log, Timeout: timeout}
}

func (h *SearchMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := auth.IdentityFrom(c)
		if !ok {
			writeError(c, appErrors.ErrMissingToken, h.Log, "search")
			return
		}

		limit := 0
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(c, appErrors.InvalidPayload("limit must be a positive integer"), h.Log, "search")
				return
			}
			limit = n
		}

		in := usecase.SearchMessagesInput{
			RoomID: c.Param("roomId"),
			UserID: who.ID,
			Query:  c.Query("q"),
			Limit:  limit,
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, in)
		if err != nil {
			writeError(c, err, h.Log, "search")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"roomId":  in.RoomID,
			"query":   in.Query,
			"results": msgs,
			"count":   len(msgs),
		})
	}
}
