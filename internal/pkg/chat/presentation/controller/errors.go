package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

// failure is the client-visible form of an error. Internal failures carry only
// a correlation id; the cause goes to the log under the same id.
type failure struct {
	Code          appErrors.Code
	Message       string
	CorrelationID string
}

func describe(err error, log *logger.Logger, op string) failure {
	code := appErrors.CodeOf(err)
	if code == appErrors.CodeInternal {
		id := uuid.NewString()
		log.Error("request failed", "op", op, "correlationId", id, "err", err)
		return failure{Code: code, Message: "internal error", CorrelationID: id}
	}
	msg := string(code)
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		msg = appErr.Message
	}
	return failure{Code: code, Message: msg}
}

func httpStatus(code appErrors.Code) int {
	switch code {
	case appErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case appErrors.CodeInvalidPayload:
		return http.StatusBadRequest
	case appErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case appErrors.CodeForbidden, appErrors.CodeNotMember:
		return http.StatusForbidden
	case appErrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error, log *logger.Logger, op string) {
	f := describe(err, log, op)
	body := gin.H{"error": f.Code, "message": f.Message}
	if f.CorrelationID != "" {
		body["correlationId"] = f.CorrelationID
	}
	c.JSON(httpStatus(f.Code), body)
}
