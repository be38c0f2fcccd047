package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

const identityKey = "auth.identity"

// Middleware rejects requests without a valid token and stores the identity on the context.
func Middleware(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, err := v.Verify(TokenFromRequest(c.Request))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": string(appErrors.CodeUnauthorized)})
			return
		}
		c.Set(identityKey, who)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Middleware.
func IdentityFrom(c *gin.Context) (chat.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return chat.Identity{}, false
	}
	who, ok := v.(chat.Identity)
	return who, ok
}
