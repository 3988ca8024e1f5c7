package middleware

import (
	"github.com/gin-gonic/gin"

	"postboard/internal/core/apperror"
	appctx "postboard/internal/core/context"
	"postboard/internal/domain/auth"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string, expected auth.TokenType) (*appctx.UserContext, error)
}

// TokenGuard requires an "Authorization: Bearer" token of type typ and puts
// its user into the request context.
func TokenGuard(validator TokenValidator, typ auth.TokenType) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractToken(c.GetHeader("Authorization"), auth.SchemeBearer)
		if err != nil {
			abort(c, err)
			return
		}

		user, err := validator.ValidateToken(token, typ)
		if err != nil {
			abort(c, err)
			return
		}

		c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
		c.Set("user_id", user.UserID)
		c.Next()
	}
}

// AccessTokenGuard requires a valid access token.
func AccessTokenGuard(validator TokenValidator) gin.HandlerFunc {
	return TokenGuard(validator, auth.TokenAccess)
}

// RefreshTokenGuard requires a valid refresh token.
func RefreshTokenGuard(validator TokenValidator) gin.HandlerFunc {
	return TokenGuard(validator, auth.TokenRefresh)
}

func abort(c *gin.Context, err error) {
	if _, ok := apperror.AsAppError(err); !ok {
		err = apperror.NewUnauthorized("invalid token").WithCause(err)
	}
	_ = c.Error(err)
	c.Abort()
}
