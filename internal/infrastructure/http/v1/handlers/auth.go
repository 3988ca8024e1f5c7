package handlers

import (
	"github.com/gin-gonic/gin"

	"postboard/internal/domain/auth"
	"postboard/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// RegisterEmail handles POST /auth/register/email
func (h *AuthHandler) RegisterEmail(c *gin.Context) {
	var req dto.RegisterEmailRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, err := h.service.RegisterWithEmail(c.Request.Context(), req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromTokenPair(tokens))
}

// LoginEmail handles POST /auth/login/email with Basic credentials.
func (h *AuthHandler) LoginEmail(c *gin.Context) {
	tokens, err := h.service.LoginWithBasic(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromTokenPair(tokens))
}

// AccessToken handles POST /auth/token/access
func (h *AuthHandler) AccessToken(c *gin.Context) {
	token, err := h.service.RotateToken(c.GetHeader("Authorization"), auth.TokenAccess)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.AccessTokenResponse{AccessToken: token})
}

// RefreshToken handles POST /auth/token/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, err := h.service.RotateToken(c.GetHeader("Authorization"), auth.TokenRefresh)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.RefreshTokenResponse{RefreshToken: token})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromUser(user))
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/register/email", h.RegisterEmail)
	public.POST("/login/email", h.LoginEmail)
	public.POST("/token/access", h.AccessToken)
	public.POST("/token/refresh", h.RefreshToken)

	protected.GET("/me", h.Me)
}
