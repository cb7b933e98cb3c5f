package app

import (
	"net/http"

	"github.com/ak/nutriplan/internal/app/middleware"
	"github.com/ak/nutriplan/internal/domain/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type loginResponse struct {
	*services.TokenPair
	PlatformToken string `json:"platform_token,omitempty"`
}

func (a *Application) login(c *gin.Context) {
	if a.identityService == nil {
		errorResponse(c, http.StatusServiceUnavailable, "IAM_UNAVAILABLE", "Identity provider is not configured")
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	tokens, err := a.identityService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		return
	}

	resp := loginResponse{TokenPair: tokens}
	if tokens.UserID != "" && a.config.JWT.Secret != "" {
		platformToken, err := middleware.GenerateToken(a.jwtConfig(), tokens.UserID, tokens.Email, nil)
		if err != nil {
			a.logger.Warn("Failed to mint platform token", zap.Error(err))
		} else {
			resp.PlatformToken = platformToken
		}
	}

	successResponse(c, resp)
}

func (a *Application) refreshToken(c *gin.Context) {
	if a.identityService == nil {
		errorResponse(c, http.StatusServiceUnavailable, "IAM_UNAVAILABLE", "Identity provider is not configured")
		return
	}

	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	tokens, err := a.identityService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, "INVALID_TOKEN", "Refresh token is invalid or expired")
		return
	}

	successResponse(c, tokens)
}
