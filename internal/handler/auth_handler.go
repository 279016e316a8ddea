package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"approvalflow/internal/service"
)

type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("Register: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	u, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Register: success", zap.Int64("user_id", u.ID), zap.String("email", u.Email))
	c.JSON(http.StatusCreated, gin.H{"id": u.ID, "email": u.Email})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		h.logger.Warn("Login: failed", zap.String("email", in.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims := claimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Logout: success", zap.Int64("user_id", claims.UserID))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
