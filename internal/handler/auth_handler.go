package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/vocabnote/internal/middleware"
	"github.com/xxxsen/vocabnote/internal/pkg/errcode"
	"github.com/xxxsen/vocabnote/internal/pkg/response"
	"github.com/xxxsen/vocabnote/internal/service"
	"github.com/xxxsen/vocabnote/internal/session"
)

type AuthHandler struct {
	auth     *service.AuthService
	gate     *session.Gate
	sessions middleware.SessionStore
}

func NewAuthHandler(auth *service.AuthService, gate *session.Gate, sessions middleware.SessionStore) *AuthHandler {
	return &AuthHandler{auth: auth, gate: gate, sessions: sessions}
}

type credentialsRequest struct {
	UserID   string `json:"user_id" binding:"required,min=3,max=32,handle"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorStatus(c, http.StatusBadRequest, errcode.ErrInvalid, "user id must be 3-32 letters, digits, _ - or ., password 6-128 chars")
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	h.startSession(c, user.UserID)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalidCredentials, "user id or password mismatch")
		return
	}
	user, err := h.auth.Login(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	h.startSession(c, user.UserID)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c.Writer)
	response.Success(c, gin.H{})
}

func (h *AuthHandler) startSession(c *gin.Context, userID string) {
	if err := h.sessions.Save(c.Writer, h.gate.Start(userID)); err != nil {
		logutil.GetLogger(c.Request.Context()).Error("save session failed", zap.Error(err))
		response.ErrorStatus(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
		return
	}
	response.Success(c, gin.H{"user_id": userID})
}
