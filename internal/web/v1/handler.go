// Package v1 exposes the identity API over HTTP. It translates
// requests into logic-layer calls and maps sentinel errors to status
// codes; no business rules live here.
package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/identity-service/internal/logger"
	logicv1 "github.com/duynhne/identity-service/internal/logic/v1"
	"github.com/duynhne/identity-service/middleware"
)

// Handler groups HTTP handlers for the identity API v1.
// Dependencies are injected via the constructor — no global state.
type Handler struct {
	credentials *logicv1.CredentialService
	sessions    *logicv1.SessionService
	resetLinks  *logicv1.ResetLinkService
}

// NewHandler creates a new Handler.
func NewHandler(credentials *logicv1.CredentialService, sessions *logicv1.SessionService, resetLinks *logicv1.ResetLinkService) *Handler {
	return &Handler{
		credentials: credentials,
		sessions:    sessions,
		resetLinks:  resetLinks,
	}
}

// RegisterRoutes registers all identity API v1 routes on the given
// router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
	rg.GET("/auth/me", h.GetMe)
	rg.POST("/auth/verify", h.VerifySession)
	rg.POST("/auth/logout", h.Logout)
	rg.POST("/auth/password-reset", h.RequestPasswordReset)
	rg.PUT("/auth/password-reset", h.ConfirmPasswordReset)
	rg.PUT("/account/password", h.ChangePassword)
	rg.PUT("/account/email", h.ChangeEmail)
	rg.PUT("/account/name", h.ChangeName)
	rg.DELETE("/account", h.DeleteAccount)
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type resetRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type changeEmailRequest struct {
	NewEmail string `json:"new_email" binding:"required"`
}

type changeNameRequest struct {
	Name string `json:"name" binding:"required"`
}

type deleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// Register handles user registration.
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.credentials.AddUser(ctx, req.Email, req.Password, req.Name); err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Msg("Registration failed")

		switch {
		case errors.Is(err, logicv1.ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case errors.Is(err, logicv1.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
		case errors.Is(err, logicv1.ErrIncorrectName):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid name"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	log.Info().Msg("User registered")
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

// Login verifies credentials and returns a session token.
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.credentials.VerifyUser(ctx, req.Email, req.Password)
	if err != nil {
		span.RecordError(err)
		log.Error().Err(err).Msg("Login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if token == "" {
		// Unknown email and wrong password produce the same response.
		span.SetAttributes(attribute.Bool("auth.success", false))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	log.Info().Msg("Login successful")
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetMe returns the email and name bound to the presented session.
// GET /api/v1/auth/me
func (h *Handler) GetMe(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	email, ok := h.sessionEmail(c, ctx)
	if !ok {
		return
	}

	name, err := h.credentials.GetName(ctx, email)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, logicv1.ErrUserNotFound) {
			// Session outlived the user record.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		log.Error().Err(err).Msg("User lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"email": email, "name": name})
}

// VerifySession reports whether the presented token is active.
// POST /api/v1/auth/verify
func (h *Handler) VerifySession(c *gin.Context) {
	ctx := c.Request.Context()

	token, ok := bearerToken(c)
	if !ok {
		return
	}

	active, err := h.sessions.VerifySession(ctx, token)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("Session verification failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if !active {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Logout terminates the presented session. Terminating an already
// absent session still succeeds.
// POST /api/v1/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	token, ok := bearerToken(c)
	if !ok {
		return
	}

	if err := h.sessions.TerminateSession(ctx, token); err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("Logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// RequestPasswordReset mints a reset link and emails it.
// POST /api/v1/auth/password-reset
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resetLinks.SendResetLink(ctx, req.Email); err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Msg("Reset link request failed")

		if errors.Is(err, logicv1.ErrEmailNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "email not registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	log.Info().Msg("Reset link sent")
	c.JSON(http.StatusAccepted, gin.H{"status": "reset link sent"})
}

// ConfirmPasswordReset consumes a reset token and applies the new
// password.
// PUT /api/v1/auth/password-reset
func (h *Handler) ConfirmPasswordReset(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req resetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resetLinks.ResetPassword(ctx, req.Token, req.Password); err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Msg("Password reset failed")

		switch {
		case errors.Is(err, logicv1.ErrLinkNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid or expired reset token"})
		case errors.Is(err, logicv1.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "token did not match any user"})
		case errors.Is(err, logicv1.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid password"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	log.Info().Msg("Password reset applied")
	c.JSON(http.StatusOK, gin.H{"status": "password changed"})
}

// ChangePassword overwrites the password of the session's user.
// PUT /api/v1/account/password
func (h *Handler) ChangePassword(c *gin.Context) {
	ctx := c.Request.Context()

	email, ok := h.sessionEmail(c, ctx)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.credentials.ChangePassword(ctx, email, req.Password); err != nil {
		h.writeAccountError(c, ctx, err, "Password change failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "password changed"})
}

// ChangeEmail re-keys the session's user to a new email. The session
// itself stays bound to the email it was issued for.
// PUT /api/v1/account/email
func (h *Handler) ChangeEmail(c *gin.Context) {
	ctx := c.Request.Context()

	email, ok := h.sessionEmail(c, ctx)
	if !ok {
		return
	}

	var req changeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.credentials.ChangeEmail(ctx, email, req.NewEmail); err != nil {
		h.writeAccountError(c, ctx, err, "Email change failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "email changed"})
}

// ChangeName updates the display name of the session's user.
// PUT /api/v1/account/name
func (h *Handler) ChangeName(c *gin.Context) {
	ctx := c.Request.Context()

	email, ok := h.sessionEmail(c, ctx)
	if !ok {
		return
	}

	var req changeNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.credentials.ChangeName(ctx, email, req.Name); err != nil {
		h.writeAccountError(c, ctx, err, "Name change failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "name changed"})
}

// DeleteAccount removes the session's user after re-verifying the
// password, then terminates the session.
// DELETE /api/v1/account
func (h *Handler) DeleteAccount(c *gin.Context) {
	ctx := c.Request.Context()

	token, ok := bearerToken(c)
	if !ok {
		return
	}
	email, err := h.sessions.GetEmail(ctx, token)
	if err != nil {
		if errors.Is(err, logicv1.ErrNoSession) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		logger.FromContext(ctx).Error().Err(err).Msg("Session lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req deleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.credentials.DeleteUser(ctx, email, req.Password); err != nil {
		h.writeAccountError(c, ctx, err, "Account deletion failed")
		return
	}

	if err := h.sessions.TerminateSession(ctx, token); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Session cleanup after deletion failed")
	}

	c.Status(http.StatusNoContent)
}

// sessionEmail resolves the bearer token to the email it was issued
// for, writing the error response itself when the session is invalid.
func (h *Handler) sessionEmail(c *gin.Context, ctx context.Context) (string, bool) {
	token, ok := bearerToken(c)
	if !ok {
		return "", false
	}

	email, err := h.sessions.GetEmail(ctx, token)
	if err != nil {
		if errors.Is(err, logicv1.ErrNoSession) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return "", false
		}
		logger.FromContext(ctx).Error().Err(err).Msg("Session lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return "", false
	}
	return email, true
}

// writeAccountError maps the credential sentinels shared by the
// account endpoints onto responses.
func (h *Handler) writeAccountError(c *gin.Context, ctx context.Context, err error, msg string) {
	logger.FromContext(ctx).Warn().Err(err).Msg(msg)

	switch {
	case errors.Is(err, logicv1.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, logicv1.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, logicv1.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
	case errors.Is(err, logicv1.ErrIncorrectName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid name"})
	case errors.Is(err, logicv1.ErrInvalidPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid password"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bearerToken extracts the token from the Authorization header,
// writing a 401 when the header is missing or malformed.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
		return "", false
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) || len(authHeader) == len(bearerPrefix) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
		return "", false
	}
	return authHeader[len(bearerPrefix):], true
}
