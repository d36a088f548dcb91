package http

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tazhibayda/account-service/internal/avatar"
	"github.com/tazhibayda/account-service/internal/log"
	"github.com/tazhibayda/account-service/internal/orders"
	"github.com/tazhibayda/account-service/internal/service"
)

const maxAvatarSize = 5 << 20 // 5MB

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Accounts *service.Account
	Orders   *orders.Client
	Health   Pinger
	Limiter  Limiter
	TmpDir   string
}

func NewHandler(accounts *service.Account, ordersClient *orders.Client, health Pinger, limiter Limiter, tmpDir string) *Handler {
	return &Handler{
		Accounts: accounts,
		Orders:   ordersClient,
		Health:   health,
		Limiter:  limiter,
		TmpDir:   tmpDir,
	}
}

// writeErr maps service error kinds to transport codes. Anything
// unclassified is a 500.
func writeErr(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": service.ErrConflict.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrUnauthorized.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFound.Error()})
	case errors.Is(err, service.ErrAlreadyVerified):
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrAlreadyVerified.Error()})
	default:
		log.Errorf("internal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type signupReq struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Subscription string `json:"subscription"`
}

// Signup godoc
// @Summary Register a new account
// @Tags users
// @Accept json
// @Produce json
// @Param payload body signupReq true "signup"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/users/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var in signupReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := h.Accounts.Signup(c.Request.Context(), service.SignupInput{
		Email:        in.Email,
		Password:     in.Password,
		Subscription: in.Subscription,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": gin.H{
		"email":        u.Email,
		"subscription": u.Subscription,
		"avatarURL":    u.AvatarURL,
	}})
}

// Verify godoc
// @Summary Confirm email by verification token
// @Tags users
// @Produce json
// @Param token path string true "verification token"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/users/verify/{token} [get]
func (h *Handler) Verify(c *gin.Context) {
	if err := h.Accounts.Verify(c.Request.Context(), c.Param("token")); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification successful"})
}

type resendReq struct {
	Email string `json:"email"`
}

// ResendVerification godoc
// @Summary Re-send the verification email
// @Tags users
// @Accept json
// @Produce json
// @Param payload body resendReq true "email"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/users/verify [post]
func (h *Handler) ResendVerification(c *gin.Context) {
	var in resendReq
	// a malformed body is the same 400 as an unknown email
	_ = c.ShouldBindJSON(&in)
	if err := h.Accounts.ResendVerification(c.Request.Context(), in.Email); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent"})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Login
// @Tags users
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	tok, err := h.Accounts.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok})
}

// Logout godoc
// @Summary Logout
// @Tags users
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} map[string]string
// @Router /api/users/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if err := h.Accounts.Logout(c.Request.Context(), authUID(c)); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Current godoc
// @Summary Current user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/users/current [get]
func (h *Handler) Current(c *gin.Context) {
	u, err := h.Accounts.Current(c.Request.Context(), authUID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": u.Email, "subscription": u.Subscription})
}

type subscriptionReq struct {
	Subscription string `json:"subscription"`
}

// UpdateSubscription godoc
// @Summary Change subscription plan
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body subscriptionReq true "subscription"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /api/users/ [patch]
func (h *Handler) UpdateSubscription(c *gin.Context) {
	var in subscriptionReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := h.Accounts.UpdateSubscription(c.Request.Context(), authUID(c), in.Subscription)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"email":        u.Email,
		"subscription": u.Subscription,
	}})
}

// UpdateAvatar godoc
// @Summary Upload and resize the profile avatar
// @Tags users
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param avatar formData file true "image (jpg/jpeg/png/webp, max 5MB)"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/users/avatars [patch]
func (h *Handler) UpdateAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}
	if !avatar.AllowedExt(file.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only jpg/jpeg/png/webp allowed"})
		return
	}
	if file.Size > maxAvatarSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}

	filename := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	tmpPath := filepath.Join(h.TmpDir, filename)
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		log.Errorf("save upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	url, err := h.Accounts.UpdateAvatar(c.Request.Context(), authUID(c), tmpPath, filename)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatarURL": url})
}

type orderReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Color string `json:"color"`
}

// CreateOrder godoc
// @Summary Proxy an order to the upstream CRM
// @Tags orders
// @Accept json
// @Produce json
// @Param payload body orderReq true "order"
// @Success 201 {object} map[string]any
// @Failure 502 {object} map[string]string
// @Router /api/orders [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	var in orderReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	status, body, err := h.Orders.Create(c.Request.Context(), orders.CreateRequest{
		Name:  in.Name,
		Phone: in.Phone,
		Color: in.Color,
	})
	if err != nil {
		log.Errorf("order proxy: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "order api unavailable"})
		return
	}
	if status >= 300 {
		c.Data(status, "application/json", body)
		return
	}
	c.Data(http.StatusCreated, "application/json", body)
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Health.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
