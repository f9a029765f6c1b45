package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/murdoch-its/complaints-api/internal/models"
	"github.com/murdoch-its/complaints-api/internal/service"
	appErrors "github.com/murdoch-its/complaints-api/pkg/errors"
	"github.com/murdoch-its/complaints-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
	metrics *service.MetricsService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, metrics *service.MetricsService) *AuthHandler {
	return &AuthHandler{service: svc, metrics: metrics}
}

// Login godoc
// @Summary Request one-time login code
// @Description Mails a one-time code to a registered account email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	if err := h.service.RequestCode(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, true, nil)
}

// Confirm godoc
// @Summary Confirm one-time login code
// @Description Exchanges a mailed code for a bearer token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.ConfirmRequest true "Confirm payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login/confirm [post]
func (h *AuthHandler) Confirm(c *gin.Context) {
	var req models.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid confirm payload"))
		return
	}

	res, err := h.service.ConfirmCode(c.Request.Context(), req)
	if err != nil {
		h.metrics.RecordLoginOutcome(false)
		response.Error(c, err)
		return
	}

	h.metrics.RecordLoginOutcome(true)
	response.JSON(c, http.StatusOK, res, nil)
}
