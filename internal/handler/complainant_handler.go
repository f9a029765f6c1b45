package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/murdoch-its/complaints-api/internal/models"
	"github.com/murdoch-its/complaints-api/internal/service"
	appErrors "github.com/murdoch-its/complaints-api/pkg/errors"
	"github.com/murdoch-its/complaints-api/pkg/response"
)

// ComplainantHandler exposes complainant endpoints.
type ComplainantHandler struct {
	complainants *service.ComplainantService
}

// NewComplainantHandler constructs ComplainantHandler.
func NewComplainantHandler(complainants *service.ComplainantService) *ComplainantHandler {
	return &ComplainantHandler{complainants: complainants}
}

// List godoc
// @Summary List complainants
// @Tags Complainants
// @Produce json
// @Param email query string false "Filter by email"
// @Param type query string false "Filter by type"
// @Param page query int false "Page"
// @Param perPage query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /complainants [get]
func (h *ComplainantHandler) List(c *gin.Context) {
	filter := models.ComplainantFilter{
		Email: strings.TrimSpace(c.Query("email")),
		Type:  c.Query("type"),
	}
	filter.Page, filter.PerPage = paginationParams(c)

	complainants, pagination, err := h.complainants.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complainants, pagination)
}

// Get godoc
// @Summary Get complainant detail
// @Tags Complainants
// @Produce json
// @Param id path string true "Complainant ID"
// @Success 200 {object} response.Envelope
// @Router /complainants/{id} [get]
func (h *ComplainantHandler) Get(c *gin.Context) {
	complainant, err := h.complainants.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complainant.Transform(), nil)
}

// Create godoc
// @Summary Register complainant
// @Tags Complainants
// @Accept json
// @Produce json
// @Param payload body service.CreateComplainantRequest true "Complainant payload"
// @Success 201 {object} response.Envelope
// @Router /complainants [post]
func (h *ComplainantHandler) Create(c *gin.Context) {
	var req service.CreateComplainantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	complainant, err := h.complainants.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, complainant.Transform())
}

// Update godoc
// @Summary Partially update complainant
// @Tags Complainants
// @Accept json
// @Produce json
// @Param id path string true "Complainant ID"
// @Param payload body service.UpdateComplainantRequest true "Complainant payload"
// @Success 200 {object} response.Envelope
// @Router /complainants/{id} [patch]
func (h *ComplainantHandler) Update(c *gin.Context) {
	var req service.UpdateComplainantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	complainant, err := h.complainants.Update(c.Request.Context(), c.Param("id"), req, actorRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complainant.Transform(), nil)
}

// Replace godoc
// @Summary Replace complainant
// @Tags Complainants
// @Accept json
// @Produce json
// @Param id path string true "Complainant ID"
// @Param payload body service.CreateComplainantRequest true "Complainant payload"
// @Success 200 {object} response.Envelope
// @Router /complainants/{id} [put]
func (h *ComplainantHandler) Replace(c *gin.Context) {
	var req service.CreateComplainantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	complainant, err := h.complainants.Replace(c.Request.Context(), c.Param("id"), req, actorRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complainant.Transform(), nil)
}

// Delete godoc
// @Summary Delete complainant
// @Tags Complainants
// @Param id path string true "Complainant ID"
// @Success 204
// @Router /complainants/{id} [delete]
func (h *ComplainantHandler) Delete(c *gin.Context) {
	if err := h.complainants.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
