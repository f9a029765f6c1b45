package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/murdoch-its/complaints-api/internal/models"
	"github.com/murdoch-its/complaints-api/internal/service"
	appErrors "github.com/murdoch-its/complaints-api/pkg/errors"
	"github.com/murdoch-its/complaints-api/pkg/response"
)

// AccountHandler exposes staff account endpoints.
type AccountHandler struct {
	accounts *service.AccountService
}

// NewAccountHandler constructs AccountHandler.
func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// List godoc
// @Summary List accounts
// @Tags Accounts
// @Produce json
// @Param name query string false "Filter by name"
// @Param email query string false "Filter by email"
// @Param role query string false "Filter by role"
// @Param department query string false "Filter by department"
// @Param page query int false "Page"
// @Param perPage query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	filter := models.AccountFilter{
		Name:       strings.TrimSpace(c.Query("name")),
		Email:      strings.TrimSpace(c.Query("email")),
		Role:       c.Query("role"),
		Department: c.Query("department"),
	}
	filter.Page, filter.PerPage = paginationParams(c)

	accounts, pagination, err := h.accounts.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, accounts, pagination)
}

// Get godoc
// @Summary Get account detail
// @Tags Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} response.Envelope
// @Router /accounts/{id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	account, err := h.accounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account.Transform(), nil)
}

// Create godoc
// @Summary Create account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param payload body service.CreateAccountRequest true "Account payload"
// @Success 201 {object} response.Envelope
// @Router /accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var req service.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	account, err := h.accounts.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, account.Transform())
}

// Update godoc
// @Summary Partially update account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param payload body service.UpdateAccountRequest true "Account payload"
// @Success 200 {object} response.Envelope
// @Router /accounts/{id} [patch]
func (h *AccountHandler) Update(c *gin.Context) {
	var req service.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	account, err := h.accounts.Update(c.Request.Context(), c.Param("id"), req, actorRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account.Transform(), nil)
}

// Replace godoc
// @Summary Replace account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param payload body service.CreateAccountRequest true "Account payload"
// @Success 200 {object} response.Envelope
// @Router /accounts/{id} [put]
func (h *AccountHandler) Replace(c *gin.Context) {
	var req service.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	account, err := h.accounts.Replace(c.Request.Context(), c.Param("id"), req, actorRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account.Transform(), nil)
}

// Delete godoc
// @Summary Delete account
// @Tags Accounts
// @Param id path string true "Account ID"
// @Success 204
// @Router /accounts/{id} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	if err := h.accounts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func paginationParams(c *gin.Context) (page, perPage int) {
	page = 1
	perPage = 30
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("perPage", "30")); err == nil {
		perPage = v
	}
	return page, perPage
}
