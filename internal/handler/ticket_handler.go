package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/murdoch-its/complaints-api/internal/models"
	"github.com/murdoch-its/complaints-api/internal/service"
	appErrors "github.com/murdoch-its/complaints-api/pkg/errors"
	"github.com/murdoch-its/complaints-api/pkg/export"
	"github.com/murdoch-its/complaints-api/pkg/response"
)

// TicketHandler exposes complaint ticket endpoints.
type TicketHandler struct {
	tickets     *service.TicketService
	metrics     *service.MetricsService
	maxFileSize int64
}

// NewTicketHandler constructs TicketHandler.
func NewTicketHandler(tickets *service.TicketService, metrics *service.MetricsService, maxFileSize int64) *TicketHandler {
	return &TicketHandler{tickets: tickets, metrics: metrics, maxFileSize: maxFileSize}
}

// List godoc
// @Summary List tickets
// @Tags Tickets
// @Produce json
// @Param title query string false "Filter by title"
// @Param complainantEmail query string false "Filter by complainant email"
// @Param category query string false "Filter by category"
// @Param page query int false "Page"
// @Param perPage query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /tickets [get]
func (h *TicketHandler) List(c *gin.Context) {
	filter := models.TicketFilter{
		Title:            strings.TrimSpace(c.Query("title")),
		ComplainantEmail: strings.TrimSpace(c.Query("complainantEmail")),
		Category:         c.Query("category"),
	}
	filter.Page, filter.PerPage = paginationParams(c)

	tickets, pagination, err := h.tickets.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tickets, pagination)
}

// Get godoc
// @Summary Get ticket detail
// @Tags Tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} response.Envelope
// @Router /tickets/{id} [get]
func (h *TicketHandler) Get(c *gin.Context) {
	ticket, err := h.tickets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket.Transform(), nil)
}

// Create godoc
// @Summary Submit complaint ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Param payload body service.CreateTicketRequest true "Ticket payload"
// @Success 201 {object} response.Envelope
// @Router /tickets [post]
func (h *TicketHandler) Create(c *gin.Context) {
	var req service.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ticket, err := h.tickets.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordTicketCreated()
	response.Created(c, ticket.Transform())

	// The response is already written; confirmation delivery can no longer
	// affect the caller.
	h.tickets.NotifySubmitted(c.Request.Context(), ticket, req)
}

// Update godoc
// @Summary Partially update ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param payload body service.UpdateTicketRequest true "Ticket payload"
// @Success 200 {object} response.Envelope
// @Router /tickets/{id} [patch]
func (h *TicketHandler) Update(c *gin.Context) {
	var req service.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ticket, err := h.tickets.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket.Transform(), nil)
}

// Replace godoc
// @Summary Replace ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param payload body service.CreateTicketRequest true "Ticket payload"
// @Success 200 {object} response.Envelope
// @Router /tickets/{id} [put]
func (h *TicketHandler) Replace(c *gin.Context) {
	var req service.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ticket, err := h.tickets.Replace(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket.Transform(), nil)
}

// Delete godoc
// @Summary Delete ticket
// @Tags Tickets
// @Param id path string true "Ticket ID"
// @Success 204
// @Router /tickets/{id} [delete]
func (h *TicketHandler) Delete(c *gin.Context) {
	if err := h.tickets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Upload godoc
// @Summary Attach report file to ticket
// @Tags Tickets
// @Accept multipart/form-data
// @Produce json
// @Param ticketID path string true "Ticket ID"
// @Param file formData file true "Report file"
// @Success 200 {object} response.Envelope
// @Router /tickets/upload/{ticketID} [post]
func (h *TicketHandler) Upload(c *gin.Context) {
	if h.maxFileSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing report file"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable report file"))
		return
	}
	defer file.Close() //nolint:errcheck

	ticket, err := h.tickets.AttachReport(c.Request.Context(), c.Param("ticketID"),
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket.Transform(), nil)
}

// Download godoc
// @Summary Download report file
// @Tags Tickets
// @Produce octet-stream
// @Param filename path string true "Stored report filename"
// @Success 200
// @Router /tickets/upload/{filename} [get]
func (h *TicketHandler) Download(c *gin.Context) {
	download, err := h.tickets.OpenReport(c.Request.Context(), c.Param("filename"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat report"))
		return
	}

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", download.Filename),
	}
	c.DataFromReader(http.StatusOK, info.Size(), download.FileType, download.File, extraHeaders)
}

// Export godoc
// @Summary Export filtered tickets
// @Tags Tickets
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Success 200
// @Router /tickets/export [get]
func (h *TicketHandler) Export(c *gin.Context) {
	filter := models.TicketFilter{
		Title:            strings.TrimSpace(c.Query("title")),
		ComplainantEmail: strings.TrimSpace(c.Query("complainantEmail")),
		Category:         c.Query("category"),
	}
	filter.Page, filter.PerPage = paginationParams(c)

	dataset, err := h.tickets.ExportDataset(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	var payload []byte
	var contentType string
	switch format {
	case "csv":
		payload, err = export.NewCSVExporter().Render(dataset)
		contentType = "text/csv"
	case "pdf":
		payload, err = export.NewPDFExporter().Render(dataset, "Complaint Tickets")
		contentType = "application/pdf"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported export format"))
		return
	}
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "tickets."+format))
	c.Data(http.StatusOK, contentType, payload)
}
