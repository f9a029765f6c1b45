package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/murdoch-its/complaints-api/internal/mailer"
	"github.com/murdoch-its/complaints-api/internal/models"
	appErrors "github.com/murdoch-its/complaints-api/pkg/errors"
	"github.com/murdoch-its/complaints-api/pkg/export"
)

type ticketRepository interface {
	List(ctx context.Context, filter models.TicketFilter) ([]models.Ticket, int, error)
	FindByID(ctx context.Context, id string) (*models.Ticket, error)
	FindByReportName(ctx context.Context, filename string) (*models.Ticket, error)
	Create(ctx context.Context, ticket *models.Ticket) error
	Update(ctx context.Context, ticket *models.Ticket) error
	SetReport(ctx context.Context, id string, report models.Report) error
	Delete(ctx context.Context, id string) error
}

type reportStorage interface {
	SaveStream(filename string, r io.Reader) (int64, error)
	Open(filename string) (*os.File, error)
	Path(filename string) string
}

// CreateTicketRequest represents a complaint submission. FirstName and Email
// identify the submitter for the confirmation message only; they are not
// ticket fields.
type CreateTicketRequest struct {
	Title            string                 `json:"title" validate:"required"`
	Type             models.ComplainantType `json:"type" validate:"required,oneof=staff student public anonymous"`
	Category         string                 `json:"category" validate:"required"`
	Content          string                 `json:"content" validate:"required"`
	Suggestion       *string                `json:"suggestion"`
	ComplainantEmail *string                `json:"complainantEmail" validate:"omitempty,email"`
	SeverityLevel    string                 `json:"severityLevel"`
	EmailOption      *models.EmailOption    `json:"emailOption"`
	FirstName        string                 `json:"firstName"`
	Email            string                 `json:"email" validate:"omitempty,email"`
}

// UpdateTicketRequest is a partial-update payload; nil fields are left alone.
type UpdateTicketRequest struct {
	Title            *string                 `json:"title"`
	Type             *models.ComplainantType `json:"type" validate:"omitempty,oneof=staff student public anonymous"`
	Category         *string                 `json:"category"`
	Content          *string                 `json:"content"`
	Suggestion       *string                 `json:"suggestion"`
	ComplainantEmail *string                 `json:"complainantEmail" validate:"omitempty,email"`
	Status           *string                 `json:"status"`
	FeedbackRate     *int                    `json:"feedbackRate" validate:"omitempty,min=0,max=5"`
	AssignedEmail    *string                 `json:"assignedEmail" validate:"omitempty,email"`
	SeverityLevel    *string                 `json:"severityLevel"`
	EmailOption      *models.EmailOption     `json:"emailOption"`
}

// TicketService handles complaint ticket workflows.
type TicketService struct {
	repo      ticketRepository
	storage   reportStorage
	notifier  mailer.Notifier
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTicketService creates an instance of TicketService.
func NewTicketService(repo ticketRepository, storage reportStorage, notifier mailer.Notifier, validate *validator.Validate, logger *zap.Logger) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TicketService{
		repo:      repo,
		storage:   storage,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns paginated ticket views and pagination metadata.
func (s *TicketService) List(ctx context.Context, filter models.TicketFilter) ([]models.TicketView, *models.Pagination, error) {
	tickets, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tickets")
	}

	views := make([]models.TicketView, 0, len(tickets))
	for i := range tickets {
		views = append(views, tickets[i].Transform())
	}

	return views, paginationMeta(filter.Page, filter.PerPage, total), nil
}

// Get returns a ticket by ID.
func (s *TicketService) Get(ctx context.Context, id string) (*models.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ticket does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ticket")
	}
	return ticket, nil
}

// Create persists a new complaint ticket with its submission timestamp
// decomposition and lifecycle defaults.
func (s *TicketService) Create(ctx context.Context, req CreateTicketRequest) (*models.Ticket, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create ticket payload")
	}

	ticket := &models.Ticket{
		Title:            req.Title,
		Type:             req.Type,
		Category:         req.Category,
		Content:          req.Content,
		Suggestion:       req.Suggestion,
		ComplainantEmail: req.ComplainantEmail,
		Status:           models.DefaultTicketStatus,
		SeverityLevel:    models.DefaultSeverityLevel,
		EmailOptionType:  models.DefaultEmailOption,
	}
	if req.SeverityLevel != "" {
		ticket.SeverityLevel = req.SeverityLevel
	}
	if req.EmailOption != nil {
		if req.EmailOption.Type != "" {
			ticket.EmailOptionType = req.EmailOption.Type
		}
		ticket.EmailOptionData = req.EmailOption.Data
	}
	ticket.SetSubmitted(s.now().UTC())

	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create ticket")
	}

	return ticket, nil
}

// NotifySubmitted dispatches the submission confirmation email. Best effort:
// failures are logged and never surfaced, so the already-written HTTP
// response is unaffected.
func (s *TicketService) NotifySubmitted(ctx context.Context, ticket *models.Ticket, req CreateTicketRequest) {
	if s.notifier == nil || req.Email == "" {
		return
	}

	suggestion := ""
	if ticket.Suggestion != nil {
		suggestion = *ticket.Suggestion
	}

	err := s.notifier.SendTicketConfirmation(ctx, mailer.TicketConfirmation{
		FirstName:     req.FirstName,
		Email:         req.Email,
		TicketID:      ticket.ID,
		Title:         ticket.Title,
		Category:      ticket.Category,
		Content:       ticket.Content,
		SeverityLevel: ticket.SeverityLevel,
		Suggestion:    suggestion,
	})
	if err != nil {
		s.logger.Warn("failed to dispatch ticket confirmation",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}

// Update merges the payload onto the stored ticket. Moving the status to a
// closed value stamps dateClosed and its decomposition.
func (s *TicketService) Update(ctx context.Context, id string, req UpdateTicketRequest) (*models.Ticket, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		ticket.Title = *req.Title
	}
	if req.Type != nil {
		ticket.Type = *req.Type
	}
	if req.Category != nil {
		ticket.Category = *req.Category
	}
	if req.Content != nil {
		ticket.Content = *req.Content
	}
	if req.Suggestion != nil {
		ticket.Suggestion = req.Suggestion
	}
	if req.ComplainantEmail != nil {
		ticket.ComplainantEmail = req.ComplainantEmail
	}
	if req.Status != nil {
		ticket.Status = *req.Status
		if isClosedStatus(*req.Status) && ticket.DateClosed == nil {
			ticket.SetClosed(s.now().UTC())
		}
	}
	if req.FeedbackRate != nil {
		ticket.FeedbackRate = req.FeedbackRate
	}
	if req.AssignedEmail != nil {
		ticket.AssignedEmail = req.AssignedEmail
	}
	if req.SeverityLevel != nil {
		ticket.SeverityLevel = *req.SeverityLevel
	}
	if req.EmailOption != nil {
		if req.EmailOption.Type != "" {
			ticket.EmailOptionType = req.EmailOption.Type
		}
		ticket.EmailOptionData = req.EmailOption.Data
	}

	if err := s.repo.Update(ctx, ticket); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update ticket")
	}

	return ticket, nil
}

// Replace overwrites the mutable ticket fields with the payload and returns
// the re-read result. Submission stamps and any attached report survive the
// overwrite.
func (s *TicketService) Replace(ctx context.Context, id string, req CreateTicketRequest) (*models.Ticket, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid replace payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Title = req.Title
	existing.Type = req.Type
	existing.Category = req.Category
	existing.Content = req.Content
	existing.Suggestion = req.Suggestion
	existing.ComplainantEmail = req.ComplainantEmail
	existing.SeverityLevel = models.DefaultSeverityLevel
	if req.SeverityLevel != "" {
		existing.SeverityLevel = req.SeverityLevel
	}
	existing.EmailOptionType = models.DefaultEmailOption
	existing.EmailOptionData = nil
	if req.EmailOption != nil {
		if req.EmailOption.Type != "" {
			existing.EmailOptionType = req.EmailOption.Type
		}
		existing.EmailOptionData = req.EmailOption.Data
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace ticket")
	}

	return s.Get(ctx, id)
}

// Delete removes a ticket.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete ticket")
	}
	return nil
}

// AttachReport stores an uploaded file and records it on the ticket. The
// stored filename is server-generated; the original name survives as
// metadata only.
func (s *TicketService) AttachReport(ctx context.Context, ticketID, originalName, contentType string, r io.Reader) (*models.Ticket, error) {
	ticket, err := s.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	storedName := uuid.NewString() + filepath.Ext(originalName)
	size, err := s.storage.SaveStream(storedName, r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report file")
	}

	report := models.Report{
		Name:     originalName,
		FileType: contentType,
		Path:     storedName,
		Size:     size,
	}
	if err := s.repo.SetReport(ctx, ticket.ID, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record report")
	}

	ticket.ReportName = &report.Name
	ticket.ReportFileType = &report.FileType
	ticket.ReportPath = &report.Path
	ticket.ReportSize = &report.Size
	return ticket, nil
}

// ReportDownload couples an open file handle with its serving metadata.
type ReportDownload struct {
	File     *os.File
	Filename string
	FileType string
}

// OpenReport resolves a stored report filename to a download. Unknown
// filenames map to not found.
func (s *TicketService) OpenReport(ctx context.Context, filename string) (*ReportDownload, error) {
	ticket, err := s.repo.FindByReportName(ctx, filename)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve report")
	}

	file, err := s.storage.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report")
	}

	download := &ReportDownload{File: file, Filename: filename, FileType: "application/octet-stream"}
	if ticket.ReportName != nil {
		download.Filename = *ticket.ReportName
	}
	if ticket.ReportFileType != nil {
		download.FileType = *ticket.ReportFileType
	}
	return download, nil
}

// ExportDataset flattens the tickets matching the filter into a tabular
// dataset for CSV/PDF rendering.
func (s *TicketService) ExportDataset(ctx context.Context, filter models.TicketFilter) (export.Dataset, error) {
	tickets, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tickets for export")
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Title", "Type", "Category", "Status", "Severity", "Assigned", "Submitted"},
		Rows:    make([]map[string]string, 0, len(tickets)),
	}
	for i := range tickets {
		t := &tickets[i]
		assigned := ""
		if t.AssignedEmail != nil {
			assigned = *t.AssignedEmail
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":        t.ID,
			"Title":     t.Title,
			"Type":      string(t.Type),
			"Category":  t.Category,
			"Status":    t.Status,
			"Severity":  t.SeverityLevel,
			"Assigned":  assigned,
			"Submitted": t.DateSubmitted.Format(time.RFC3339),
		})
	}
	return dataset, nil
}

func isClosedStatus(status string) bool {
	return status == models.TicketStatusClosed || status == models.TicketStatusResolved
}
