package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/murdoch-its/complaints-api/internal/models"
)

const ticketColumns = `id, title, type, category, content, suggestion, complainant_email,
	date_submitted, submitted_year, submitted_month, submitted_week, submitted_day,
	date_closed, closed_year, closed_month, closed_week, closed_day,
	status, feedback_rate, assigned_email, severity_level,
	report_name, report_file_type, report_path, report_size,
	email_option_type, email_option_data, created_at, updated_at`

// TicketRepository provides database access for complaint tickets.
type TicketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository creates a new instance of TicketRepository.
func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// FindByID returns a ticket by identifier. A malformed identifier is
// indistinguishable from an absent row.
func (r *TicketRepository) FindByID(ctx context.Context, id string) (*models.Ticket, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, sql.ErrNoRows
	}
	query := fmt.Sprintf("SELECT %s FROM tickets WHERE id = $1 LIMIT 1", ticketColumns)
	var ticket models.Ticket
	if err := r.db.GetContext(ctx, &ticket, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find ticket by id: %w", err)
	}
	return &ticket, nil
}

// FindByReportName returns the ticket holding the given stored report file.
func (r *TicketRepository) FindByReportName(ctx context.Context, filename string) (*models.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM tickets WHERE report_path = $1 LIMIT 1", ticketColumns)
	var ticket models.Ticket
	if err := r.db.GetContext(ctx, &ticket, query, filename); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find ticket by report: %w", err)
	}
	return &ticket, nil
}

// List returns tickets matching the filter, newest first, with total count.
func (r *TicketRepository) List(ctx context.Context, filter models.TicketFilter) ([]models.Ticket, int, error) {
	baseQuery := "FROM tickets WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Title != "" {
		conditions = append(conditions, fmt.Sprintf("title = $%d", len(args)+1))
		args = append(args, filter.Title)
	}
	if filter.ComplainantEmail != "" {
		conditions = append(conditions, fmt.Sprintf("complainant_email = $%d", len(args)+1))
		args = append(args, filter.ComplainantEmail)
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page, perPage := normalizePage(filter.Page, filter.PerPage)
	offset := perPage * (page - 1)

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", ticketColumns, baseQuery, perPage, offset)

	var tickets []models.Ticket
	if err := r.db.SelectContext(ctx, &tickets, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	return tickets, total, nil
}

// Create inserts a new ticket.
func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	ticket.UpdatedAt = now

	const query = `INSERT INTO tickets (id, title, type, category, content, suggestion, complainant_email,
		date_submitted, submitted_year, submitted_month, submitted_week, submitted_day,
		status, feedback_rate, assigned_email, severity_level,
		email_option_type, email_option_data, created_at, updated_at)
		VALUES (:id, :title, :type, :category, :content, :suggestion, :complainant_email,
		:date_submitted, :submitted_year, :submitted_month, :submitted_week, :submitted_day,
		:status, :feedback_rate, :assigned_email, :severity_level,
		:email_option_type, :email_option_data, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, ticket); err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

// Update persists the mutable fields of a ticket.
func (r *TicketRepository) Update(ctx context.Context, ticket *models.Ticket) error {
	ticket.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tickets SET title = :title, type = :type, category = :category, content = :content,
		suggestion = :suggestion, complainant_email = :complainant_email,
		date_closed = :date_closed, closed_year = :closed_year, closed_month = :closed_month,
		closed_week = :closed_week, closed_day = :closed_day,
		status = :status, feedback_rate = :feedback_rate, assigned_email = :assigned_email,
		severity_level = :severity_level, email_option_type = :email_option_type,
		email_option_data = :email_option_data, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, ticket); err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	return nil
}

// SetReport records an uploaded attachment on a ticket.
func (r *TicketRepository) SetReport(ctx context.Context, id string, report models.Report) error {
	const query = `UPDATE tickets SET report_name = $2, report_file_type = $3, report_path = $4, report_size = $5, updated_at = $6 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, report.Name, report.FileType, report.Path, report.Size, time.Now().UTC()); err != nil {
		return fmt.Errorf("set ticket report: %w", err)
	}
	return nil
}

// Delete removes a ticket.
func (r *TicketRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tickets WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	return nil
}
