package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murdoch-its/complaints-api/internal/models"
)

var ticketTestColumns = []string{
	"id", "title", "type", "category", "content", "suggestion", "complainant_email",
	"date_submitted", "submitted_year", "submitted_month", "submitted_week", "submitted_day",
	"date_closed", "closed_year", "closed_month", "closed_week", "closed_day",
	"status", "feedback_rate", "assigned_email", "severity_level",
	"report_name", "report_file_type", "report_path", "report_size",
	"email_option_type", "email_option_data", "created_at", "updated_at",
}

func ticketRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(ticketTestColumns).AddRow(
		"8c5f7a34-9a3e-4a0d-95a1-1d6cfb8a2222", "Broken projector", "student", "Stu1", "The projector in ECL2 is broken.", nil, "student@murdoch.edu.au",
		now, now.Year(), int(now.Month())-1, 0, int(now.Weekday()),
		nil, nil, nil, nil, nil,
		"pending", nil, nil, "low",
		nil, nil, nil, nil,
		"auto", nil, now, now,
	)
}

func TestTicketFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM tickets WHERE id = \\$1 LIMIT 1").
		WithArgs("8c5f7a34-9a3e-4a0d-95a1-1d6cfb8a2222").
		WillReturnRows(ticketRow(time.Now().UTC()))

	ticket, err := repo.FindByID(context.Background(), "8c5f7a34-9a3e-4a0d-95a1-1d6cfb8a2222")
	require.NoError(t, err)
	assert.Equal(t, "Broken projector", ticket.Title)
	assert.Equal(t, "pending", ticket.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketFindByIDMalformed(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	_, err := repo.FindByID(context.Background(), "42")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets WHERE 1=1 AND complainant_email = $1 AND category = $2 ORDER BY created_at DESC LIMIT 30 OFFSET 0")).
		WithArgs("student@murdoch.edu.au", "Stu1").
		WillReturnRows(ticketRow(time.Now().UTC()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tickets WHERE 1=1 AND complainant_email = $1 AND category = $2")).
		WithArgs("student@murdoch.edu.au", "Stu1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	tickets, total, err := repo.List(context.Background(), models.TicketFilter{
		ComplainantEmail: "student@murdoch.edu.au",
		Category:         "Stu1",
	})
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketFindByReportName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM tickets WHERE report_path = \\$1 LIMIT 1").
		WithArgs("missing.pdf").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByReportName(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketSetReport(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	mock.ExpectExec("UPDATE tickets SET report_name").
		WithArgs("8c5f7a34-9a3e-4a0d-95a1-1d6cfb8a2222", "evidence.pdf", "application/pdf", "stored-name.pdf", int64(2048), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetReport(context.Background(), "8c5f7a34-9a3e-4a0d-95a1-1d6cfb8a2222", models.Report{
		Name:     "evidence.pdf",
		FileType: "application/pdf",
		Path:     "stored-name.pdf",
		Size:     2048,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketCreateStampsTimestamps(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(1, 1))

	ticket := &models.Ticket{
		Title:           "Broken projector",
		Type:            models.ComplainantStudent,
		Category:        "Stu1",
		Content:         "The projector in ECL2 is broken.",
		Status:          models.DefaultTicketStatus,
		SeverityLevel:   models.DefaultSeverityLevel,
		EmailOptionType: models.DefaultEmailOption,
	}
	ticket.SetSubmitted(time.Now().UTC())

	require.NoError(t, repo.Create(context.Background(), ticket))
	assert.NotEmpty(t, ticket.ID)
	assert.False(t, ticket.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
