package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murdoch-its/complaints-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func accountRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "role", "department", "created_at", "updated_at"}).
		AddRow("6f1f3f2a-7a86-4a7e-9a66-df33f2f4a111", "Jane Admin", "jane@murdoch.edu.au", string(models.RoleAdmin), nil, now, now)
}

func TestAccountFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, role, department, created_at, updated_at FROM accounts WHERE email = $1 LIMIT 1")).
		WithArgs("jane@murdoch.edu.au").
		WillReturnRows(accountRows(time.Now()))

	account, err := repo.FindByEmail(context.Background(), "jane@murdoch.edu.au")
	require.NoError(t, err)
	assert.Equal(t, "jane@murdoch.edu.au", account.Email)
	assert.Equal(t, models.RoleAdmin, account.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountFindByIDMalformed(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	_, err := repo.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountListPagination(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, role, department, created_at, updated_at FROM accounts WHERE 1=1 AND role = $1 ORDER BY created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs(string(models.RoleAdmin)).
		WillReturnRows(accountRows(time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM accounts WHERE 1=1 AND role = $1")).
		WithArgs(string(models.RoleAdmin)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	accounts, total, err := repo.List(context.Background(), models.AccountFilter{Role: string(models.RoleAdmin), Page: 2, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountListDefaultsPagination(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT 30 OFFSET 0")).
		WillReturnRows(accountRows(time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM accounts WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.AccountFilter{Page: 0, PerPage: 500})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO accounts").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "accounts_email_key"})

	err := repo.Create(context.Background(), &models.Account{Name: "Jane", Email: "jane@murdoch.edu.au", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO accounts").WillReturnResult(sqlmock.NewResult(1, 1))

	account := &models.Account{Name: "Jane", Email: "jane@murdoch.edu.au", Role: models.RoleAdmin}
	require.NoError(t, repo.Create(context.Background(), account))
	assert.NotEmpty(t, account.ID)
	assert.False(t, account.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
