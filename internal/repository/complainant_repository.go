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
	"github.com/murdoch-its/complaints-api/pkg/database"
)

const complainantColumns = "id, first_name, last_name, email, type, created_at, updated_at"

// ComplainantRepository provides database access for complainants.
type ComplainantRepository struct {
	db *sqlx.DB
}

// NewComplainantRepository creates a new instance of ComplainantRepository.
func NewComplainantRepository(db *sqlx.DB) *ComplainantRepository {
	return &ComplainantRepository{db: db}
}

// FindByID returns a complainant by identifier. A malformed identifier is
// indistinguishable from an absent row.
func (r *ComplainantRepository) FindByID(ctx context.Context, id string) (*models.Complainant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, sql.ErrNoRows
	}
	query := fmt.Sprintf("SELECT %s FROM complainants WHERE id = $1 LIMIT 1", complainantColumns)
	var complainant models.Complainant
	if err := r.db.GetContext(ctx, &complainant, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find complainant by id: %w", err)
	}
	return &complainant, nil
}

// List returns complainants matching the filter, newest first, with total count.
func (r *ComplainantRepository) List(ctx context.Context, filter models.ComplainantFilter) ([]models.Complainant, int, error) {
	baseQuery := "FROM complainants WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Email != "" {
		conditions = append(conditions, fmt.Sprintf("email = $%d", len(args)+1))
		args = append(args, filter.Email)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page, perPage := normalizePage(filter.Page, filter.PerPage)
	offset := perPage * (page - 1)

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", complainantColumns, baseQuery, perPage, offset)

	var complainants []models.Complainant
	if err := r.db.SelectContext(ctx, &complainants, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list complainants: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count complainants: %w", err)
	}

	return complainants, total, nil
}

// Create inserts a new complainant.
func (r *ComplainantRepository) Create(ctx context.Context, complainant *models.Complainant) error {
	if complainant.ID == "" {
		complainant.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if complainant.CreatedAt.IsZero() {
		complainant.CreatedAt = now
	}
	complainant.UpdatedAt = now

	const query = `INSERT INTO complainants (id, first_name, last_name, email, type, created_at, updated_at) VALUES (:id, :first_name, :last_name, :email, :type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, complainant); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create complainant: %w", err)
	}
	return nil
}

// Update persists the mutable fields of a complainant.
func (r *ComplainantRepository) Update(ctx context.Context, complainant *models.Complainant) error {
	complainant.UpdatedAt = time.Now().UTC()
	const query = `UPDATE complainants SET first_name = :first_name, last_name = :last_name, email = :email, type = :type, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, complainant); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update complainant: %w", err)
	}
	return nil
}

// Delete removes a complainant.
func (r *ComplainantRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM complainants WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete complainant: %w", err)
	}
	return nil
}
