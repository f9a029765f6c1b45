package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/murdoch-its/complaints-api/internal/models"
	"github.com/murdoch-its/complaints-api/internal/repository"
	appErrors "github.com/murdoch-its/complaints-api/pkg/errors"
)

type accountRepository interface {
	List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
}

// CreateAccountRequest represents payload for creating staff accounts.
type CreateAccountRequest struct {
	Name       string             `json:"name" validate:"required"`
	Email      string             `json:"email" validate:"required,email"`
	Role       models.AccountRole `json:"role" validate:"required,oneof=admin investigator"`
	Department *string            `json:"department"`
}

// UpdateAccountRequest is a partial-update payload; nil fields are left alone.
type UpdateAccountRequest struct {
	Name       *string             `json:"name"`
	Email      *string             `json:"email" validate:"omitempty,email"`
	Role       *models.AccountRole `json:"role" validate:"omitempty,oneof=admin investigator"`
	Department *string             `json:"department"`
}

// AccountService handles staff account workflows.
type AccountService struct {
	repo      accountRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAccountService creates an instance of AccountService.
func NewAccountService(repo accountRepository, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AccountService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated accounts and pagination metadata.
func (s *AccountService) List(ctx context.Context, filter models.AccountFilter) ([]models.AccountView, *models.Pagination, error) {
	accounts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list accounts")
	}

	views := make([]models.AccountView, 0, len(accounts))
	for i := range accounts {
		views = append(views, accounts[i].Transform())
	}

	return views, paginationMeta(filter.Page, filter.PerPage, total), nil
}

// Get returns an account by ID.
func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	return account, nil
}

// Create adds a new staff account.
func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) (*models.Account, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create account payload")
	}

	account := &models.Account{
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Department: req.Department,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, translateDuplicate(err, "failed to create account")
	}

	return account, nil
}

// Update merges the payload onto the stored account. Non-admin actors cannot
// change the role field; it is dropped from their payload before the merge.
func (s *AccountService) Update(ctx context.Context, id string, req UpdateAccountRequest, actor models.AccountRole) (*models.Account, error) {
	if req.Email != nil {
		normalized := normalizeEmail(*req.Email)
		req.Email = &normalized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canAssignRole(actor) {
		req.Role = nil
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Email != nil {
		account.Email = *req.Email
	}
	if req.Role != nil {
		account.Role = *req.Role
	}
	if req.Department != nil {
		account.Department = req.Department
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, translateDuplicate(err, "failed to update account")
	}

	return account, nil
}

// Replace overwrites the stored account with the payload and returns the
// re-read result. The role privilege rule matches Update.
func (s *AccountService) Replace(ctx context.Context, id string, req CreateAccountRequest, actor models.AccountRole) (*models.Account, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid replace payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	role := existing.Role
	if canAssignRole(actor) {
		role = req.Role
	}

	replacement := &models.Account{
		ID:         existing.ID,
		Name:       req.Name,
		Email:      req.Email,
		Role:       role,
		Department: req.Department,
		CreatedAt:  existing.CreatedAt,
	}

	if err := s.repo.Update(ctx, replacement); err != nil {
		return nil, translateDuplicate(err, "failed to replace account")
	}

	return s.Get(ctx, id)
}

// Delete removes an account.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete account")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func translateDuplicate(err error, fallback string) error {
	if errors.Is(err, repository.ErrDuplicateKey) {
		conflict := appErrors.Clone(appErrors.ErrConflict, "validation error")
		return appErrors.WithDetails(conflict, appErrors.FieldError{
			Field:   "email",
			Message: `"email" already exists`,
		})
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fallback)
}

func paginationMeta(page, perPage, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 30
	}
	return &models.Pagination{Page: page, PerPage: perPage, TotalCount: total}
}
