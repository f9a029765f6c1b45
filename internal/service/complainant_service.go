package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/murdoch-its/complaints-api/internal/models"
	appErrors "github.com/murdoch-its/complaints-api/pkg/errors"
)

type complainantRepository interface {
	List(ctx context.Context, filter models.ComplainantFilter) ([]models.Complainant, int, error)
	FindByID(ctx context.Context, id string) (*models.Complainant, error)
	Create(ctx context.Context, complainant *models.Complainant) error
	Update(ctx context.Context, complainant *models.Complainant) error
	Delete(ctx context.Context, id string) error
}

// CreateComplainantRequest represents payload for registering complainants.
type CreateComplainantRequest struct {
	FirstName string                  `json:"firstName" validate:"required"`
	LastName  string                  `json:"lastName" validate:"required"`
	Email     string                  `json:"email" validate:"required,email"`
	Type      *models.ComplainantType `json:"type" validate:"omitempty,oneof=staff student public anonymous"`
}

// UpdateComplainantRequest is a partial-update payload; nil fields are left alone.
type UpdateComplainantRequest struct {
	FirstName *string                 `json:"firstName"`
	LastName  *string                 `json:"lastName"`
	Email     *string                 `json:"email" validate:"omitempty,email"`
	Type      *models.ComplainantType `json:"type" validate:"omitempty,oneof=staff student public anonymous"`
}

// ComplainantService handles complainant workflows.
type ComplainantService struct {
	repo      complainantRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewComplainantService creates an instance of ComplainantService.
func NewComplainantService(repo complainantRepository, validate *validator.Validate, logger *zap.Logger) *ComplainantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ComplainantService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated complainants and pagination metadata.
func (s *ComplainantService) List(ctx context.Context, filter models.ComplainantFilter) ([]models.ComplainantView, *models.Pagination, error) {
	complainants, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complainants")
	}

	views := make([]models.ComplainantView, 0, len(complainants))
	for i := range complainants {
		views = append(views, complainants[i].Transform())
	}

	return views, paginationMeta(filter.Page, filter.PerPage, total), nil
}

// Get returns a complainant by ID.
func (s *ComplainantService) Get(ctx context.Context, id string) (*models.Complainant, error) {
	complainant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complainant does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complainant")
	}
	return complainant, nil
}

// Create registers a new complainant.
func (s *ComplainantService) Create(ctx context.Context, req CreateComplainantRequest) (*models.Complainant, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create complainant payload")
	}

	complainant := &models.Complainant{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Type:      req.Type,
	}

	if err := s.repo.Create(ctx, complainant); err != nil {
		return nil, translateDuplicate(err, "failed to create complainant")
	}

	return complainant, nil
}

// Update merges the payload onto the stored complainant. Non-admin actors
// cannot change the type field; it is dropped from their payload before the
// merge.
func (s *ComplainantService) Update(ctx context.Context, id string, req UpdateComplainantRequest, actor models.AccountRole) (*models.Complainant, error) {
	if req.Email != nil {
		normalized := normalizeEmail(*req.Email)
		req.Email = &normalized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	complainant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canAssignRole(actor) {
		req.Type = nil
	}

	if req.FirstName != nil {
		complainant.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		complainant.LastName = *req.LastName
	}
	if req.Email != nil {
		complainant.Email = *req.Email
	}
	if req.Type != nil {
		complainant.Type = req.Type
	}

	if err := s.repo.Update(ctx, complainant); err != nil {
		return nil, translateDuplicate(err, "failed to update complainant")
	}

	return complainant, nil
}

// Replace overwrites the stored complainant with the payload and returns the
// re-read result. The type privilege rule matches Update.
func (s *ComplainantService) Replace(ctx context.Context, id string, req CreateComplainantRequest, actor models.AccountRole) (*models.Complainant, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid replace payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	complainantType := existing.Type
	if canAssignRole(actor) {
		complainantType = req.Type
	}

	replacement := &models.Complainant{
		ID:        existing.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Type:      complainantType,
		CreatedAt: existing.CreatedAt,
	}

	if err := s.repo.Update(ctx, replacement); err != nil {
		return nil, translateDuplicate(err, "failed to replace complainant")
	}

	return s.Get(ctx, id)
}

// Delete removes a complainant.
func (s *ComplainantService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete complainant")
	}
	return nil
}
