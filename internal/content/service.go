// Package content carries the moderation gate for platform content
// (scholarships, announcements, ads). Content semantics beyond the gate
// live elsewhere; this service owns who may write.
package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scholarly-app/scholarly-backend/internal/profiles"
	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
	pkgerrors "github.com/scholarly-app/scholarly-backend/pkg/errors"
	"github.com/scholarly-app/scholarly-backend/pkg/logger"
	"github.com/scholarly-app/scholarly-backend/pkg/roles"
)

// ItemDTO is the transport shape for a content item.
type ItemDTO struct {
	ID          uuid.UUID         `json:"id"`
	Kind        enums.ContentKind `json:"kind"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	IsPublished bool              `json:"is_published"`
	CreatedBy   uuid.UUID         `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// CreateItemRequest adds a content item.
type CreateItemRequest struct {
	Kind  enums.ContentKind `json:"kind" validate:"required"`
	Title string            `json:"title" validate:"required,max=200"`
	Body  string            `json:"body"`
}

// UpdateItemRequest edits a content item. Nil pointers leave fields alone.
type UpdateItemRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Body        *string `json:"body"`
	IsPublished *bool   `json:"is_published"`
}

// Service defines the moderated content operations.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, req CreateItemRequest) (*ItemDTO, error)
	Update(ctx context.Context, actorID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error)
	Delete(ctx context.Context, actorID, itemID uuid.UUID) error
	List(ctx context.Context, kind *enums.ContentKind, publishedOnly bool) ([]ItemDTO, error)
}

// ServiceParams bundles the content service dependencies.
type ServiceParams struct {
	Content  Repository
	Profiles profiles.Repository
	Logger   *logger.Logger
}

type service struct {
	content  Repository
	profiles profiles.Repository
	logg     *logger.Logger
}

// NewService constructs the content service.
func NewService(params ServiceParams) (Service, error) {
	if params.Content == nil {
		return nil, fmt.Errorf("content repository is required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profiles repository is required")
	}
	return &service{
		content:  params.Content,
		profiles: params.Profiles,
		logg:     params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, actorID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}
	if !req.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid content kind")
	}

	item := &models.ContentItem{
		Kind:      req.Kind,
		Title:     strings.TrimSpace(req.Title),
		Body:      req.Body,
		CreatedBy: actorID,
	}
	if err := s.content.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create content item")
	}
	return toDTO(item), nil
}

func (s *service) Update(ctx context.Context, actorID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}

	item, err := s.content.FindByID(ctx, itemID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "content item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load content item")
	}

	if req.Title != nil {
		item.Title = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		item.Body = *req.Body
	}
	if req.IsPublished != nil {
		item.IsPublished = *req.IsPublished
	}

	if err := s.content.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist content item")
	}
	return toDTO(item), nil
}

func (s *service) Delete(ctx context.Context, actorID, itemID uuid.UUID) error {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return err
	}
	if _, err := s.content.FindByID(ctx, itemID); err != nil {
		if IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "content item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load content item")
	}
	if err := s.content.Delete(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete content item")
	}
	return nil
}

func (s *service) List(ctx context.Context, kind *enums.ContentKind, publishedOnly bool) ([]ItemDTO, error) {
	if kind != nil && !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid content kind")
	}
	rows, err := s.content.List(ctx, kind, publishedOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list content")
	}
	out := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out, nil
}

// requireModerator re-reads the actor and applies the moderation predicate.
// Archived and banned actors fail it regardless of their stored role.
func (s *service) requireModerator(ctx context.Context, actorID uuid.UUID) error {
	actor, err := s.profiles.FindByID(ctx, actorID)
	if err != nil {
		if profiles.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "acting profile not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load actor")
	}
	if !roles.CanModerateContent(actor) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin rank required")
	}
	return nil
}

func toDTO(m *models.ContentItem) *ItemDTO {
	return &ItemDTO{
		ID:          m.ID,
		Kind:        m.Kind,
		Title:       m.Title,
		Body:        m.Body,
		IsPublished: m.IsPublished,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
