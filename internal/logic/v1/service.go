package v1

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/contact-service/internal/core/domain"
	"github.com/duynhne/contact-service/middleware"
)

// ContactService holds the business logic for contact management
type ContactService struct {
	repo domain.ContactRepository
}

// NewContactService creates a new contact service
func NewContactService(repo domain.ContactRepository) *ContactService {
	return &ContactService{repo: repo}
}

// CreateContact validates the input and persists a new contact.
// Validation failures never reach the store.
func (s *ContactService) CreateContact(ctx context.Context, in domain.ContactInput) (*domain.Contact, error) {
	ctx, span := middleware.StartSpan(ctx, "contact.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if err := in.Validate(); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		recordOperation("create", err)
		return nil, fmt.Errorf("create contact: %w", err)
	}

	contact, err := s.repo.Create(ctx, in)
	recordOperation("create", err)
	if err != nil {
		recordUnexpected(span, err)
		return nil, fmt.Errorf("create contact: %w", err)
	}

	span.SetAttributes(attribute.Int64("contact.id", contact.ID))
	span.AddEvent("contact.created")
	return contact, nil
}

// ListContacts returns every contact
func (s *ContactService) ListContacts(ctx context.Context) ([]*domain.Contact, error) {
	ctx, span := middleware.StartSpan(ctx, "contact.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	contacts, err := s.repo.List(ctx)
	recordOperation("list", err)
	if err != nil {
		recordUnexpected(span, err)
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	span.SetAttributes(attribute.Int("contact.count", len(contacts)))
	return contacts, nil
}

// GetContact retrieves a contact by id
func (s *ContactService) GetContact(ctx context.Context, id int64) (*domain.Contact, error) {
	ctx, span := middleware.StartSpan(ctx, "contact.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("contact.id", id),
	))
	defer span.End()

	contact, err := s.repo.GetByID(ctx, id)
	recordOperation("get", err)
	if err != nil {
		span.SetAttributes(attribute.Bool("contact.found", false))
		recordUnexpected(span, err)
		return nil, fmt.Errorf("get contact: %w", err)
	}

	span.SetAttributes(attribute.Bool("contact.found", true))
	return contact, nil
}

// UpdateContact merges the provided fields into an existing contact.
// A missing contact is reported as not found before the input is judged.
func (s *ContactService) UpdateContact(ctx context.Context, id int64, u domain.ContactUpdate) (*domain.Contact, error) {
	ctx, span := middleware.StartSpan(ctx, "contact.update", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("contact.id", id),
	))
	defer span.End()

	if err := u.Validate(); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		if _, getErr := s.repo.GetByID(ctx, id); getErr != nil {
			err = getErr
			recordUnexpected(span, err)
		}
		recordOperation("update", err)
		return nil, fmt.Errorf("update contact: %w", err)
	}

	contact, err := s.repo.Update(ctx, id, u)
	recordOperation("update", err)
	if err != nil {
		recordUnexpected(span, err)
		return nil, fmt.Errorf("update contact: %w", err)
	}

	span.AddEvent("contact.updated")
	return contact, nil
}

// RequireContact reports ErrContactNotFound when no contact has the id.
// Handlers call it before rejecting an unreadable update body.
func (s *ContactService) RequireContact(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

// DeleteContact removes a contact permanently
func (s *ContactService) DeleteContact(ctx context.Context, id int64) error {
	ctx, span := middleware.StartSpan(ctx, "contact.delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("contact.id", id),
	))
	defer span.End()

	err := s.repo.Delete(ctx, id)
	recordOperation("delete", err)
	if err != nil {
		recordUnexpected(span, err)
		return fmt.Errorf("delete contact: %w", err)
	}

	span.AddEvent("contact.deleted")
	return nil
}

// Ping reports whether the contact store is reachable.
func (s *ContactService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// recordUnexpected marks the span as failed unless err is an expected domain outcome.
func recordUnexpected(span trace.Span, err error) {
	if errors.Is(err, domain.ErrContactNotFound) || errors.Is(err, domain.ErrDuplicateEmail) {
		span.SetAttributes(attribute.String("contact.outcome", err.Error()))
		return
	}
	span.RecordError(err)
}
