package domain

import "context"

// ContactRepository defines the interface for contact data access.
// Email uniqueness is enforced by the underlying store, not by callers.
type ContactRepository interface {
	Create(ctx context.Context, in ContactInput) (*Contact, error)
	List(ctx context.Context) ([]*Contact, error)
	GetByID(ctx context.Context, id int64) (*Contact, error)
	// Update merges the non-nil fields of u into the stored contact.
	Update(ctx context.Context, id int64, u ContactUpdate) (*Contact, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}
