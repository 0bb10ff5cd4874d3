package psql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duynhne/contact-service/internal/core/domain"
)

const (
	// uniqueViolation is the SQLSTATE PostgreSQL reports for a unique constraint failure.
	uniqueViolation = "23505"

	emailConstraint = "contacts_email_key"

	contactColumns = `id, first_name, last_name, email, phone_number, company, job_title, created_at, updated_at`
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id           BIGSERIAL PRIMARY KEY,
	first_name   TEXT NOT NULL,
	last_name    TEXT NOT NULL,
	email        TEXT NOT NULL,
	phone_number TEXT,
	company      TEXT,
	job_title    TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT contacts_email_key UNIQUE (email)
)`

// Pool is the subset of *pgxpool.Pool the repository uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// ContactRepository implements domain.ContactRepository using PostgreSQL
type ContactRepository struct {
	pool Pool
}

var _ domain.ContactRepository = (*ContactRepository)(nil)

// NewContactRepository creates a new PostgreSQL contact repository
func NewContactRepository(pool Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

// EnsureSchema creates the contacts table if it does not exist yet.
func (r *ContactRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure contacts schema: %w", err)
	}
	return nil
}

// Create inserts a contact and returns it with its generated id.
func (r *ContactRepository) Create(ctx context.Context, in domain.ContactInput) (*domain.Contact, error) {
	query := `INSERT INTO contacts (first_name, last_name, email, phone_number, company, job_title)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + contactColumns

	contact, err := scanContact(r.pool.QueryRow(ctx, query,
		in.FirstName, in.LastName, in.Email, in.PhoneNumber, in.Company, in.JobTitle,
	))
	if err != nil {
		if isEmailUniqueViolation(err) {
			return nil, fmt.Errorf("insert contact %q: %w", in.Email, domain.ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return contact, nil
}

// List returns all contacts in insertion order.
func (r *ContactRepository) List(ctx context.Context) ([]*domain.Contact, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*domain.Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}

// GetByID retrieves a contact by id
func (r *ContactRepository) GetByID(ctx context.Context, id int64) (*domain.Contact, error) {
	contact, err := scanContact(r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get contact %d: %w", id, domain.ErrContactNotFound)
		}
		return nil, fmt.Errorf("query contact: %w", err)
	}
	return contact, nil
}

// Update merges the non-nil fields of u into the contact in a single statement.
// Nil fields bind as NULL and COALESCE keeps the stored value.
func (r *ContactRepository) Update(ctx context.Context, id int64, u domain.ContactUpdate) (*domain.Contact, error) {
	query := `UPDATE contacts
		SET first_name = COALESCE($1, first_name),
			last_name = COALESCE($2, last_name),
			email = COALESCE($3, email),
			phone_number = COALESCE($4, phone_number),
			company = COALESCE($5, company),
			job_title = COALESCE($6, job_title),
			updated_at = now()
		WHERE id = $7
		RETURNING ` + contactColumns

	contact, err := scanContact(r.pool.QueryRow(ctx, query,
		u.FirstName, u.LastName, u.Email, u.PhoneNumber, u.Company, u.JobTitle, id,
	))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, fmt.Errorf("update contact %d: %w", id, domain.ErrContactNotFound)
		case isEmailUniqueViolation(err):
			return nil, fmt.Errorf("update contact %d: %w", id, domain.ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return contact, nil
}

// Delete removes a contact permanently.
func (r *ContactRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete contact %d: %w", id, domain.ErrContactNotFound)
	}
	return nil
}

// Ping checks that the pool can reach the database.
func (r *ContactRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.PhoneNumber,
		&c.Company,
		&c.JobTitle,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func isEmailUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && pgErr.ConstraintName == emailConstraint
}
