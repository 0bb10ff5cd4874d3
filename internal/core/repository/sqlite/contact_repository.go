// Package sqlite provides a SQLite-backed contact repository for local
// development and tests. It enforces the same email uniqueness as PostgreSQL.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/duynhne/contact-service/internal/core/domain"
)

const contactColumns = `id, first_name, last_name, email, phone_number, company, job_title, created_at, updated_at`

// AUTOINCREMENT keeps ids of deleted contacts from being handed out again.
const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name   TEXT NOT NULL,
	last_name    TEXT NOT NULL,
	email        TEXT NOT NULL UNIQUE,
	phone_number TEXT,
	company      TEXT,
	job_title    TEXT,
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
)`

// ContactRepository implements domain.ContactRepository on SQLite.
type ContactRepository struct {
	db *sql.DB
}

var _ domain.ContactRepository = (*ContactRepository)(nil)

// NewContactRepository wraps an open SQLite handle.
func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// EnsureSchema creates the contacts table if it does not exist yet.
func (r *ContactRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure contacts schema: %w", err)
	}
	return nil
}

func (r *ContactRepository) Create(ctx context.Context, in domain.ContactInput) (*domain.Contact, error) {
	now := toMillis(time.Now())
	contact, err := scanContact(r.db.QueryRowContext(ctx,
		`INSERT INTO contacts (first_name, last_name, email, phone_number, company, job_title, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+contactColumns,
		in.FirstName, in.LastName, in.Email, in.PhoneNumber, in.Company, in.JobTitle, now, now,
	))
	if err != nil {
		if isEmailUniqueViolation(err) {
			return nil, fmt.Errorf("insert contact %q: %w", in.Email, domain.ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return contact, nil
}

func (r *ContactRepository) List(ctx context.Context) ([]*domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY id`)
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

func (r *ContactRepository) GetByID(ctx context.Context, id int64) (*domain.Contact, error) {
	contact, err := scanContact(r.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get contact %d: %w", id, domain.ErrContactNotFound)
		}
		return nil, fmt.Errorf("query contact: %w", err)
	}
	return contact, nil
}

func (r *ContactRepository) Update(ctx context.Context, id int64, u domain.ContactUpdate) (*domain.Contact, error) {
	contact, err := scanContact(r.db.QueryRowContext(ctx,
		`UPDATE contacts
		 SET first_name = COALESCE(?, first_name),
		     last_name = COALESCE(?, last_name),
		     email = COALESCE(?, email),
		     phone_number = COALESCE(?, phone_number),
		     company = COALESCE(?, company),
		     job_title = COALESCE(?, job_title),
		     updated_at = ?
		 WHERE id = ?
		 RETURNING `+contactColumns,
		u.FirstName, u.LastName, u.Email, u.PhoneNumber, u.Company, u.JobTitle, toMillis(time.Now()), id,
	))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("update contact %d: %w", id, domain.ErrContactNotFound)
		case isEmailUniqueViolation(err):
			return nil, fmt.Errorf("update contact %d: %w", id, domain.ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return contact, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contact rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete contact %d: %w", id, domain.ErrContactNotFound)
	}
	return nil
}

func (r *ContactRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*domain.Contact, error) {
	var (
		c         domain.Contact
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.PhoneNumber,
		&c.Company,
		&c.JobTitle,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}

func isEmailUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE {
		return strings.Contains(sqliteErr.Error(), "contacts.email")
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "contacts.email")
}
