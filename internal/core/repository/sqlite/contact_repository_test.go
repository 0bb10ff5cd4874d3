package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	database "github.com/duynhne/contact-service/internal/core"
	"github.com/duynhne/contact-service/internal/core/domain"
)

func newTestRepository(t *testing.T) *ContactRepository {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "contacts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewContactRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

func strPtr(s string) *string { return &s }

func ada() domain.ContactInput {
	return domain.ContactInput{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: strPtr("+44 20 7946 0000"),
		Company:     strPtr("Analytical Engines"),
		JobTitle:    strPtr("Programmer"),
	}
}

func grace() domain.ContactInput {
	return domain.ContactInput{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, ada())
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, "Ada", created.FirstName)
	assert.Equal(t, "ada@example.com", created.Email)
	require.NotNil(t, created.Company)
	assert.Equal(t, "Analytical Engines", *created.Company)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreateKeepsOmittedOptionalFieldsNull(t *testing.T) {
	repo := newTestRepository(t)

	created, err := repo.Create(context.Background(), grace())
	require.NoError(t, err)
	assert.Nil(t, created.PhoneNumber)
	assert.Nil(t, created.Company)
	assert.Nil(t, created.JobTitle)
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, ada())
	require.NoError(t, err)

	dup := grace()
	dup.Email = "ada@example.com"
	_, err = repo.Create(ctx, dup)
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, "Ada", all[0].FirstName)
}

func TestConcurrentCreatesWithSameEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := grace()
			in.FirstName = fmt.Sprintf("Grace-%d", i)
			_, err := repo.Create(ctx, in)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrDuplicateEmail):
				duplicates++
			default:
				t.Errorf("unexpected create error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, duplicates)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetByID(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestListEmptyIsNonNil(t *testing.T) {
	repo := newTestRepository(t)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestListInInsertionOrder(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, ada())
	require.NoError(t, err)
	second, err := repo.Create(ctx, grace())
	require.NoError(t, err)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
}

func TestUpdateMergesProvidedFields(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, ada())
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, domain.ContactUpdate{Company: strPtr("Babbage & Co")})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.FirstName, updated.FirstName)
	assert.Equal(t, created.LastName, updated.LastName)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.PhoneNumber, updated.PhoneNumber)
	assert.Equal(t, created.JobTitle, updated.JobTitle)
	require.NotNil(t, updated.Company)
	assert.Equal(t, "Babbage & Co", *updated.Company)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdateAllFields(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, grace())
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, domain.ContactUpdate{
		FirstName:   strPtr("Rear Admiral Grace"),
		LastName:    strPtr("Hopper"),
		Email:       strPtr("hopper@navy.example"),
		PhoneNumber: strPtr("+1 202 555 0100"),
		Company:     strPtr("US Navy"),
		JobTitle:    strPtr("Computer Scientist"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Rear Admiral Grace", updated.FirstName)
	assert.Equal(t, "hopper@navy.example", updated.Email)
	require.NotNil(t, updated.PhoneNumber)
	assert.Equal(t, "+1 202 555 0100", *updated.PhoneNumber)
	require.NotNil(t, updated.JobTitle)
	assert.Equal(t, "Computer Scientist", *updated.JobTitle)
}

func TestUpdateWithoutFieldsKeepsContact(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, ada())
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, domain.ContactUpdate{})
	require.NoError(t, err)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.PhoneNumber, updated.PhoneNumber)
	assert.Equal(t, created.Company, updated.Company)
	assert.Equal(t, created.JobTitle, updated.JobTitle)
}

func TestUpdateKeepingOwnEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, grace())
	require.NoError(t, err)

	_, err = repo.Update(ctx, created.ID, domain.ContactUpdate{
		LastName: strPtr("Brewster Murray Hopper"),
		Email:    strPtr(created.Email),
	})
	require.NoError(t, err)
}

func TestUpdateDuplicateEmailLeavesBothUnchanged(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, ada())
	require.NoError(t, err)
	g, err := repo.Create(ctx, grace())
	require.NoError(t, err)

	_, err = repo.Update(ctx, g.ID, domain.ContactUpdate{
		FirstName: strPtr("Not Grace"),
		Email:     strPtr(a.Email),
	})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)

	gotA, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, gotA)
	gotG, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g, gotG)
}

func TestUpdateNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Update(context.Background(), 7, domain.ContactUpdate{Company: strPtr("X")})
	require.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, ada())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrContactNotFound)

	err = repo.Delete(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestDeletedIDsAreNotReused(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, ada())
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, first.ID))

	second, err := repo.Create(ctx, ada())
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestIsEmailUniqueViolationFallsBackToMessage(t *testing.T) {
	err := errors.New("constraint failed: UNIQUE constraint failed: contacts.email (2067)")
	assert.True(t, isEmailUniqueViolation(err))
	assert.False(t, isEmailUniqueViolation(errors.New("NOT NULL constraint failed: contacts.email")))
	assert.False(t, isEmailUniqueViolation(nil))
}
