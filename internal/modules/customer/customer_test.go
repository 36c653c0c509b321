package customer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
)

type memRepo struct {
	byExternal map[string]Customer
	failCreate error
}

func newMemRepo() *memRepo { return &memRepo{byExternal: map[string]Customer{}} }

func (m *memRepo) InTx(_ context.Context, fn func(tx Repository) error) error {
	saved := make(map[string]Customer, len(m.byExternal))
	for k, v := range m.byExternal {
		saved[k] = v
	}
	if err := fn(m); err != nil {
		m.byExternal = saved
		return err
	}
	return nil
}

func (m *memRepo) GetByExternalID(_ context.Context, externalID string) (*Customer, error) {
	c, ok := m.byExternal[externalID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &c, nil
}

func (m *memRepo) Count(context.Context) (int64, error) { return int64(len(m.byExternal)), nil }

func (m *memRepo) Create(_ context.Context, c *Customer) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	if _, ok := m.byExternal[c.ExternalID]; ok {
		return apperr.ErrAlreadyExists
	}
	m.byExternal[c.ExternalID] = *c
	return nil
}

func (m *memRepo) UpdateProfile(_ context.Context, c *Customer) error {
	stored, ok := m.byExternal[c.ExternalID]
	if !ok {
		return apperr.ErrNotFound
	}
	stored.Email = c.Email
	if c.Name != nil {
		stored.Name = c.Name
	}
	m.byExternal[c.ExternalID] = stored
	return nil
}

func (m *memRepo) UpdateRole(_ context.Context, id uuid.UUID, role Role) error {
	for k, c := range m.byExternal {
		if c.ID == id {
			c.Role = role
			m.byExternal[k] = c
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (m *memRepo) DeleteByExternalID(_ context.Context, externalID string) (bool, error) {
	_, ok := m.byExternal[externalID]
	delete(m.byExternal, externalID)
	return ok, nil
}

func strPtr(s string) *string { return &s }

func TestAssignInitialRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, AssignInitialRole(0))
	assert.Equal(t, RoleCustomer, AssignInitialRole(1))
	assert.Equal(t, RoleCustomer, AssignInitialRole(42))
}

func TestReconcileRole(t *testing.T) {
	allow := []string{" Boss@Example.com ", "ops@example.com"}

	promoted := ReconcileRole(Customer{Email: "boss@example.com", Role: RoleCustomer}, allow)
	assert.Equal(t, RoleAdmin, promoted.Role)

	kept := ReconcileRole(Customer{Email: "someone@example.com", Role: RoleCustomer}, allow)
	assert.Equal(t, RoleCustomer, kept.Role)

	admin := ReconcileRole(Customer{Email: "someone@example.com", Role: RoleAdmin}, nil)
	assert.Equal(t, RoleAdmin, admin.Role, "never demotes")

	noEmail := ReconcileRole(Customer{Role: RoleCustomer}, []string{""})
	assert.Equal(t, RoleCustomer, noEmail.Role)
}

func TestProvisionFirstCustomerIsAdmin(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	first, err := svc.Provision(ctx, Profile{ExternalID: "user_1", Email: "a@example.com", Name: strPtr("Ada")})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, first.Role)

	second, err := svc.Provision(ctx, Profile{ExternalID: "user_2"})
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, second.Role)
	assert.Equal(t, "user_2@example.invalid", second.Email)
	assert.Nil(t, second.Name)
}

func TestProvisionUpdateKeepsRole(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.Provision(ctx, Profile{ExternalID: "user_1", Email: "a@example.com", Name: strPtr("Ada")})
	require.NoError(t, err)

	updated, err := svc.Provision(ctx, Profile{ExternalID: "user_1", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, RoleAdmin, updated.Role)
	assert.Equal(t, "new@example.com", repo.byExternal["user_1"].Email)
	require.NotNil(t, repo.byExternal["user_1"].Name)
	assert.Equal(t, "Ada", *repo.byExternal["user_1"].Name)
}

func TestProvisionRollsBackOnFailure(t *testing.T) {
	repo := newMemRepo()
	repo.failCreate = errors.New("insert failed")
	svc := NewService(repo, nil)

	_, err := svc.Provision(context.Background(), Profile{ExternalID: "user_1"})
	require.Error(t, err)
	assert.Empty(t, repo.byExternal)

	_, err = svc.Provision(context.Background(), Profile{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestRemove(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.Provision(ctx, Profile{ExternalID: "user_1"})
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, "user_1"))
	assert.Empty(t, repo.byExternal)
	require.NoError(t, svc.Remove(ctx, "user_1"))
}

func TestEnsureCreatesPlainCustomer(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	c, err := svc.Ensure(ctx, "user_1", "")
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, c.Role, "checkout never grants the first-customer admin role")
	assert.Equal(t, "user_1@example.invalid", c.Email)

	again, err := svc.Ensure(ctx, "user_1", "other@example.com")
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID)
}

func TestIsAdmin(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, []string{"boss@example.com"})
	ctx := context.Background()

	_, err := svc.Provision(ctx, Profile{ExternalID: "first", Email: "first@example.com"})
	require.NoError(t, err)
	_, err = svc.Provision(ctx, Profile{ExternalID: "boss", Email: "boss@example.com"})
	require.NoError(t, err)
	_, err = svc.Provision(ctx, Profile{ExternalID: "plain", Email: "plain@example.com"})
	require.NoError(t, err)

	ok, err := svc.IsAdmin(ctx, "first", "")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, RoleCustomer, repo.byExternal["boss"].Role)
	ok, err = svc.IsAdmin(ctx, "boss", "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, repo.byExternal["boss"].Role, "promotion is persisted")

	ok, err = svc.IsAdmin(ctx, "plain", "boss@example.com")
	require.NoError(t, err)
	assert.False(t, ok, "token email does not override a stored address")

	ok, err = svc.IsAdmin(ctx, "ghost", "boss@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotContains(t, repo.byExternal, "ghost")
}

func TestMe(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.Me(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.Me(ctx, "nobody")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
