package permissions

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/okozyrev/ratemark/internal/models"
)

func user(role string, staff bool) *models.User {
	return &models.User{ID: uuid.New(), Role: role, IsStaff: staff}
}

func TestAdminOrReadOnly(t *testing.T) {
	admin := user(models.RoleAdmin, false)
	staff := user(models.RoleUser, true)
	moderator := user(models.RoleModerator, false)
	plain := user(models.RoleUser, false)

	// Reads are open to everyone, including anonymous.
	assert.NoError(t, Check(AdminOrReadOnly, nil, "GET", uuid.Nil))
	assert.NoError(t, Check(AdminOrReadOnly, plain, "GET", uuid.Nil))

	// Writes need admin.
	assert.NoError(t, Check(AdminOrReadOnly, admin, "POST", uuid.Nil))
	assert.NoError(t, Check(AdminOrReadOnly, staff, "DELETE", uuid.Nil))
	assert.ErrorIs(t, Check(AdminOrReadOnly, moderator, "POST", uuid.Nil), ErrForbidden)
	assert.ErrorIs(t, Check(AdminOrReadOnly, plain, "DELETE", uuid.Nil), ErrForbidden)
	assert.ErrorIs(t, Check(AdminOrReadOnly, nil, "POST", uuid.Nil), ErrAuthRequired)
}

func TestAuthorOrStaffOrReadOnly(t *testing.T) {
	author := user(models.RoleUser, false)
	stranger := user(models.RoleUser, false)
	moderator := user(models.RoleModerator, false)
	admin := user(models.RoleAdmin, false)

	assert.NoError(t, Check(AuthorOrStaffOrReadOnly, nil, "GET", author.ID))
	assert.NoError(t, Check(AuthorOrStaffOrReadOnly, author, "PATCH", author.ID))
	assert.NoError(t, Check(AuthorOrStaffOrReadOnly, moderator, "DELETE", author.ID))
	assert.NoError(t, Check(AuthorOrStaffOrReadOnly, admin, "PATCH", author.ID))

	assert.ErrorIs(t, Check(AuthorOrStaffOrReadOnly, stranger, "PATCH", author.ID), ErrForbidden)
	assert.ErrorIs(t, Check(AuthorOrStaffOrReadOnly, nil, "DELETE", author.ID), ErrAuthRequired)
}

func TestAdminOnly(t *testing.T) {
	assert.ErrorIs(t, Check(AdminOnly, nil, "GET", uuid.Nil), ErrAuthRequired)
	assert.ErrorIs(t, Check(AdminOnly, user(models.RoleUser, false), "GET", uuid.Nil), ErrForbidden)
	assert.ErrorIs(t, Check(AdminOnly, user(models.RoleModerator, false), "GET", uuid.Nil), ErrForbidden)
	assert.NoError(t, Check(AdminOnly, user(models.RoleAdmin, false), "GET", uuid.Nil))
	assert.NoError(t, Check(AdminOnly, user(models.RoleUser, true), "GET", uuid.Nil))
}

func TestIsOwnerNeedsMatchingID(t *testing.T) {
	owner := user(models.RoleUser, false)

	assert.True(t, IsOwner(owner, "PATCH", owner.ID))
	assert.False(t, IsOwner(owner, "PATCH", uuid.New()))
	assert.False(t, IsOwner(owner, "PATCH", uuid.Nil), "ownerless resources have no owner")
	assert.False(t, IsOwner(nil, "PATCH", owner.ID))
}

func TestAnyOfShortCircuits(t *testing.T) {
	never := func(*models.User, string, uuid.UUID) bool { return false }
	always := func(*models.User, string, uuid.UUID) bool { return true }

	assert.True(t, AnyOf(never, always)(nil, "POST", uuid.Nil))
	assert.False(t, AnyOf(never, never)(nil, "POST", uuid.Nil))
	assert.False(t, AnyOf()(nil, "POST", uuid.Nil))
}
