package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"projecthub/internal/model"
)

func TestCanMutateUser(t *testing.T) {
	t.Parallel()

	regular := model.Actor{ID: "u1", Role: model.RoleUser}
	admin := model.Actor{ID: "a1", Role: model.RoleAdmin}

	assert.True(t, CanMutateUser(regular, "u1"), "self")
	assert.False(t, CanMutateUser(regular, "u2"), "someone else")
	assert.True(t, CanMutateUser(admin, "u2"), "admin may mutate anyone")
}

func TestCanMutateProject(t *testing.T) {
	t.Parallel()

	owner := model.Actor{ID: "u1", Role: model.RoleUser}
	stranger := model.Actor{ID: "u2", Role: model.RoleUser}
	admin := model.Actor{ID: "a1", Role: model.RoleAdmin}

	assert.True(t, CanMutateProject(owner, "u1"))
	assert.False(t, CanMutateProject(stranger, "u1"))
	assert.True(t, CanMutateProject(admin, "u1"))
}

func TestRoleAllowed(t *testing.T) {
	t.Parallel()

	assert.True(t, RoleAllowed(model.RoleAdmin, model.RoleAdmin))
	assert.True(t, RoleAllowed(model.RoleUser, model.RoleUser, model.RoleAdmin))
	assert.False(t, RoleAllowed(model.RoleUser, model.RoleAdmin))
	assert.False(t, RoleAllowed("", model.RoleUser, model.RoleAdmin))
}
