package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/taskledger/internal/errors"
	"github.com/yukikurage/taskledger/internal/models"
)

func newUserRepo(t *testing.T) UserRepository {
	t.Helper()
	store, _ := newFileStore(t)
	return NewUserRepository(store, NewLocks())
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "alice", Email: "a@x", Role: models.RoleUser, Active: true}))
	require.NoError(t, repo.Create(ctx, &models.User{Username: "root", Role: models.RoleAdmin, Active: true}))

	u, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)

	admin, err := repo.FindByUsername(ctx, "root")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	users, err := repo.List(ctx, models.RoleUser)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	admins, err := repo.List(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, admins, 1)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apierrors.ErrUserNotFound)
}

func TestUserRepository_CreateRejectsDuplicates(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "alice", Email: "a@x", Role: models.RoleUser}))

	err := repo.Create(ctx, &models.User{Username: "alice", Email: "other@x", Role: models.RoleUser})
	assert.ErrorIs(t, err, apierrors.ErrAlreadyExists)

	err = repo.Create(ctx, &models.User{Username: "alice2", Email: "a@x", Role: models.RoleUser})
	assert.ErrorIs(t, err, apierrors.ErrAlreadyExists)

	err = repo.Create(ctx, &models.User{Username: "alice", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, apierrors.ErrAlreadyExists)
}

func TestUserRepository_ConcurrentCreateAcrossRoles(t *testing.T) {
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		repo := newUserRepo(t)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, role := range []models.Role{models.RoleUser, models.RoleAdmin} {
			wg.Add(1)
			go func(i int, role models.Role) {
				defer wg.Done()
				errs[i] = repo.Create(ctx, &models.User{Username: "x", Role: role, Active: true})
			}(i, role)
		}
		wg.Wait()

		created := 0
		for _, err := range errs {
			if err == nil {
				created++
				continue
			}
			assert.ErrorIs(t, err, apierrors.ErrAlreadyExists)
		}
		assert.Equal(t, 1, created, "round %d", round)

		users, err := repo.List(ctx, models.RoleUser)
		require.NoError(t, err)
		admins, err := repo.List(ctx, models.RoleAdmin)
		require.NoError(t, err)
		assert.Len(t, append(users, admins...), 1)
	}
}

func TestUserRepository_SetActive(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "bob", Role: models.RoleUser, Active: true}))
	require.NoError(t, repo.Create(ctx, &models.User{Username: "root", Role: models.RoleAdmin, Active: true}))

	changed, err := repo.SetActive(ctx, "bob", false)
	require.NoError(t, err)
	assert.True(t, changed)
	u, err := repo.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, u.Active)

	// repeating the same value is not an error, but nothing changes
	changed, err = repo.SetActive(ctx, "bob", false)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = repo.SetActive(ctx, "root", false)
	assert.ErrorIs(t, err, apierrors.ErrUserNotFound)
	_, err = repo.SetActive(ctx, "ghost", true)
	assert.ErrorIs(t, err, apierrors.ErrUserNotFound)
}

func TestUserRepository_Purge(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "bob", Role: models.RoleUser}))
	require.NoError(t, repo.Create(ctx, &models.User{Username: "root", Role: models.RoleAdmin}))
	require.NoError(t, repo.Purge(ctx))

	_, err := repo.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, apierrors.ErrUserNotFound)
	_, err = repo.FindByUsername(ctx, "root")
	assert.ErrorIs(t, err, apierrors.ErrUserNotFound)
}
