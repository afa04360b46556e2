package repository

import (
	"context"
	"fmt"

	apierrors "github.com/yukikurage/taskledger/internal/errors"
	"github.com/yukikurage/taskledger/internal/models"
)

// CollectionUserRepository is a RecordStore implementation of UserRepository.
// Ordinary users and admins live in separate collections.
type CollectionUserRepository struct {
	users  *Collection[models.User]
	admins *Collection[models.User]
	locks  *Locks
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(store RecordStore, locks *Locks) UserRepository {
	return &CollectionUserRepository{
		users:  NewCollection[models.User](CollectionUsers, store, locks),
		admins: NewCollection[models.User](CollectionAdmins, store, locks),
		locks:  locks,
	}
}

func (r *CollectionUserRepository) collection(role models.Role) *Collection[models.User] {
	if role == models.RoleAdmin {
		return r.admins
	}
	return r.users
}

func (r *CollectionUserRepository) other(role models.Role) *Collection[models.User] {
	if role == models.RoleAdmin {
		return r.users
	}
	return r.admins
}

// Create creates a new user or admin. Both collections stay locked for the
// whole check-and-append, always admins before users.
func (r *CollectionUserRepository) Create(ctx context.Context, user *models.User) error {
	unlockAdmins := r.locks.Lock(CollectionAdmins)
	defer unlockAdmins()
	unlockUsers := r.locks.Lock(CollectionUsers)
	defer unlockUsers()

	others, err := r.other(user.Role).load(ctx)
	if err != nil {
		return err
	}
	if models.FindUser(others, user.Username) >= 0 {
		return fmt.Errorf("%w: username %s", apierrors.ErrAlreadyExists, user.Username)
	}

	target := r.collection(user.Role)
	existing, err := target.load(ctx)
	if err != nil {
		return err
	}
	for _, u := range existing {
		if u.Username == user.Username {
			return fmt.Errorf("%w: username %s", apierrors.ErrAlreadyExists, user.Username)
		}
		if user.Email != "" && u.Email == user.Email {
			return fmt.Errorf("%w: email %s", apierrors.ErrAlreadyExists, user.Email)
		}
	}
	return target.save(ctx, append(existing, *user))
}

// FindByUsername finds a user by username
func (r *CollectionUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, c := range []*Collection[models.User]{r.users, r.admins} {
		all, err := c.All(ctx)
		if err != nil {
			return nil, err
		}
		if i := models.FindUser(all, username); i >= 0 {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", apierrors.ErrUserNotFound, username)
}

// List returns all records of a role
func (r *CollectionUserRepository) List(ctx context.Context, role models.Role) ([]models.User, error) {
	return r.collection(role).All(ctx)
}

// SetActive updates the active flag of a user
func (r *CollectionUserRepository) SetActive(ctx context.Context, username string, active bool) (bool, error) {
	changed := false
	err := r.users.Update(ctx, func(users []models.User) ([]models.User, error) {
		i := models.FindUser(users, username)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", apierrors.ErrUserNotFound, username)
		}
		if users[i].Active == active {
			return nil, ErrNoChanges
		}
		users[i].Active = active
		changed = true
		return users, nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// Purge drops users and admins
func (r *CollectionUserRepository) Purge(ctx context.Context) error {
	if err := r.users.Drop(ctx); err != nil {
		return err
	}
	return r.admins.Drop(ctx)
}
